// Package api provides the REST client for the fantasy backend.
//
// Endpoints:
//   - GET  /players?sport={football|nba|f1}: tradable player catalog
//   - GET  /teams: the caller's teams
//   - GET  /teams/{id}/players: current roster of a team
//   - POST /teams/{id}/roster: submit a complete roster
//
// Live price deltas are not served here; see internal/connection and
// internal/delta for the websocket side.
package api
