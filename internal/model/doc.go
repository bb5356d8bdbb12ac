// Package model defines shared data types used across the roster engine.
//
// Conventions:
//   - Prices: int64 minor currency units (e.g. 50000000 = a 50M budget)
//   - Entity identity: the (id, sport) pair, since raw ids are not globally
//     unique across sports (football/NBA share an id space distinct from
//     F1 driver ids)
//   - Team IDs: uuid.UUID, matching the backend's team identifiers
package model
