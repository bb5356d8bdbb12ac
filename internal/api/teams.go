package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/draftpulse/rosterlive/internal/model"
)

// GetTeams fetches the caller's teams.
func (c *Client) GetTeams(ctx context.Context) ([]model.Team, error) {
	var resp TeamsResponse
	if err := c.get(ctx, "/teams", nil, &resp); err != nil {
		return nil, fmt.Errorf("get teams: %w", err)
	}

	teams := make([]model.Team, 0, len(resp.Teams))
	for _, t := range resp.Teams {
		team, err := t.ToModel()
		if err != nil {
			c.logger.Warn("skipping malformed team", "error", err)
			continue
		}
		teams = append(teams, team)
	}

	return teams, nil
}

// GetTeamPlayers fetches the current roster of a team, across sports.
func (c *Client) GetTeamPlayers(ctx context.Context, teamID uuid.UUID) ([]model.Player, error) {
	var resp TeamPlayersResponse
	if err := c.get(ctx, "/teams/"+teamID.String()+"/players", nil, &resp); err != nil {
		return nil, fmt.Errorf("get team players %s: %w", teamID, err)
	}

	players := make([]model.Player, 0, len(resp.Players))
	for _, p := range resp.Players {
		// Roster entries always name their sport; there is no fallback.
		player, err := p.ToModel("")
		if err != nil {
			return nil, fmt.Errorf("get team players %s: %w", teamID, err)
		}
		players = append(players, player)
	}

	return players, nil
}

// SubmitRoster submits a complete roster for a team.
func (c *Client) SubmitRoster(ctx context.Context, teamID uuid.UUID, sub model.RosterSubmission) error {
	req := submitRosterRequest{
		Name:    sub.Name,
		Players: make([]rosterWireEntry, 0, len(sub.Players)),
	}
	for _, e := range sub.Players {
		req.Players = append(req.Players, toWireEntry(e))
	}

	if err := c.post(ctx, "/teams/"+teamID.String()+"/roster", req, nil); err != nil {
		return fmt.Errorf("submit roster %s: %w", teamID, err)
	}

	return nil
}
