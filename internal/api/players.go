package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/draftpulse/rosterlive/internal/model"
)

// GetPlayers fetches the tradable player catalog for a sport.
func (c *Client) GetPlayers(ctx context.Context, sport model.Sport) ([]model.Player, error) {
	query := url.Values{}
	query.Set("sport", string(sport))

	var resp PlayersResponse
	if err := c.get(ctx, "/players", query, &resp); err != nil {
		return nil, fmt.Errorf("get players %s: %w", sport, err)
	}

	players := make([]model.Player, 0, len(resp.Players))
	for _, p := range resp.Players {
		player, err := p.ToModel(sport)
		if err != nil {
			c.logger.Warn("skipping malformed player", "error", err)
			continue
		}
		players = append(players, player)
	}

	return players, nil
}
