package api

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/draftpulse/rosterlive/internal/model"
)

// PlayersResponse from GET /players.
type PlayersResponse struct {
	Players []APIPlayer `json:"players"`
}

// TeamsResponse from GET /teams.
type TeamsResponse struct {
	Teams []APITeam `json:"teams"`
}

// TeamPlayersResponse from GET /teams/{id}/players.
type TeamPlayersResponse struct {
	Players []APIPlayer `json:"players"`
}

// APIPlayer is the wire shape of a tradable player. Ball-sport players
// carry playerId, F1 drivers carry driverId; exactly one is set.
type APIPlayer struct {
	PlayerID *int64 `json:"playerId,omitempty"`
	DriverID *int64 `json:"driverId,omitempty"`

	Sport           string  `json:"sport,omitempty"`
	Name            string  `json:"name"`
	Position        string  `json:"position,omitempty"`
	Team            string  `json:"team,omitempty"`
	Price           int64   `json:"price"`
	WeekPriceChange int64   `json:"weekPriceChange"`
	TradeLockedWeek *string `json:"tradeLockedWeek"`
}

// APITeam is the wire shape of a user team.
type APITeam struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// submitRosterRequest is the body of POST /teams/{id}/roster. Entries
// use the same per-sport id fields as APIPlayer.
type submitRosterRequest struct {
	Name    string            `json:"name"`
	Players []rosterWireEntry `json:"players"`
}

type rosterWireEntry struct {
	Sport    string `json:"sport"`
	PlayerID *int64 `json:"playerId,omitempty"`
	DriverID *int64 `json:"driverId,omitempty"`
}

// ToModel converts a wire player into the internal representation.
// fallback supplies the sport when the payload omits it.
func (p APIPlayer) ToModel(fallback model.Sport) (model.Player, error) {
	sport := fallback
	if p.Sport != "" {
		var err error
		sport, err = model.ParseSport(p.Sport)
		if err != nil {
			return model.Player{}, err
		}
	}
	if sport == "" {
		return model.Player{}, fmt.Errorf("player %q: missing sport", p.Name)
	}

	var id int64
	switch {
	case sport == model.SportF1 && p.DriverID != nil:
		id = *p.DriverID
	case sport != model.SportF1 && p.PlayerID != nil:
		id = *p.PlayerID
	default:
		return model.Player{}, fmt.Errorf("player %q: missing %s id", p.Name, sport.EntityType())
	}

	locked := ""
	if p.TradeLockedWeek != nil {
		locked = *p.TradeLockedWeek
	}

	return model.Player{
		Key:             model.EntityKey{ID: id, Sport: sport},
		Name:            p.Name,
		Position:        p.Position,
		SportsTeam:      p.Team,
		Price:           p.Price,
		WeekPriceChange: p.WeekPriceChange,
		TradeLockedWeek: locked,
	}, nil
}

// ToModel converts a wire team into the internal representation.
func (t APITeam) ToModel() (model.Team, error) {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return model.Team{}, fmt.Errorf("team %q: parse id: %w", t.Name, err)
	}
	return model.Team{ID: id, Name: t.Name}, nil
}

func toWireEntry(e model.RosterEntry) rosterWireEntry {
	entry := rosterWireEntry{Sport: string(e.Sport)}
	id := e.ExternalID
	if e.Sport == model.SportF1 {
		entry.DriverID = &id
	} else {
		entry.PlayerID = &id
	}
	return entry
}
