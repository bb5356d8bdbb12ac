package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sport identifies a sport namespace on the realtime backend.
type Sport string

const (
	SportFootball Sport = "football"
	SportNBA      Sport = "nba"
	SportF1       Sport = "f1"
)

// ParseSport converts a string to a Sport.
func ParseSport(s string) (Sport, error) {
	switch Sport(s) {
	case SportFootball, SportNBA, SportF1:
		return Sport(s), nil
	}
	return "", fmt.Errorf("unknown sport %q", s)
}

// Namespace returns the sport's realtime channel namespace.
func (s Sport) Namespace() string {
	switch s {
	case SportFootball:
		return "/ws/football"
	case SportNBA:
		return "/ws/nba"
	case SportF1:
		return "/ws/f1"
	}
	return ""
}

// DeltaEvent returns the inbound event name carrying price deltas for the sport.
func (s Sport) DeltaEvent() string {
	switch s {
	case SportFootball:
		return "playerWeekDelta"
	case SportNBA:
		return "playerGameDelta"
	case SportF1:
		return "driverRaceDelta"
	}
	return ""
}

// EntityType returns the wire entity type for control messages.
// F1 subscribes to drivers, everything else to players.
func (s Sport) EntityType() string {
	if s == SportF1 {
		return "driver"
	}
	return "player"
}

// EntityKey is the canonical identity of a player or driver.
type EntityKey struct {
	ID    int64
	Sport Sport
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s/%d", k.Sport, k.ID)
}

// Player is a catalog entry. Price fields are minor currency units.
// WeekPriceChange is the static weekly movement; a live delta, when one
// has been received, supersedes it for valuation.
type Player struct {
	Key             EntityKey
	Name            string
	Position        string
	SportsTeam      string
	Price           int64
	WeekPriceChange int64
	TradeLockedWeek string // week token like "2026W35", empty when unlocked
}

// DeltaMessage is the normalized live price update for one entity,
// translated from the sport-specific raw wire shapes.
type DeltaMessage struct {
	ID           int64
	LiveDelta    *int64
	PreviewPrice *int64
}

// Equal reports whether two messages carry the same values.
// Used to short-circuit redundant updates.
func (d DeltaMessage) Equal(o DeltaMessage) bool {
	if d.ID != o.ID {
		return false
	}
	if !int64PtrEqual(d.LiveDelta, o.LiveDelta) {
		return false
	}
	return int64PtrEqual(d.PreviewPrice, o.PreviewPrice)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// DeltaEvent is a received delta enriched with identity and timing,
// consumed by the journal writer.
type DeltaEvent struct {
	Key          EntityKey
	LiveDelta    *int64
	PreviewPrice *int64
	ReceivedAt   time.Time
}

// Team is a fantasy team as fetched from the backend.
type Team struct {
	ID     uuid.UUID
	Name   string
	Roster []Player
}

// RosterEntry is one drafted player in the submit contract.
type RosterEntry struct {
	Sport      Sport `json:"sport"`
	ExternalID int64 `json:"externalId"`
}

// RosterSubmission is the final roster payload sent to the backend.
type RosterSubmission struct {
	Name    string        `json:"name"`
	Players []RosterEntry `json:"players"`
}

// BudgetState is a display snapshot of a team's budget and slots.
type BudgetState struct {
	Budget         int64
	Spent          int64
	Remaining      int64
	RemainingSlots int
}
