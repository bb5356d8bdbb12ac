// Package tradelock gates roster mutations on weekly trade locks. A
// player carries an optional week token naming the ISO week it is locked
// for; the policy compares that token against the current week in a
// fixed timezone.
package tradelock

import (
	"errors"
	"fmt"
	"time"

	"github.com/draftpulse/rosterlive/internal/model"
)

// ErrPlayerLocked is returned when a draft or undraft targets a player
// whose trade lock names the current week.
var ErrPlayerLocked = errors.New("tradelock: player is locked for the current week")

// WeekToken renders the ISO-8601 week of t, observed in loc, as a token
// of the form "2026W01". The week algorithm is Thursday-anchored: week 1
// is the week containing the year's first Thursday, so late-December
// dates can land in week 1 of the next year and early-January dates in
// week 52/53 of the previous one.
func WeekToken(t time.Time, loc *time.Location) string {
	year, week := t.In(loc).ISOWeek()
	return fmt.Sprintf("%dW%02d", year, week)
}

// Policy decides whether a player may be traded right now. The zero
// value is not usable; construct with New.
type Policy struct {
	loc *time.Location
	now func() time.Time
}

// Option configures a Policy.
type Option func(*Policy)

// WithNow overrides the wall clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(p *Policy) { p.now = now }
}

// New returns a Policy evaluating trade locks against the current week
// in loc.
func New(loc *time.Location, opts ...Option) *Policy {
	p := &Policy{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CurrentToken returns the week token for the policy's current time.
func (p *Policy) CurrentToken() string {
	return WeekToken(p.now(), p.loc)
}

// IsLocked reports whether the player's trade lock names the current
// week. Players without a lock are never locked.
func (p *Policy) IsLocked(player model.Player) bool {
	if player.TradeLockedWeek == "" {
		return false
	}
	return player.TradeLockedWeek == p.CurrentToken()
}

// Check returns ErrPlayerLocked when the player may not be traded.
func (p *Policy) Check(player model.Player) error {
	if p.IsLocked(player) {
		return fmt.Errorf("%w: %s (%s)", ErrPlayerLocked, player.Name, player.TradeLockedWeek)
	}
	return nil
}
