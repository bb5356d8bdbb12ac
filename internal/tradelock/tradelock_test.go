package tradelock

import (
	"errors"
	"testing"
	"time"

	"github.com/draftpulse/rosterlive/internal/model"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q): %v", name, err)
	}
	return loc
}

func TestWeekToken(t *testing.T) {
	cph := mustLocation(t, "Europe/Copenhagen")

	tests := []struct {
		name string
		in   time.Time
		loc  *time.Location
		want string
	}{
		{
			name: "first week of january",
			// 2026-01-01 is a Thursday, so it anchors week 1.
			in:   time.Date(2026, time.January, 1, 12, 0, 0, 0, cph),
			loc:  cph,
			want: "2026W01",
		},
		{
			name: "mid year",
			in:   time.Date(2026, time.July, 15, 9, 30, 0, 0, cph),
			loc:  cph,
			want: "2026W29",
		},
		{
			name: "late december rolls into next iso year",
			// 2025-12-29 is a Monday in the week of 2026's first Thursday.
			in:   time.Date(2025, time.December, 29, 8, 0, 0, 0, cph),
			loc:  cph,
			want: "2026W01",
		},
		{
			name: "early january in previous iso year",
			// 2027-01-01 is a Friday; the first Thursday of 2027 is Jan 7,
			// so Jan 1 still belongs to 2026's last week.
			in:   time.Date(2027, time.January, 1, 12, 0, 0, 0, cph),
			loc:  cph,
			want: "2026W53",
		},
		{
			name: "timezone shifts the calendar date",
			// 23:30 UTC Sunday is already Monday in Copenhagen, which
			// starts the next ISO week.
			in:   time.Date(2026, time.January, 11, 23, 30, 0, 0, time.UTC),
			loc:  cph,
			want: "2026W03",
		},
		{
			name: "same instant observed in utc",
			in:   time.Date(2026, time.January, 11, 23, 30, 0, 0, time.UTC),
			loc:  time.UTC,
			want: "2026W02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekToken(tt.in, tt.loc); got != tt.want {
				t.Errorf("WeekToken = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPolicy_IsLocked(t *testing.T) {
	cph := mustLocation(t, "Europe/Copenhagen")
	now := time.Date(2026, time.March, 10, 14, 0, 0, 0, cph) // 2026W11
	p := New(cph, WithNow(func() time.Time { return now }))

	if got := p.CurrentToken(); got != "2026W11" {
		t.Fatalf("CurrentToken = %q, want 2026W11", got)
	}

	locked := model.Player{Name: "Striker", TradeLockedWeek: "2026W11"}
	if !p.IsLocked(locked) {
		t.Error("player locked to current week: IsLocked = false")
	}

	stale := model.Player{Name: "Keeper", TradeLockedWeek: "2026W10"}
	if p.IsLocked(stale) {
		t.Error("player locked to a past week: IsLocked = true")
	}

	unlocked := model.Player{Name: "Winger"}
	if p.IsLocked(unlocked) {
		t.Error("player without a lock: IsLocked = true")
	}
}

func TestPolicy_Check(t *testing.T) {
	cph := mustLocation(t, "Europe/Copenhagen")
	now := time.Date(2026, time.March, 10, 14, 0, 0, 0, cph)
	p := New(cph, WithNow(func() time.Time { return now }))

	err := p.Check(model.Player{Name: "Striker", TradeLockedWeek: "2026W11"})
	if !errors.Is(err, ErrPlayerLocked) {
		t.Errorf("locked player: err = %v, want ErrPlayerLocked", err)
	}

	if err := p.Check(model.Player{Name: "Winger"}); err != nil {
		t.Errorf("unlocked player: err = %v, want nil", err)
	}
}
