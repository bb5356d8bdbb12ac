package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/draftpulse/rosterlive/internal/model"
)

// Validation errors. All are recoverable: the drafted state is left
// unchanged and the message is shown to the user.
var (
	ErrNoTeamSelected     = errors.New("no team selected")
	ErrUnknownPlayer      = errors.New("player not in catalog")
	ErrAlreadyDrafted     = errors.New("player already drafted")
	ErrNotDrafted         = errors.New("player not drafted")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrNoFreeSlot         = errors.New("no free roster slot")
)

// CountError reports a submission with the wrong number of drafted players.
type CountError struct {
	Got, Want int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("must draft exactly %d players before submitting, currently drafted: %d", e.Want, e.Got)
}

// Config holds budget rules.
type Config struct {
	BudgetFloor int64
	MaxSlots    int
}

// DefaultConfig returns the standard rules: a 50M floor and 10 slots.
func DefaultConfig() Config {
	return Config{
		BudgetFloor: 50_000_000,
		MaxSlots:    10,
	}
}

// Ledger tracks drafted rosters and valuations for any number of teams
// over one player catalog.
type Ledger struct {
	cfg Config

	mu       sync.RWMutex
	players  map[model.EntityKey]model.Player
	drafted  map[uuid.UUID][]model.EntityKey
	seedVals map[uuid.UUID]int64
	live     map[model.EntityKey]int64
}

// New creates a ledger over a player catalog.
func New(cfg Config, catalog []model.Player) *Ledger {
	players := make(map[model.EntityKey]model.Player, len(catalog))
	for _, p := range catalog {
		players[p.Key] = p
	}
	return &Ledger{
		cfg:      cfg,
		players:  players,
		drafted:  make(map[uuid.UUID][]model.EntityKey),
		seedVals: make(map[uuid.UUID]int64),
		live:     make(map[model.EntityKey]int64),
	}
}

// AddPlayers extends the catalog, e.g. when another sport's page loads.
func (l *Ledger) AddPlayers(catalog []model.Player) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range catalog {
		l.players[p.Key] = p
	}
}

// Player looks a catalog entry up by composite key.
func (l *Ledger) Player(key model.EntityKey) (model.Player, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.players[key]
	return p, ok
}

// SeedRoster installs a team's existing roster and fixes the ratchet
// base from its value at seed time. Players missing from the catalog are
// added from the roster snapshot.
func (l *Ledger) SeedRoster(team uuid.UUID, roster []model.Player) {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys := make([]model.EntityKey, 0, len(roster))
	var value int64
	for _, p := range roster {
		if _, ok := l.players[p.Key]; !ok {
			l.players[p.Key] = p
		}
		keys = append(keys, p.Key)
		value += p.Price + p.WeekPriceChange
	}

	l.drafted[team] = keys
	l.seedVals[team] = value
}

// ApplyDelta folds a live delta into the valuation overlay. A message
// without a live delta clears the overlay for that entity, falling back
// to the static weekly change.
func (l *Ledger) ApplyDelta(key model.EntityKey, msg model.DeltaMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if msg.LiveDelta == nil {
		delete(l.live, key)
		return
	}
	l.live[key] = *msg.LiveDelta
}

// EffectiveChange returns the live delta when present, else the static
// weekly change.
func (l *Ledger) EffectiveChange(key model.EntityKey) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.effectiveChangeLocked(key)
}

func (l *Ledger) effectiveChangeLocked(key model.EntityKey) int64 {
	if d, ok := l.live[key]; ok {
		return d
	}
	return l.players[key].WeekPriceChange
}

// cost is a player's draft price: catalog price plus effective change.
func (l *Ledger) costLocked(key model.EntityKey) int64 {
	return l.players[key].Price + l.effectiveChangeLocked(key)
}

// Spend sums the cost of every drafted player.
func (l *Ledger) Spend(team uuid.UUID) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.spendLocked(team)
}

func (l *Ledger) spendLocked(team uuid.UUID) int64 {
	var sum int64
	for _, key := range l.drafted[team] {
		sum += l.costLocked(key)
	}
	return sum
}

// EffectiveBudget is the ratchet: the nominal floor, raised to the seed
// roster's value when prices moved the seed roster above the floor.
func (l *Ledger) EffectiveBudget(team uuid.UUID) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.effectiveBudgetLocked(team)
}

func (l *Ledger) effectiveBudgetLocked(team uuid.UUID) int64 {
	if seed := l.seedVals[team]; seed > l.cfg.BudgetFloor {
		return seed
	}
	return l.cfg.BudgetFloor
}

// Remaining is the unspent budget, clamped at zero: live deltas can push
// spend above budget, but remaining never goes negative.
func (l *Ledger) Remaining(team uuid.UUID) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.remainingLocked(team)
}

func (l *Ledger) remainingLocked(team uuid.UUID) int64 {
	r := l.effectiveBudgetLocked(team) - l.spendLocked(team)
	if r < 0 {
		return 0
	}
	return r
}

// RemainingSlots is the number of free roster slots.
func (l *Ledger) RemainingSlots(team uuid.UUID) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg.MaxSlots - len(l.drafted[team])
}

// Drafted returns a copy of the team's drafted keys, in draft order.
func (l *Ledger) Drafted(team uuid.UUID) []model.EntityKey {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.EntityKey(nil), l.drafted[team]...)
}

// IsDrafted reports whether a team has drafted the entity.
func (l *Ledger) IsDrafted(team uuid.UUID, key model.EntityKey) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexLocked(team, key) >= 0
}

func (l *Ledger) indexLocked(team uuid.UUID, key model.EntityKey) int {
	for i, k := range l.drafted[team] {
		if k == key {
			return i
		}
	}
	return -1
}

// Draft appends the player to the team's roster after validating budget
// and slots at the player's current effective cost. On rejection no state
// changes.
func (l *Ledger) Draft(team uuid.UUID, key model.EntityKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if team == uuid.Nil {
		return ErrNoTeamSelected
	}
	if _, ok := l.players[key]; !ok {
		return ErrUnknownPlayer
	}
	if l.indexLocked(team, key) >= 0 {
		return ErrAlreadyDrafted
	}
	if l.costLocked(key) > l.remainingLocked(team) {
		return ErrInsufficientBudget
	}
	if l.cfg.MaxSlots-len(l.drafted[team]) <= 0 {
		return ErrNoFreeSlot
	}

	l.drafted[team] = append(l.drafted[team], key)
	return nil
}

// Undraft removes the player from the team's roster.
func (l *Ledger) Undraft(team uuid.UUID, key model.EntityKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if team == uuid.Nil {
		return ErrNoTeamSelected
	}
	i := l.indexLocked(team, key)
	if i < 0 {
		return ErrNotDrafted
	}

	l.drafted[team] = append(l.drafted[team][:i], l.drafted[team][i+1:]...)
	return nil
}

// Submission builds the final roster payload. The roster must hold
// exactly MaxSlots players; nothing partial is ever produced.
func (l *Ledger) Submission(team uuid.UUID, name string) (model.RosterSubmission, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := l.drafted[team]
	if len(keys) != l.cfg.MaxSlots {
		return model.RosterSubmission{}, &CountError{Got: len(keys), Want: l.cfg.MaxSlots}
	}

	players := make([]model.RosterEntry, 0, len(keys))
	for _, key := range keys {
		players = append(players, model.RosterEntry{
			Sport:      key.Sport,
			ExternalID: key.ID,
		})
	}

	return model.RosterSubmission{Name: name, Players: players}, nil
}

// Reset discards a team's draft and seed state. The player catalog and
// the live-delta overlay are left intact.
func (l *Ledger) Reset(team uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.drafted, team)
	delete(l.seedVals, team)
}

// State snapshots a team's budget for display.
func (l *Ledger) State(team uuid.UUID) model.BudgetState {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return model.BudgetState{
		Budget:         l.effectiveBudgetLocked(team),
		Spent:          l.spendLocked(team),
		Remaining:      l.remainingLocked(team),
		RemainingSlots: l.cfg.MaxSlots - len(l.drafted[team]),
	}
}
