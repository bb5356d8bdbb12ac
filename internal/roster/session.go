// Package roster wires one sport's live pricing pipeline to a team's
// draft: the subscription scheduler widens the active candidate window,
// the multiplexer feeds deltas into the budget ledger, and the trade-lock
// policy gates every mutation before it reaches the ledger.
package roster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/draftpulse/rosterlive/internal/delta"
	"github.com/draftpulse/rosterlive/internal/ledger"
	"github.com/draftpulse/rosterlive/internal/model"
	"github.com/draftpulse/rosterlive/internal/schedule"
	"github.com/draftpulse/rosterlive/internal/tradelock"
)

// Multiplexer is the slice of delta.Mux the session drives.
type Multiplexer interface {
	SetEntities(ids []int64)
	OnDelta(fn delta.Observer)
	Close()
}

// Submitter posts a finished roster to the backend.
type Submitter interface {
	SubmitRoster(ctx context.Context, teamID uuid.UUID, sub model.RosterSubmission) error
}

// DeltaSink receives a copy of every applied delta, e.g. for the
// journal. Record must not block; it reports whether the event was
// accepted.
type DeltaSink interface {
	Record(ev model.DeltaEvent) bool
}

// Config describes one session.
type Config struct {
	Team    uuid.UUID
	Sport   model.Sport
	Catalog []model.Player // candidate list, in display order
	Seed    []model.Player // existing roster when editing a team

	Schedule schedule.Config
}

// Session owns the live pricing window for one team and sport.
type Session struct {
	cfg    Config
	ids    []int64 // catalog ids, in candidate order
	ledger *ledger.Ledger
	mux    Multiplexer
	sched  *schedule.Scheduler
	policy *tradelock.Policy
	submit Submitter
	sink   DeltaSink
	logger *slog.Logger

	schedOpts []schedule.Option
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithJournal forwards applied deltas to sink.
func WithJournal(sink DeltaSink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithScheduleOptions passes options to the internal scheduler.
func WithScheduleOptions(opts ...schedule.Option) Option {
	return func(s *Session) { s.schedOpts = opts }
}

// New assembles a session. Call Start to begin subscribing.
func New(cfg Config, led *ledger.Ledger, mux Multiplexer, policy *tradelock.Policy, submit Submitter, opts ...Option) *Session {
	s := &Session{
		cfg:    cfg,
		ledger: led,
		mux:    mux,
		policy: policy,
		submit: submit,
		logger: slog.Default(),
	}
	for _, p := range cfg.Catalog {
		s.ids = append(s.ids, p.Key.ID)
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sched = schedule.New(cfg.Schedule, s.onGrow,
		s.logger.With("component", "scheduler", "sport", cfg.Sport),
		s.schedOpts...)

	return s
}

// Start loads the catalog and seed roster into the ledger, attaches the
// delta feed, and kicks off the progressive subscription ramp.
func (s *Session) Start() {
	s.ledger.AddPlayers(s.cfg.Catalog)
	if len(s.cfg.Seed) > 0 {
		s.ledger.SeedRoster(s.cfg.Team, s.cfg.Seed)
	}

	s.mux.OnDelta(s.handleDelta)
	s.sched.Reset(len(s.ids))
}

// Stop tears down the subscription ramp and the multiplexer.
func (s *Session) Stop() {
	s.sched.Stop()
	s.mux.Close()
}

// State returns the team's current budget snapshot.
func (s *Session) State() model.BudgetState {
	return s.ledger.State(s.cfg.Team)
}

// Draft adds a player to the roster after the trade-lock gate.
func (s *Session) Draft(key model.EntityKey) error {
	if err := s.checkLock(key); err != nil {
		return err
	}
	if err := s.ledger.Draft(s.cfg.Team, key); err != nil {
		return err
	}
	s.refreshWindow()
	return nil
}

// Undraft removes a player from the roster. Locked players cannot be
// removed either.
func (s *Session) Undraft(key model.EntityKey) error {
	if err := s.checkLock(key); err != nil {
		return err
	}
	if err := s.ledger.Undraft(s.cfg.Team, key); err != nil {
		return err
	}
	s.refreshWindow()
	return nil
}

// Submit posts the finished roster. Drafted state survives a failed
// submission so the user can retry; on success the draft is discarded.
func (s *Session) Submit(ctx context.Context, name string) error {
	sub, err := s.ledger.Submission(s.cfg.Team, name)
	if err != nil {
		return err
	}
	if err := s.submit.SubmitRoster(ctx, s.cfg.Team, sub); err != nil {
		return fmt.Errorf("submit roster: %w", err)
	}
	s.ledger.Reset(s.cfg.Team)
	return nil
}

func (s *Session) checkLock(key model.EntityKey) error {
	player, ok := s.ledger.Player(key)
	if !ok {
		// The ledger rejects unknown players with its own error.
		return nil
	}
	return s.policy.Check(player)
}

// handleDelta folds a live delta into the ledger and the journal.
func (s *Session) handleDelta(sport model.Sport, msg model.DeltaMessage) {
	key := model.EntityKey{ID: msg.ID, Sport: sport}
	s.ledger.ApplyDelta(key, msg)

	if s.sink != nil {
		ev := model.DeltaEvent{
			Key:          key,
			LiveDelta:    msg.LiveDelta,
			PreviewPrice: msg.PreviewPrice,
			ReceivedAt:   time.Now(),
		}
		if !s.sink.Record(ev) {
			s.logger.Debug("journal full, delta dropped", "key", key)
		}
	}
}

// onGrow pushes the widened window to the multiplexer.
func (s *Session) onGrow(active int) {
	s.mux.SetEntities(s.window(active))
}

func (s *Session) refreshWindow() {
	s.mux.SetEntities(s.window(s.sched.Active()))
}

// window is the catalog prefix of length active plus every drafted id of
// this sport; drafted players stay subscribed even outside the prefix.
func (s *Session) window(active int) []int64 {
	if active > len(s.ids) {
		active = len(s.ids)
	}

	ids := make([]int64, 0, active)
	seen := make(map[int64]struct{}, active)
	for _, id := range s.ids[:active] {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, key := range s.ledger.Drafted(s.cfg.Team) {
		if key.Sport != s.cfg.Sport {
			continue
		}
		if _, ok := seen[key.ID]; ok {
			continue
		}
		seen[key.ID] = struct{}{}
		ids = append(ids, key.ID)
	}

	return ids
}
