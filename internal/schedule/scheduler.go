package schedule

import (
	"log/slog"
	"sync"
	"time"
)

// Clock abstracts the tick source so growth is deterministic in tests.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Config holds scheduler settings.
type Config struct {
	BatchSize  int
	BatchDelay time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:  10,
		BatchDelay: 400 * time.Millisecond,
	}
}

// Scheduler grows an active entity window over a candidate list.
type Scheduler struct {
	cfg    Config
	clock  Clock
	logger *slog.Logger
	onGrow func(active int)

	mu     sync.Mutex
	total  int
	active int
	cancel chan struct{}
	done   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock injects a tick source. Tests pass a manual clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// New creates a scheduler. onGrow is invoked with the new window size on
// every growth step, including the initial one on Reset.
func New(cfg Config, onGrow func(active int), logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultConfig().BatchDelay
	}
	s := &Scheduler{
		cfg:    cfg,
		clock:  realClock{},
		logger: logger,
		onGrow: onGrow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Active returns the current window size.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Reset starts growth over a new candidate list of the given size. Any
// running timer chain for the previous list is cancelled and drained
// before the new one starts, so growth never continues over a list that
// no longer exists.
func (s *Scheduler) Reset(total int) {
	s.stopChain()

	if total < 0 {
		total = 0
	}

	s.mu.Lock()
	s.total = total
	s.active = min(s.cfg.BatchSize, total)

	var cancel, done chan struct{}
	if s.active < total {
		cancel = make(chan struct{})
		done = make(chan struct{})
		s.cancel, s.done = cancel, done
	}
	active := s.active
	s.mu.Unlock()

	if s.onGrow != nil {
		s.onGrow(active)
	}

	if cancel != nil {
		go s.runChain(cancel, done)
	}
}

// Stop cancels any pending growth. Safe to call repeatedly.
func (s *Scheduler) Stop() {
	s.stopChain()
}

// stopChain cancels the running chain, if any, and waits for it to exit.
func (s *Scheduler) stopChain() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		close(cancel)
	}
	if done != nil {
		<-done
	}
}

// runChain is the single timer chain for one candidate-list identity.
func (s *Scheduler) runChain(cancel, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-cancel:
			return
		case <-s.clock.After(s.cfg.BatchDelay):
		}

		s.mu.Lock()
		if s.cancel != cancel {
			// Cancelled while the tick was in flight.
			s.mu.Unlock()
			return
		}

		s.active += s.cfg.BatchSize
		if s.active >= s.total {
			s.active = s.total
		}
		active, total := s.active, s.total
		finished := active == total
		if finished {
			s.cancel, s.done = nil, nil
		}
		s.mu.Unlock()

		s.logger.Debug("subscription window grown", "active", active, "total", total)

		if s.onGrow != nil {
			s.onGrow(active)
		}
		if finished {
			return
		}
	}
}
