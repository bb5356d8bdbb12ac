package schedule

import (
	"sync"
	"testing"
	"time"
)

// manualClock hands ticks to the scheduler on demand.
type manualClock struct {
	ch chan time.Time
}

func newManualClock() *manualClock {
	return &manualClock{ch: make(chan time.Time)}
}

func (c *manualClock) After(time.Duration) <-chan time.Time {
	return c.ch
}

func (c *manualClock) tick() {
	c.ch <- time.Now()
}

func waitForActive(t *testing.T, s *Scheduler, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s.Active() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Active = %d, want %d", s.Active(), want)
}

func TestScheduler_GrowsToTotal(t *testing.T) {
	clock := newManualClock()
	cfg := Config{BatchSize: 10, BatchDelay: 400 * time.Millisecond}

	var mu sync.Mutex
	var grewTo []int
	s := New(cfg, func(active int) {
		mu.Lock()
		grewTo = append(grewTo, active)
		mu.Unlock()
	}, nil, WithClock(clock))
	defer s.Stop()

	s.Reset(25)

	if got := s.Active(); got != 10 {
		t.Fatalf("initial Active = %d, want 10", got)
	}

	clock.tick()
	waitForActive(t, s, 20)

	clock.tick()
	waitForActive(t, s, 25)

	// Chain ended at full coverage; no goroutine is waiting for ticks.
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	want := []int{10, 20, 25}
	if len(grewTo) != len(want) {
		t.Fatalf("growth steps = %v, want %v", grewTo, want)
	}
	for i := range want {
		if grewTo[i] != want[i] {
			t.Errorf("step %d = %d, want %d", i, grewTo[i], want[i])
		}
	}
}

func TestScheduler_SmallListNeedsNoChain(t *testing.T) {
	clock := newManualClock()
	s := New(Config{BatchSize: 10, BatchDelay: time.Millisecond}, nil, nil, WithClock(clock))
	defer s.Stop()

	s.Reset(4)

	if got := s.Active(); got != 4 {
		t.Errorf("Active = %d, want 4 (min of batch size and total)", got)
	}
}

func TestScheduler_ResetRestartsGrowth(t *testing.T) {
	clock := newManualClock()
	s := New(Config{BatchSize: 10, BatchDelay: time.Millisecond}, nil, nil, WithClock(clock))
	defer s.Stop()

	s.Reset(30)
	clock.tick()
	waitForActive(t, s, 20)

	// New candidate list: window drops back to the initial batch.
	s.Reset(50)
	if got := s.Active(); got != 10 {
		t.Fatalf("Active after Reset = %d, want 10", got)
	}

	clock.tick()
	waitForActive(t, s, 20)
}

func TestScheduler_StopCancelsPendingGrowth(t *testing.T) {
	clock := newManualClock()
	s := New(Config{BatchSize: 5, BatchDelay: time.Millisecond}, nil, nil, WithClock(clock))

	s.Reset(100)
	s.Stop()

	if got := s.Active(); got != 5 {
		t.Errorf("Active = %d, want 5 (no growth after Stop)", got)
	}

	// Stop is idempotent.
	s.Stop()
}

func TestScheduler_ZeroCandidates(t *testing.T) {
	s := New(DefaultConfig(), nil, nil)
	defer s.Stop()

	s.Reset(0)
	if got := s.Active(); got != 0 {
		t.Errorf("Active = %d, want 0", got)
	}
}
