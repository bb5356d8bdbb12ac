package roster

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/draftpulse/rosterlive/internal/delta"
	"github.com/draftpulse/rosterlive/internal/ledger"
	"github.com/draftpulse/rosterlive/internal/model"
	"github.com/draftpulse/rosterlive/internal/schedule"
	"github.com/draftpulse/rosterlive/internal/tradelock"
)

type fakeMux struct {
	mu       sync.Mutex
	sets     [][]int64
	observer delta.Observer
	closed   bool
}

func (m *fakeMux) SetEntities(ids []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]int64, len(ids))
	copy(cp, ids)
	m.sets = append(m.sets, cp)
}

func (m *fakeMux) OnDelta(fn delta.Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = fn
}

func (m *fakeMux) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *fakeMux) deliver(sport model.Sport, msg model.DeltaMessage) {
	m.mu.Lock()
	fn := m.observer
	m.mu.Unlock()
	if fn != nil {
		fn(sport, msg)
	}
}

func (m *fakeMux) last() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sets) == 0 {
		return nil
	}
	return m.sets[len(m.sets)-1]
}

type fakeSubmitter struct {
	mu   sync.Mutex
	err  error
	got  []model.RosterSubmission
	team uuid.UUID
}

func (f *fakeSubmitter) SubmitRoster(_ context.Context, teamID uuid.UUID, sub model.RosterSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.team = teamID
	f.got = append(f.got, sub)
	return nil
}

type fakeSink struct {
	mu     sync.Mutex
	events []model.DeltaEvent
	full   bool
}

func (f *fakeSink) Record(ev model.DeltaEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.events = append(f.events, ev)
	return true
}

type manualClock struct {
	ch chan time.Time
}

func newManualClock() *manualClock {
	return &manualClock{ch: make(chan time.Time)}
}

func (c *manualClock) After(time.Duration) <-chan time.Time { return c.ch }

func (c *manualClock) tick() { c.ch <- time.Time{} }

func footballCatalog(n int) []model.Player {
	players := make([]model.Player, 0, n)
	for i := 1; i <= n; i++ {
		players = append(players, model.Player{
			Key:   model.EntityKey{ID: int64(i), Sport: model.SportFootball},
			Name:  fmt.Sprintf("Player %d", i),
			Price: 1_000_000,
		})
	}
	return players
}

func frozenPolicy(t *testing.T) (*tradelock.Policy, string) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	now := time.Date(2026, time.March, 10, 14, 0, 0, 0, loc)
	p := tradelock.New(loc, tradelock.WithNow(func() time.Time { return now }))
	return p, p.CurrentToken()
}

func newTestSession(t *testing.T, cfg Config, led *ledger.Ledger, sub Submitter, opts ...Option) (*Session, *fakeMux, *manualClock) {
	t.Helper()
	policy, _ := frozenPolicy(t)
	mux := &fakeMux{}
	clock := newManualClock()
	opts = append(opts, WithScheduleOptions(schedule.WithClock(clock)))
	s := New(cfg, led, mux, policy, sub, opts...)
	t.Cleanup(s.Stop)
	return s, mux, clock
}

func waitForSets(t *testing.T, mux *fakeMux, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mux.mu.Lock()
		got := len(mux.sets)
		mux.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d SetEntities calls", n)
}

func TestSession_StartSubscribesInitialBatch(t *testing.T) {
	led := ledger.New(ledger.DefaultConfig(), nil)
	s, mux, _ := newTestSession(t, Config{
		Team:     uuid.New(),
		Sport:    model.SportFootball,
		Catalog:  footballCatalog(5),
		Schedule: schedule.Config{BatchSize: 2, BatchDelay: 400 * time.Millisecond},
	}, led, &fakeSubmitter{})

	s.Start()

	if got := mux.last(); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("initial window = %v, want [1 2]", got)
	}
}

func TestSession_WindowGrowsOnTick(t *testing.T) {
	led := ledger.New(ledger.DefaultConfig(), nil)
	s, mux, clock := newTestSession(t, Config{
		Team:     uuid.New(),
		Sport:    model.SportFootball,
		Catalog:  footballCatalog(5),
		Schedule: schedule.Config{BatchSize: 2, BatchDelay: 400 * time.Millisecond},
	}, led, &fakeSubmitter{})

	s.Start()
	clock.tick()
	waitForSets(t, mux, 2)
	clock.tick()
	waitForSets(t, mux, 3)

	if got := mux.last(); !reflect.DeepEqual(got, []int64{1, 2, 3, 4, 5}) {
		t.Errorf("final window = %v, want full catalog", got)
	}
}

func TestSession_DraftedPlayerStaysSubscribed(t *testing.T) {
	led := ledger.New(ledger.DefaultConfig(), nil)
	s, mux, _ := newTestSession(t, Config{
		Team:     uuid.New(),
		Sport:    model.SportFootball,
		Catalog:  footballCatalog(5),
		Schedule: schedule.Config{BatchSize: 2, BatchDelay: 400 * time.Millisecond},
	}, led, &fakeSubmitter{})

	s.Start()
	if err := s.Draft(model.EntityKey{ID: 5, Sport: model.SportFootball}); err != nil {
		t.Fatalf("Draft failed: %v", err)
	}

	// Player 5 is outside the active prefix but drafted, so it rides
	// along with the window.
	if got := mux.last(); !reflect.DeepEqual(got, []int64{1, 2, 5}) {
		t.Errorf("window = %v, want [1 2 5]", got)
	}
}

func TestSession_TradeLockGate(t *testing.T) {
	team := uuid.New()
	policy, token := frozenPolicy(t)

	catalog := footballCatalog(3)
	catalog[0].TradeLockedWeek = token

	led := ledger.New(ledger.DefaultConfig(), nil)
	mux := &fakeMux{}
	clock := newManualClock()
	s := New(Config{
		Team:     team,
		Sport:    model.SportFootball,
		Catalog:  catalog,
		Seed:     catalog[:1],
		Schedule: schedule.Config{BatchSize: 10, BatchDelay: 400 * time.Millisecond},
	}, led, mux, policy, &fakeSubmitter{},
		WithScheduleOptions(schedule.WithClock(clock)))
	t.Cleanup(s.Stop)
	s.Start()

	locked := catalog[0].Key
	if err := s.Undraft(locked); !errors.Is(err, tradelock.ErrPlayerLocked) {
		t.Errorf("undraft locked: err = %v, want ErrPlayerLocked", err)
	}
	if !led.IsDrafted(team, locked) {
		t.Error("locked player was removed from the roster")
	}

	if err := s.Draft(locked); !errors.Is(err, tradelock.ErrPlayerLocked) {
		t.Errorf("draft locked: err = %v, want ErrPlayerLocked", err)
	}

	if err := s.Draft(catalog[1].Key); err != nil {
		t.Errorf("draft unlocked: err = %v, want nil", err)
	}
}

func TestSession_DeltaFlowsToLedgerAndJournal(t *testing.T) {
	team := uuid.New()
	led := ledger.New(ledger.DefaultConfig(), nil)
	sink := &fakeSink{}
	s, mux, _ := newTestSession(t, Config{
		Team:     team,
		Sport:    model.SportFootball,
		Catalog:  footballCatalog(3),
		Seed:     footballCatalog(1),
		Schedule: schedule.Config{BatchSize: 10, BatchDelay: 400 * time.Millisecond},
	}, led, &fakeSubmitter{}, WithJournal(sink))

	s.Start()

	liveDelta := int64(250_000)
	mux.deliver(model.SportFootball, model.DeltaMessage{ID: 1, LiveDelta: &liveDelta})

	key := model.EntityKey{ID: 1, Sport: model.SportFootball}
	if got := led.EffectiveChange(key); got != 250_000 {
		t.Errorf("EffectiveChange = %d, want 250000", got)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 1 {
		t.Fatalf("journal got %d events, want 1", len(sink.events))
	}
	if sink.events[0].Key != key || *sink.events[0].LiveDelta != 250_000 {
		t.Errorf("journal event = %+v, want key %v delta 250000", sink.events[0], key)
	}
}

func TestSession_SubmitFailurePreservesDraft(t *testing.T) {
	team := uuid.New()
	led := ledger.New(ledger.Config{BudgetFloor: 50_000_000, MaxSlots: 2}, nil)
	submitter := &fakeSubmitter{err: errors.New("backend down")}
	s, _, _ := newTestSession(t, Config{
		Team:     team,
		Sport:    model.SportFootball,
		Catalog:  footballCatalog(3),
		Schedule: schedule.Config{BatchSize: 10, BatchDelay: 400 * time.Millisecond},
	}, led, submitter)

	s.Start()
	for i := int64(1); i <= 2; i++ {
		if err := s.Draft(model.EntityKey{ID: i, Sport: model.SportFootball}); err != nil {
			t.Fatalf("Draft %d failed: %v", i, err)
		}
	}

	if err := s.Submit(context.Background(), "my team"); err == nil {
		t.Fatal("Submit succeeded, want error")
	}
	if got := len(led.Drafted(team)); got != 2 {
		t.Errorf("drafted count after failed submit = %d, want 2", got)
	}

	// Retry after the backend recovers.
	submitter.mu.Lock()
	submitter.err = nil
	submitter.mu.Unlock()

	if err := s.Submit(context.Background(), "my team"); err != nil {
		t.Fatalf("retry Submit failed: %v", err)
	}
	if got := len(led.Drafted(team)); got != 0 {
		t.Errorf("drafted count after success = %d, want 0 (draft discarded)", got)
	}
	if len(submitter.got) != 1 || len(submitter.got[0].Players) != 2 {
		t.Fatalf("submitter got %+v, want one submission with 2 players", submitter.got)
	}
}

func TestSession_SubmitShortRoster(t *testing.T) {
	led := ledger.New(ledger.Config{BudgetFloor: 50_000_000, MaxSlots: 2}, nil)
	s, _, _ := newTestSession(t, Config{
		Team:     uuid.New(),
		Sport:    model.SportFootball,
		Catalog:  footballCatalog(3),
		Schedule: schedule.Config{BatchSize: 10, BatchDelay: 400 * time.Millisecond},
	}, led, &fakeSubmitter{})

	s.Start()
	if err := s.Draft(model.EntityKey{ID: 1, Sport: model.SportFootball}); err != nil {
		t.Fatalf("Draft failed: %v", err)
	}

	var countErr *ledger.CountError
	if err := s.Submit(context.Background(), "my team"); !errors.As(err, &countErr) {
		t.Fatalf("err = %v, want CountError", err)
	}
	if countErr.Got != 1 || countErr.Want != 2 {
		t.Errorf("CountError = %+v, want Got 1 Want 2", countErr)
	}
}

func TestSession_StopClosesMux(t *testing.T) {
	led := ledger.New(ledger.DefaultConfig(), nil)
	policy, _ := frozenPolicy(t)
	mux := &fakeMux{}
	s := New(Config{
		Team:     uuid.New(),
		Sport:    model.SportFootball,
		Catalog:  footballCatalog(3),
		Schedule: schedule.DefaultConfig(),
	}, led, mux, policy, &fakeSubmitter{},
		WithScheduleOptions(schedule.WithClock(newManualClock())))

	s.Start()
	s.Stop()

	mux.mu.Lock()
	defer mux.mu.Unlock()
	if !mux.closed {
		t.Error("Stop did not close the multiplexer")
	}
}
