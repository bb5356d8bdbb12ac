package delta

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/draftpulse/rosterlive/internal/model"
)

// ControlChannel is the slice of a connection channel the mux needs.
// Satisfied by *connection.Channel; tests inject fakes.
type ControlChannel interface {
	Emit(event string, payload any) error
	On(event string, fn func(json.RawMessage)) func()
	OnConnect(fn func()) func()
	Connected() bool
}

// Observer receives every accepted (value-changing) delta.
type Observer func(sport model.Sport, msg model.DeltaMessage)

// Mux multiplexes per-entity delta subscriptions for one sport namespace
// over a shared channel.
type Mux struct {
	sport  model.Sport
	ch     ControlChannel
	logger *slog.Logger

	mu         sync.Mutex
	ids        []int64
	subscribed map[int64]struct{}
	deltas     map[int64]model.DeltaMessage
	observers  []Observer
	closed     bool

	offEvent   func()
	offConnect func()
}

// New creates a multiplexer bound to the sport's channel. The inbound
// delta handler and the reconnect hook are attached immediately.
func New(sport model.Sport, ch ControlChannel, logger *slog.Logger) *Mux {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Mux{
		sport:      sport,
		ch:         ch,
		logger:     logger.With("sport", sport),
		subscribed: make(map[int64]struct{}),
		deltas:     make(map[int64]model.DeltaMessage),
	}

	m.offEvent = ch.On(sport.DeltaEvent(), m.handleDelta)
	// Reconnects clear server-side subscription state; re-issue the
	// current full set, not a snapshot captured earlier.
	m.offConnect = ch.OnConnect(m.resubscribe)

	return m
}

// OnDelta registers an observer for accepted deltas.
func (m *Mux) OnDelta(fn Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// SetEntities replaces the set of entity ids of interest. Only the
// symmetric difference against the previous set produces control
// messages; an unchanged set produces none. Unsubscribes are sent before
// subscribes, both before the call returns.
func (m *Mux) SetEntities(ids []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	toSubscribe, toUnsubscribe := Diff(m.ids, ids)
	if len(toSubscribe) == 0 && len(toUnsubscribe) == 0 {
		return
	}

	m.ids = append([]int64(nil), ids...)

	if len(toUnsubscribe) > 0 {
		for _, id := range toUnsubscribe {
			delete(m.subscribed, id)
			delete(m.deltas, id)
		}
		m.emit(eventUnsubscribe, toUnsubscribe)
	}
	if len(toSubscribe) > 0 {
		for _, id := range toSubscribe {
			m.subscribed[id] = struct{}{}
		}
		m.emit(eventSubscribe, toSubscribe)
	}
}

// Delta returns the latest delta for an entity, if one was received.
func (m *Mux) Delta(id int64) (model.DeltaMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.deltas[id]
	return msg, ok
}

// Deltas returns a copy of the current per-entity result map.
func (m *Mux) Deltas() map[int64]model.DeltaMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[int64]model.DeltaMessage, len(m.deltas))
	for id, msg := range m.deltas {
		out[id] = msg
	}
	return out
}

// Close unsubscribes the full held set and detaches handlers. No server-
// side subscription survives a Close. Idempotent.
func (m *Mux) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true

	if len(m.ids) > 0 {
		m.emit(eventUnsubscribe, m.ids)
	}
	m.ids = nil
	m.subscribed = make(map[int64]struct{})
	m.mu.Unlock()

	m.offEvent()
	m.offConnect()
}

// emit sends a control message. Transport failures are logged, not
// returned; the connect hook re-issues state when the channel returns.
func (m *Mux) emit(event string, ids []int64) {
	if err := m.ch.Emit(event, controlPayload(m.sport, ids)); err != nil {
		m.logger.Warn("control message failed",
			"event", event,
			"ids", len(ids),
			"error", err,
		)
	}
}

// resubscribe re-issues subscribe for the current full entity-id set.
func (m *Mux) resubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || len(m.ids) == 0 {
		return
	}
	m.emit(eventSubscribe, m.ids)
}

// handleDelta demultiplexes one inbound delta event.
func (m *Mux) handleDelta(data json.RawMessage) {
	msg, err := decodeDelta(data)
	if err != nil {
		m.logger.Warn("dropping delta", "error", err)
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if _, ok := m.subscribed[msg.ID]; !ok {
		m.mu.Unlock()
		return
	}
	if prev, ok := m.deltas[msg.ID]; ok && prev.Equal(msg) {
		// Unchanged value: keep identity, skip downstream notification.
		m.mu.Unlock()
		return
	}
	m.deltas[msg.ID] = msg
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(m.sport, msg)
	}
}
