package connection

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Channel is one sport namespace multiplexed over a shared connection.
// Handlers run on the connection's dispatch goroutine; a handler that
// blocks stalls dispatch until the inbound buffer fills and frames drop.
type Channel struct {
	namespace string
	conn      *Conn
	logger    *slog.Logger

	mu       sync.Mutex
	nextID   int
	handlers map[string]map[int]func(json.RawMessage)
	onConn   map[int]func()
}

func newChannel(namespace string, conn *Conn, logger *slog.Logger) *Channel {
	return &Channel{
		namespace: namespace,
		conn:      conn,
		logger:    logger.With("ns", namespace),
		handlers:  make(map[string]map[int]func(json.RawMessage)),
		onConn:    make(map[int]func()),
	}
}

// Namespace returns the channel's namespace.
func (ch *Channel) Namespace() string {
	return ch.namespace
}

// Connected reports whether the underlying connection is up.
func (ch *Channel) Connected() bool {
	return ch.conn.Connected()
}

// Emit sends an event on this namespace.
func (ch *Channel) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return ch.conn.send(Frame{
		Namespace: ch.namespace,
		Event:     event,
		Data:      data,
	})
}

// On registers a handler for an inbound event and returns a function that
// removes it.
func (ch *Channel) On(event string, fn func(json.RawMessage)) func() {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	id := ch.nextID
	ch.nextID++

	if ch.handlers[event] == nil {
		ch.handlers[event] = make(map[int]func(json.RawMessage))
	}
	ch.handlers[event][id] = fn

	return func() {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		delete(ch.handlers[event], id)
	}
}

// OnConnect registers a hook fired on every (re)connect of the underlying
// connection and returns a function that removes it.
func (ch *Channel) OnConnect(fn func()) func() {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	id := ch.nextID
	ch.nextID++
	ch.onConn[id] = fn

	return func() {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		delete(ch.onConn, id)
	}
}

func (ch *Channel) dispatch(event string, data json.RawMessage) {
	ch.mu.Lock()
	fns := make([]func(json.RawMessage), 0, len(ch.handlers[event]))
	for _, fn := range ch.handlers[event] {
		fns = append(fns, fn)
	}
	ch.mu.Unlock()

	for _, fn := range fns {
		fn(data)
	}
}

func (ch *Channel) fireConnect() {
	ch.mu.Lock()
	hooks := make([]func(), 0, len(ch.onConn))
	for _, fn := range ch.onConn {
		hooks = append(hooks, fn)
	}
	ch.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
