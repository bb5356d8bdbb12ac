package connection

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one physical websocket to a backend origin, shared by every
// namespace channel opened against that origin.
type Conn struct {
	origin string
	url    string
	cfg    Config
	logger *slog.Logger

	done    chan struct{}
	wg      sync.WaitGroup
	inbound chan []byte
	dropped atomic.Int64

	// Write serialization
	writeMu sync.Mutex

	// Socket state
	mu        sync.RWMutex
	ws        *websocket.Conn
	connected bool
	closed    bool

	// Namespace channels
	chanMu   sync.RWMutex
	channels map[string]*Channel
}

func newConn(origin string, cfg Config, logger *slog.Logger) *Conn {
	c := &Conn{
		origin:   origin,
		url:      origin + cfg.Path,
		cfg:      cfg,
		logger:   logger.With("origin", origin),
		done:     make(chan struct{}),
		inbound:  make(chan []byte, cfg.BufferSize),
		channels: make(map[string]*Channel),
	}

	c.wg.Add(2)
	go c.run()
	go c.dispatchLoop()

	return c
}

// channel returns the logical channel for a namespace, creating it lazily.
func (c *Conn) channel(namespace string) *Channel {
	c.chanMu.Lock()
	defer c.chanMu.Unlock()

	ch, ok := c.channels[namespace]
	if !ok {
		ch = newChannel(namespace, c, c.logger)
		c.channels[namespace] = ch
	}
	return ch
}

// Connected returns current connection state.
func (c *Conn) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Close tears the connection down. Idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	ws := c.ws
	c.mu.Unlock()

	close(c.done)

	if ws != nil {
		ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		ws.Close()
	}

	c.wg.Wait()
	return nil
}

// send marshals a frame and writes it to the socket.
func (c *Conn) send(f Frame) error {
	c.mu.RLock()
	ws := c.ws
	connected := c.connected
	c.mu.RUnlock()

	if !connected || ws == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return ws.WriteMessage(websocket.TextMessage, data)
}

// run owns the connect/read/reconnect cycle. The retry budget applies per
// outage and resets after every successful connect.
func (c *Conn) run() {
	defer c.wg.Done()

	for {
		ws, err := c.dial()
		if err != nil {
			if err != ErrAlreadyClosed {
				c.logger.Error("giving up on connection", "error", err)
			}
			return
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			ws.Close()
			return
		}
		c.ws = ws
		c.connected = true
		c.mu.Unlock()

		c.logger.Debug("websocket connected", "url", c.url)

		// Consumers re-issue subscriptions on every connect, since a
		// reconnect clears server-side subscription state.
		c.notifyConnect()

		c.readLoop(ws)

		c.mu.Lock()
		c.connected = false
		c.ws = nil
		closed := c.closed
		c.mu.Unlock()

		if closed {
			return
		}

		c.logger.Warn("connection lost, reconnecting")
	}
}

// dial attempts to establish the websocket, retrying with a fixed delay
// up to the configured attempt budget.
func (c *Conn) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.ReconnectAttempts; attempt++ {
		select {
		case <-c.done:
			return nil, ErrAlreadyClosed
		default:
		}

		ws, _, err := dialer.Dial(c.url, nil)
		if err == nil {
			return ws, nil
		}
		lastErr = err

		c.logger.Warn("dial failed",
			"attempt", attempt,
			"max_attempts", c.cfg.ReconnectAttempts,
			"error", err,
		)

		select {
		case <-c.done:
			return nil, ErrAlreadyClosed
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrRetriesSpent, lastErr)
}

// readLoop reads frames from the socket and hands them to the dispatch
// goroutine. Returns when the socket errors or the connection closes.
func (c *Conn) readLoop(ws *websocket.Conn) {
	stopPing := make(chan struct{})
	defer close(stopPing)
	go c.pingLoop(ws, stopPing)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn("read error", "error", err)
			}
			return
		}

		c.enqueue(data)
	}
}

// enqueue pushes a raw frame onto the inbound buffer. The read loop must
// never block on a slow handler, so a full buffer drops the frame.
func (c *Conn) enqueue(data []byte) {
	select {
	case c.inbound <- data:
	case <-c.done:
	default:
		c.dropped.Add(1)
		c.logger.Warn("inbound buffer full, dropping frame")
	}
}

// dispatchLoop drains the inbound buffer and routes frames to namespace
// channels. Handlers run on this goroutine, away from the socket reader.
func (c *Conn) dispatchLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.inbound:
			c.dispatch(data)
		}
	}
}

// pingLoop keeps the connection alive while the read loop is blocked.
func (c *Conn) pingLoop(ws *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := ws.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
			}
		}
	}
}

// dispatch routes one inbound frame to its namespace channel.
func (c *Conn) dispatch(data []byte) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		c.logger.Warn("dropping malformed frame", "error", err)
		return
	}

	c.chanMu.RLock()
	ch, ok := c.channels[f.Namespace]
	c.chanMu.RUnlock()

	if !ok {
		c.logger.Debug("frame for unopened namespace", "ns", f.Namespace, "event", f.Event)
		return
	}

	ch.dispatch(f.Event, f.Data)
}

// notifyConnect fires the connect hooks of every open channel.
func (c *Conn) notifyConnect() {
	c.chanMu.RLock()
	channels := make([]*Channel, 0, len(c.channels))
	for _, ch := range c.channels {
		channels = append(channels, ch)
	}
	c.chanMu.RUnlock()

	for _, ch := range channels {
		ch.fireConnect()
	}
}
