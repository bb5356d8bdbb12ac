package connection

import (
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
	ErrRetriesSpent  = errors.New("reconnect attempts exhausted")
)

// Frame is the JSON envelope multiplexing namespaces over one socket.
// Outbound control messages and inbound data events share the shape.
type Frame struct {
	Namespace string          `json:"ns"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Config configures the registry and its connections.
type Config struct {
	Path              string        // websocket path appended to the origin
	ReconnectAttempts int           // bounded retry budget per outage
	ReconnectDelay    time.Duration // fixed backoff between attempts
	PingInterval      time.Duration // keepalive ping cadence
	WriteTimeout      time.Duration // write deadline for sends
	BufferSize        int           // per-connection inbound frame buffer
}

// DefaultConfig returns sensible defaults. The retry policy mirrors the
// backend's expectations: five attempts, 800ms apart.
func DefaultConfig() Config {
	return Config{
		Path:              "/stream",
		ReconnectAttempts: 5,
		ReconnectDelay:    800 * time.Millisecond,
		PingInterval:      15 * time.Second,
		WriteTimeout:      5 * time.Second,
		BufferSize:        1000,
	}
}
