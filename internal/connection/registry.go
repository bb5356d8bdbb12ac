package connection

import (
	"log/slog"
	"sync"
)

// Registry hands out namespace channels, opening at most one physical
// connection per backend origin. Constructed once at startup and passed
// to every consumer; there is no package-level cache.
type Registry struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	conns map[string]*Conn
}

// NewRegistry creates a connection registry.
func NewRegistry(cfg Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		cfg:    cfg,
		logger: logger,
		conns:  make(map[string]*Conn),
	}
}

// Channel returns the channel for (origin, namespace), creating the
// connection and channel lazily. Repeated calls return the same channel.
func (r *Registry) Channel(origin, namespace string) *Channel {
	r.mu.Lock()
	conn, ok := r.conns[origin]
	if !ok {
		conn = newConn(origin, r.cfg, r.logger)
		r.conns[origin] = conn
	}
	r.mu.Unlock()

	return conn.channel(namespace)
}

// Stats reports the number of open connections and which are up.
func (r *Registry) Stats() (total, connected int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.conns {
		total++
		if c.Connected() {
			connected++
		}
	}
	return total, connected
}

// Close tears down every connection. The registry is unusable afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.conns = make(map[string]*Conn)
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	return nil
}
