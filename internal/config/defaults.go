package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPITimeout        = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultReconnectAttempts = 5
	DefaultReconnectDelay    = 800 * time.Millisecond
	DefaultPingInterval      = 15 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultSocketBufferSize  = 1000
	DefaultBudgetFloor       = 50_000_000
	DefaultMaxSlots          = 10
	DefaultBatchSize         = 10
	DefaultBatchDelay        = 400 * time.Millisecond
	DefaultTimezone          = "Europe/Copenhagen"
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultDBMaxConns        = 10
	DefaultDBMinConns        = 2
	DefaultJournalBatchSize  = 500
	DefaultFlushInterval     = 1 * time.Second
	DefaultJournalBufferSize = 10000
	DefaultHealthPort        = 8080
	DefaultHealthPath        = "/health"
)

func (c *Config) applyDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	if c.Realtime.ReconnectAttempts == 0 {
		c.Realtime.ReconnectAttempts = DefaultReconnectAttempts
	}
	if c.Realtime.ReconnectDelay == 0 {
		c.Realtime.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Realtime.PingInterval == 0 {
		c.Realtime.PingInterval = DefaultPingInterval
	}
	if c.Realtime.WriteTimeout == 0 {
		c.Realtime.WriteTimeout = DefaultWriteTimeout
	}
	if c.Realtime.BufferSize == 0 {
		c.Realtime.BufferSize = DefaultSocketBufferSize
	}

	if c.Roster.BudgetFloor == 0 {
		c.Roster.BudgetFloor = DefaultBudgetFloor
	}
	if c.Roster.MaxSlots == 0 {
		c.Roster.MaxSlots = DefaultMaxSlots
	}

	if c.Schedule.BatchSize == 0 {
		c.Schedule.BatchSize = DefaultBatchSize
	}
	if c.Schedule.BatchDelay == 0 {
		c.Schedule.BatchDelay = DefaultBatchDelay
	}

	if c.TradeLock.Timezone == "" {
		c.TradeLock.Timezone = DefaultTimezone
	}

	if c.JournalEnabled() {
		applyDBDefaults(&c.Journal.Database)
	}
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = DefaultJournalBatchSize
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = DefaultFlushInterval
	}
	if c.Journal.BufferSize == 0 {
		c.Journal.BufferSize = DefaultJournalBufferSize
	}

	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultDBMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultDBMinConns
	}
}
