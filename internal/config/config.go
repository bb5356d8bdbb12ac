package config

import "time"

// Config is the root configuration for a rosterd instance.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Roster    RosterConfig    `yaml:"roster"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	TradeLock TradeLockConfig `yaml:"trade_lock"`
	Journal   JournalConfig   `yaml:"journal"`
	Health    HealthConfig    `yaml:"health"`
}

// APIConfig holds REST backend settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// RealtimeConfig holds websocket transport settings.
type RealtimeConfig struct {
	Origin            string        `yaml:"origin"` // ws(s):// backend origin
	ReconnectAttempts int           `yaml:"reconnect_attempts"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	PingInterval      time.Duration `yaml:"ping_interval"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	BufferSize        int           `yaml:"buffer_size"`
}

// RosterConfig holds budget and slot rules.
type RosterConfig struct {
	BudgetFloor int64 `yaml:"budget_floor"` // minor currency units
	MaxSlots    int   `yaml:"max_slots"`
}

// ScheduleConfig holds progressive subscription settings.
type ScheduleConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	BatchDelay time.Duration `yaml:"batch_delay"`
}

// TradeLockConfig holds the trade-lock calendar anchor.
type TradeLockConfig struct {
	Timezone string `yaml:"timezone"`
}

// JournalConfig holds the optional delta journal database.
// The journal is disabled when Database.Host is empty.
type JournalConfig struct {
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// JournalEnabled reports whether a journal database is configured.
func (c *Config) JournalEnabled() bool {
	return c.Journal.Database.Host != ""
}
