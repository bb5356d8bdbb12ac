package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.Realtime.Origin == "" {
		return errors.New("realtime.origin is required")
	}
	if c.Realtime.ReconnectAttempts < 1 {
		return errors.New("realtime.reconnect_attempts must be >= 1")
	}
	if c.Realtime.BufferSize < 1 {
		return errors.New("realtime.buffer_size must be >= 1")
	}

	if c.Roster.BudgetFloor < 1 {
		return errors.New("roster.budget_floor must be >= 1")
	}
	if c.Roster.MaxSlots < 1 {
		return errors.New("roster.max_slots must be >= 1")
	}

	if c.Schedule.BatchSize < 1 {
		return errors.New("schedule.batch_size must be >= 1")
	}
	if c.Schedule.BatchDelay < time.Millisecond {
		return errors.New("schedule.batch_delay must be >= 1ms")
	}

	if _, err := time.LoadLocation(c.TradeLock.Timezone); err != nil {
		return fmt.Errorf("trade_lock.timezone: %w", err)
	}

	if c.JournalEnabled() {
		if err := c.Journal.Database.validate("journal.database"); err != nil {
			return err
		}
		if c.Journal.BatchSize < 1 {
			return errors.New("journal.batch_size must be >= 1")
		}
		if c.Journal.BufferSize < 1 {
			return errors.New("journal.buffer_size must be >= 1")
		}
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
