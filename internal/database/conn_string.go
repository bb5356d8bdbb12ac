package database

import (
	"fmt"
	"net/url"

	"github.com/draftpulse/rosterlive/internal/config"
)

// BuildConnString renders a DBConfig as a postgres URL for pgx. The delta
// journal is the only database consumer; sslmode defaults to prefer so
// local development works without certificates.
func BuildConnString(cfg config.DBConfig) string {
	q := url.Values{}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	q.Set("sslmode", sslMode)

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		q.Encode(),
	)
}
