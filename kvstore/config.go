package kvstore

import (
	"errors"
	"strings"
	"time"
)

// Config configures a Store (node/config.go's Config+DefaultConfig+
// ValidateConfig shape).
type Config struct {
	// Path is the bbolt database file's location on disk.
	Path string
	// OpenTimeout bounds how long Open waits to acquire the database's
	// file lock before giving up (node/store/db.go's bolt.Options.Timeout).
	OpenTimeout time.Duration
}

// DefaultConfig returns a Config with a one-second open timeout.
func DefaultConfig() Config {
	return Config{OpenTimeout: 1 * time.Second}
}

// ValidateConfig checks cfg for the constraints Open relies on.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Path) == "" {
		return errors.New("kvstore: path is required")
	}
	if cfg.OpenTimeout <= 0 {
		return errors.New("kvstore: open_timeout must be > 0")
	}
	return nil
}
