package pile

import (
	"errors"
	"math"
	"strings"
)

// AbsoluteMaxFileSize is the largest MaxFileSize ValidateConfig accepts:
// half of addressable memory on a 64-bit host, past which an mmap'd
// region risks exhausting the address space on its own.
const AbsoluteMaxFileSize int64 = math.MaxInt64 / 2

// Config configures a Pile.
type Config struct {
	// Path is the pile file's location on disk. Created if absent.
	Path string
	// MaxFileSize bounds how large Path may grow before Open/Put refuse to
	// proceed with FileTooLarge.
	MaxFileSize int64
}

// DefaultConfig returns a Config with a conservative 1 TiB file size cap.
func DefaultConfig() Config {
	return Config{
		MaxFileSize: 1 << 40,
	}
}

// ValidateConfig checks cfg for the constraints Open relies on.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Path) == "" {
		return errors.New("pile: path is required")
	}
	if cfg.MaxFileSize <= 0 {
		return errors.New("pile: max_file_size must be > 0")
	}
	if cfg.MaxFileSize > AbsoluteMaxFileSize {
		return errors.New("pile: max_file_size exceeds half of addressable memory on a 64-bit host")
	}
	return nil
}
