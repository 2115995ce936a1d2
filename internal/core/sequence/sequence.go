// Package sequence provides domain contracts for document auto-numbering.
// Implementations live in the infrastructure layer and must allocate
// numbers from a shared counter record, never from process memory, so
// concurrent callers never collide.
package sequence

import (
	"context"
	"fmt"
	"time"
)

// Generator generates sequential document numbers.
// Pattern: PREFIX-YEAR-NNNNN (e.g. SIN-2026-00001).
type Generator interface {
	// Next atomically increments the counter for the prefix and returns
	// the formatted number.
	Next(ctx context.Context, cfg Config, period time.Time) (string, error)
}

// Config holds numbering configuration for one document type.
type Config struct {
	// Prefix added to all numbers (e.g. "SIN", "SOUT", "RET")
	Prefix string

	// IncludeYear adds the year to the number and resets yearly
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
	}
}

// Format renders a counter value using the configuration.
func Format(cfg Config, period time.Time, value int64) string {
	width := cfg.PadWidth
	if width <= 0 {
		width = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%d-%0*d", cfg.Prefix, period.Year(), width, value)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, width, value)
}

// Key identifies the counter row for a prefix and period.
func Key(cfg Config, period time.Time) string {
	if cfg.IncludeYear {
		return fmt.Sprintf("%s:%d", cfg.Prefix, period.Year())
	}
	return cfg.Prefix
}
