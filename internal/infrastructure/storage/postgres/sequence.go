package postgres

import (
	"context"
	"fmt"
	"time"

	"posledger/internal/core/sequence"
)

// SequenceGenerator implements sequence.Generator on a shared counter
// table. Numbers are allocated with UPSERT + RETURNING so concurrent
// callers never receive the same value.
//
// Allocation intentionally runs outside business transactions: numbers
// are generated before the write transaction starts, so a rolled-back
// document burns its number instead of blocking other writers on the
// counter row.
type SequenceGenerator struct {
	txm *TxManager
}

// Compile-time check.
var _ sequence.Generator = (*SequenceGenerator)(nil)

// NewSequenceGenerator creates a new counter-backed number generator.
func NewSequenceGenerator(txm *TxManager) *SequenceGenerator {
	return &SequenceGenerator{txm: txm}
}

// Next atomically increments the counter for the prefix (and year, when
// configured) and returns the formatted number.
func (g *SequenceGenerator) Next(ctx context.Context, cfg sequence.Config, period time.Time) (string, error) {
	key := sequence.Key(cfg, period)

	var value int64
	err := g.txm.GetQuerier(ctx).QueryRow(ctx, `
        INSERT INTO doc_counters (key, current_val)
        VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET current_val = doc_counters.current_val + 1
        RETURNING current_val
	`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", key, err)
	}

	return sequence.Format(cfg, period, value), nil
}
