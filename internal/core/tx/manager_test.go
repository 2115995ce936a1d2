package tx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/apperror"
)

// stubManager runs fn directly and counts invocations.
type stubManager struct {
	calls int
}

func (m *stubManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	m := &stubManager{}

	err := WithRetry(context.Background(), m, func(ctx context.Context) error {
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, m.calls)
}

func TestWithRetryRetriesOnConflict(t *testing.T) {
	m := &stubManager{}
	attempts := 0

	err := WithRetry(context.Background(), m, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return apperror.NewConcurrentModification("item", "x")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, m.calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	m := &stubManager{}

	err := WithRetry(context.Background(), m, func(ctx context.Context) error {
		return apperror.NewConcurrentModification("item", "x")
	})

	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))
	assert.Equal(t, DefaultRetryAttempts, m.calls)
}

func TestWithRetryDoesNotRetryOtherErrors(t *testing.T) {
	m := &stubManager{}
	boom := errors.New("boom")

	err := WithRetry(context.Background(), m, func(ctx context.Context) error {
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.calls)
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	m := &stubManager{}
	ctx, cancel := context.WithCancel(context.Background())

	err := WithRetry(ctx, m, func(ctx context.Context) error {
		cancel()
		return apperror.NewConcurrentModification("item", "x")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, m.calls)
}
