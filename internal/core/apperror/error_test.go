package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewValidation("name is required")
	assert.Equal(t, "VALIDATION_ERROR: name is required", err.Error())

	cause := errors.New("connection reset")
	wrapped := NewInternal(cause)
	assert.Contains(t, wrapped.Error(), "INTERNAL_ERROR")
	assert.Contains(t, wrapped.Error(), "connection reset")
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewInternal(cause)
	assert.ErrorIs(t, err, cause)
}

func TestAsAppErrorThroughWrapping(t *testing.T) {
	inner := NewNotFound("item", "abc")
	wrapped := fmt.Errorf("load item: %w", inner)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("bad"), http.StatusBadRequest},
		{"not found", NewNotFound("item", 1), http.StatusNotFound},
		{"insufficient stock", NewInsufficientStock("a", 5, 2), http.StatusUnprocessableEntity},
		{"insufficient funds", NewInsufficientFunds("cash", "10", "3"), http.StatusUnprocessableEntity},
		{"mode locked", NewModeLocked("a", "manufactured"), http.StatusUnprocessableEntity},
		{"already saved", NewAlreadySaved("a", "2026-08-30", "morning"), http.StatusUnprocessableEntity},
		{"duplicate return", NewDuplicateReturn("s1"), http.StatusConflict},
		{"concurrent modification", NewConcurrentModification("item", 1), http.StatusConflict},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.err))
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsInsufficientStock(NewInsufficientStock("a", 5, 2)))
	assert.True(t, IsInsufficientFunds(NewInsufficientFunds("cash", "10", "3")))
	assert.True(t, IsModeLocked(NewModeLocked("a", "manufactured")))
	assert.True(t, IsDuplicateReturn(NewDuplicateReturn("s1")))
	assert.True(t, IsAlreadySaved(NewAlreadySaved("a", "2026-08-30", "morning")))
	assert.True(t, IsConcurrentModification(NewConcurrentModification("item", 1)))

	assert.False(t, IsNotFound(NewValidation("bad")))
	assert.False(t, IsNotFound(errors.New("boom")))
	assert.False(t, IsNotFound(nil))
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("bad").WithDetail("field", "qty").WithDetail("min", 0)
	assert.Equal(t, "qty", err.Details["field"])
	assert.Equal(t, 0, err.Details["min"])
}
