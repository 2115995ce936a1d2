package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/apperror"
)

func setupRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", handler)
	return r
}

func doRequest(t *testing.T, r *gin.Engine) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorHandlerAppError(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock("item-1", 5, 2))
	})

	w, body := doRequest(t, r)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeInsufficientStock, body["code"])
	assert.Equal(t, "Insufficient stock", body["message"])

	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "item-1", details["item_id"])
}

func TestErrorHandlerNotFound(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("item", "abc"))
	})

	w, body := doRequest(t, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, body["code"])
}

func TestErrorHandlerUnknownError(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: something awful"))
	})

	w, body := doRequest(t, r)

	// Internal details never leak to the client.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestErrorHandlerNoError(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w, body := doRequest(t, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
}

func TestErrorHandlerDoesNotOverrideWrittenResponse(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"ok": false})
		_ = c.Error(apperror.NewValidation("late error"))
	})

	w, _ := doRequest(t, r)
	assert.Equal(t, http.StatusTeapot, w.Code)
}
