package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recoveryHandler(logBuf *bytes.Buffer, next http.HandlerFunc) http.Handler {
	logger := slog.New(slog.NewJSONHandler(logBuf, nil))
	return Recovery(logger)(next)
}

func TestRecovery_PanicReturns500(t *testing.T) {
	var logBuf bytes.Buffer
	handler := recoveryHandler(&logBuf, func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)

	logged := logBuf.String()
	assert.Contains(t, logged, "panic recovered")
	assert.Contains(t, logged, "boom")
	assert.Contains(t, logged, "/api/products")
}

func TestRecovery_NoPanic_PassesThrough(t *testing.T) {
	var logBuf bytes.Buffer
	handler := recoveryHandler(&logBuf, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/brands", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"id":"1"}`, rec.Body.String())
	assert.NotContains(t, logBuf.String(), "panic recovered")
}

func TestRecovery_AbortHandler_Repanics(t *testing.T) {
	var logBuf bytes.Buffer
	handler := recoveryHandler(&logBuf, func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithError(t, http.ErrAbortHandler.Error(), func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.NotContains(t, logBuf.String(), "panic recovered")
}
