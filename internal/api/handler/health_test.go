package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminkit/adminkit/internal/api/handler"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(context.Context) error { return p.err }

func getHealth(t *testing.T, h *handler.HealthHandler) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealth_DatabaseReachable(t *testing.T) {
	t.Parallel()

	h := handler.NewHealthHandler(&stubPinger{}, "1.2.3")
	code, body := getHealth(t, h)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	db := body["database"].(map[string]any)
	assert.Equal(t, true, db["connected"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	t.Parallel()

	h := handler.NewHealthHandler(&stubPinger{err: errors.New("connection refused")}, "1.2.3")
	code, body := getHealth(t, h)

	assert.Equal(t, http.StatusOK, code, "health stays 200 so probes can read the body")
	assert.Equal(t, "degraded", body["status"])
	db := body["database"].(map[string]any)
	assert.Equal(t, false, db["connected"])
}

func TestHealth_NoDatabaseConfigured(t *testing.T) {
	t.Parallel()

	h := handler.NewHealthHandler(nil, "dev")
	_, body := getHealth(t, h)

	assert.Equal(t, "degraded", body["status"])
}
