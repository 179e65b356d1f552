package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adminkit/adminkit/internal/api"
	"github.com/adminkit/adminkit/internal/dispatch"
	"github.com/adminkit/adminkit/internal/schema"
)

func echoDispatcher(name string) *dispatch.Dispatcher {
	schemas := schema.NewSet(schema.Strict, map[string]*schema.Schema{"findall": {}})
	handlers := map[string]dispatch.Handler{
		"findall": func(context.Context, map[string]any) (any, error) {
			return []string{name}, nil
		},
	}
	return dispatch.New(name, schemas, handlers)
}

func newRouter() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Accounts:       echoDispatcher("accounts"),
		DataReferences: echoDispatcher("data-references"),
		Enums:          echoDispatcher("enums"),
		Version:        "test",
	})
}

func TestRouter_ManagerRoutes(t *testing.T) {
	t.Parallel()

	r := newRouter()
	for _, path := range []string{"/accounts/findall", "/data-references/findall", "/enums/findall"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_ManagerRoutesArePostOnly(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/accounts/findall", nil)
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_HealthWithoutDatabase(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
}

func TestRouter_RequestIDHeaderSet(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_NoMetricsHandlerMeansNoRoute(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
