package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/adminkit/adminkit/internal/api/handler"
	"github.com/adminkit/adminkit/internal/api/middleware"
	"github.com/adminkit/adminkit/internal/dispatch"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Accounts       *dispatch.Dispatcher
	DataReferences *dispatch.Dispatcher
	Enums          *dispatch.Dispatcher
	DBPinger       handler.DBPinger
	Version        string
	Metrics        http.Handler
}

// NewRouter creates and configures a Chi router with all middleware
// and manager routes. Each manager takes {operation, payload} as
// POST /{manager}/{operation} with the payload as the body.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	if deps.Accounts != nil {
		accountHandler := handler.NewManagerHandler(deps.Accounts, handler.WithSessionCookies())
		r.Post("/accounts/{operation}", accountHandler.Dispatch)
	}
	if deps.DataReferences != nil {
		refHandler := handler.NewManagerHandler(deps.DataReferences)
		r.Post("/data-references/{operation}", refHandler.Dispatch)
	}
	if deps.Enums != nil {
		enumHandler := handler.NewManagerHandler(deps.Enums)
		r.Post("/enums/{operation}", enumHandler.Dispatch)
	}

	return r
}
