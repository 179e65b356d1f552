package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adminkit/adminkit/internal/account"
	"github.com/adminkit/adminkit/internal/dispatch"
)

// sessionCookie is the login session side channel set on login and
// cleared on logout. The cookie itself is handled here; the core
// pipeline knows nothing about it.
const sessionCookie = "accountId"

// ManagerHandler translates HTTP requests into dispatchable messages
// for one entity manager and writes the resulting envelope back.
type ManagerHandler struct {
	dispatcher *dispatch.Dispatcher
	sessions   bool
}

// Option configures a ManagerHandler.
type Option func(*ManagerHandler)

// WithSessionCookies enables the login/logout cookie side channel
// (account manager only).
func WithSessionCookies() Option {
	return func(h *ManagerHandler) { h.sessions = true }
}

// NewManagerHandler creates a handler for the given dispatcher.
func NewManagerHandler(d *dispatch.Dispatcher, opts ...Option) *ManagerHandler {
	h := &ManagerHandler{dispatcher: d}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Dispatch handles POST /{manager}/{operation}. The body is the raw
// operation payload; an empty body is an empty payload.
func (h *ManagerHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "operation")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	payload := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, dispatch.Response{
			Error: dispatch.NewError(dispatch.CodeValidation, "request body must be valid JSON"),
		})
		return
	}

	resp := h.dispatcher.Dispatch(r.Context(), op, payload)

	if h.sessions && resp.Success {
		h.setSessionCookie(w, strings.ToLower(strings.TrimSpace(op)), resp)
	}

	writeJSON(w, statusFor(resp), resp)
}

func (h *ManagerHandler) setSessionCookie(w http.ResponseWriter, op string, resp dispatch.Response) {
	switch op {
	case "login":
		if v, ok := resp.Data.(account.View); ok {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    v.ID,
				Path:     "/",
				HttpOnly: true,
			})
		}
	case "logout":
		http.SetCookie(w, &http.Cookie{
			Name:    sessionCookie,
			Value:   "",
			Path:    "/",
			Expires: time.Unix(0, 0),
			MaxAge:  -1,
		})
	}
}

// statusFor derives the HTTP status from the envelope. Consumers
// branch on the envelope's success flag; the status is a convenience.
func statusFor(resp dispatch.Response) int {
	if resp.Success {
		return http.StatusOK
	}

	switch resp.Error.Code {
	case dispatch.CodeValidation:
		return http.StatusBadRequest
	case dispatch.CodeUnknownOperation, dispatch.CodeNotFound:
		return http.StatusNotFound
	case dispatch.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case dispatch.CodeDuplicate:
		return http.StatusConflict
	case dispatch.CodeConnection:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, resp dispatch.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
