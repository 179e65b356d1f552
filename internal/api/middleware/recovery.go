package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adminkit/adminkit/internal/dispatch"
)

// Recovery recovers from panics and writes an INTERNAL_ERROR envelope.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered", "error", err, "requestId", GetRequestID(r.Context()))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				resp := dispatch.Response{
					Error: dispatch.NewError(dispatch.CodeInternal, "an internal error occurred"),
				}
				if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
					slog.Error("failed to encode panic response", "error", encErr)
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
