// Package dispatch routes logical operations through the shared
// validate -> execute -> format pipeline and normalizes every outcome
// into the response envelope.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adminkit/adminkit/internal/metrics"
	"github.com/adminkit/adminkit/internal/pgpool"
	"github.com/adminkit/adminkit/internal/schema"
)

// Error codes carried in the response envelope.
const (
	CodeUnknownOperation   = "UNKNOWN_OPERATION"
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicate          = "DUPLICATE"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeConnection         = "CONNECTION_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error is the typed failure shape every operation resolves to.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// NewError creates a typed operation error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails attaches structured detail to the error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// Response is the uniform envelope returned for every operation.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Error   *Error `json:"error,omitempty"`
}

// MarshalJSON keeps data on success envelopes even when it is null (a
// found-nothing read is a success with null data) and keeps failure
// envelopes to success and error alone.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool `json:"success"`
			Data    any  `json:"data"`
		}{true, r.Data})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Error   *Error `json:"error,omitempty"`
	}{false, r.Error})
}

// Handler executes one operation against its store.
type Handler func(ctx context.Context, payload map[string]any) (any, error)

// Dispatcher maps operation names to their schema and handler for one
// entity manager.
type Dispatcher struct {
	name        string
	schemas     *schema.Set
	handlers    map[string]Handler
	unvalidated map[string]bool
	metrics     *metrics.Collector
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics instruments dispatches with the given collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithUnvalidated marks operations that bypass payload validation.
func WithUnvalidated(ops ...string) Option {
	return func(d *Dispatcher) {
		for _, op := range ops {
			d.unvalidated[op] = true
		}
	}
}

// New creates a dispatcher for one entity manager.
func New(name string, schemas *schema.Set, handlers map[string]Handler, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		name:        name,
		schemas:     schemas,
		handlers:    handlers,
		unvalidated: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the manager name this dispatcher serves.
func (d *Dispatcher) Name() string { return d.name }

// Supports reports whether op is dispatchable.
func (d *Dispatcher) Supports(op string) bool {
	_, ok := d.handlers[canonical(op)]
	return ok
}

// Dispatch runs one operation through validate -> execute and wraps
// the outcome. An unmapped operation fails before validation, a failed
// validation never reaches the store, and no failure escapes untyped.
func (d *Dispatcher) Dispatch(ctx context.Context, op string, payload map[string]any) Response {
	op = canonical(op)
	start := time.Now()

	handler, ok := d.handlers[op]
	if !ok {
		return d.fail(op, start, NewError(CodeUnknownOperation, fmt.Sprintf("unknown operation %q", op)), nil)
	}

	if !d.unvalidated[op] {
		if err := d.schemas.Validate(op, payload); err != nil {
			return d.fail(op, start, normalize(err), err)
		}
	}

	data, err := handler(ctx, payload)
	if err != nil {
		return d.fail(op, start, normalize(err), err)
	}

	d.observe(op, "success", start)
	return Response{Success: true, Data: data}
}

func (d *Dispatcher) fail(op string, start time.Time, opErr *Error, cause error) Response {
	if opErr.Code == CodeInternal {
		slog.Error("operation failed", "manager", d.name, "operation", op, "error", cause)
	} else {
		slog.Debug("operation rejected", "manager", d.name, "operation", op, "code", opErr.Code)
	}
	d.observe(op, strings.ToLower(opErr.Code), start)
	return Response{Success: false, Error: opErr}
}

func (d *Dispatcher) observe(op, outcome string, start time.Time) {
	if d.metrics == nil {
		return
	}
	d.metrics.OperationsTotal.WithLabelValues(d.name, op, outcome).Inc()
	d.metrics.OperationDuration.WithLabelValues(d.name, op).Observe(time.Since(start).Seconds())
}

// normalize converts any failure into a typed Error. Raw storage
// errors never escape; anything unrecognized becomes INTERNAL_ERROR
// with a generic message.
func normalize(err error) *Error {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr
	}

	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		return NewError(CodeValidation, "invalid payload").WithDetails(ve.Fields)
	}

	var ue *schema.UnknownOperationError
	if errors.As(err, &ue) {
		return NewError(CodeUnknownOperation, ue.Error())
	}

	var ce *pgpool.ConnectError
	if errors.As(err, &ce) {
		return NewError(CodeConnection, "database connection failed")
	}

	return NewError(CodeInternal, "an internal error occurred")
}

func canonical(op string) string {
	return strings.ToLower(strings.TrimSpace(op))
}
