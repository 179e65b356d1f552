// Package pgpool maintains a registry of named pgx connection pools.
// Each owner key maps to at most one live pool; pools are created on
// first Acquire, shared by every caller of the same key, and torn down
// on Release.
package pgpool

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// Options describes the connection parameters for a pool. They are
// authoritative only at first creation: a later Acquire with different
// Options still returns the existing pool until the key is released.
type Options struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	MinConns       int32
	MaxConns       int32
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Port == 0 {
		o.Port = 5432
	}
	if o.MaxConns == 0 {
		o.MaxConns = 10
	}
	if o.IdleTimeout == 0 {
		o.IdleTimeout = 30 * time.Second
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	return o
}

func (o Options) connString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(o.User, o.Password),
		Host:   fmt.Sprintf("%s:%d", o.Host, o.Port),
		Path:   "/" + o.Database,
	}
	return u.String()
}

// ConnectError wraps a failed pool creation for a given owner key.
type ConnectError struct {
	Key string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting pool %q: %v", e.Key, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// DialFunc establishes a pool from the given options.
type DialFunc func(ctx context.Context, opts Options) (*pgxpool.Pool, error)

type entry struct {
	mu      sync.Mutex
	pool    *pgxpool.Pool
	removed bool
}

// Registry owns the ownerKey -> pool mapping. It is the sole mutator
// of that mapping and serializes creation and teardown per key;
// operations on distinct keys proceed independently.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	dial    DialFunc
	gauge   prometheus.Gauge
}

// Option configures a Registry.
type Option func(*Registry)

// WithDialer overrides how pools are established. Used by tests.
func WithDialer(dial DialFunc) Option {
	return func(r *Registry) { r.dial = dial }
}

// WithPoolGauge tracks the number of live pools in the given gauge.
func WithPoolGauge(g prometheus.Gauge) Option {
	return func(r *Registry) { r.gauge = g }
}

// NewRegistry creates an empty pool registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		dial:    defaultDial,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultDial(ctx context.Context, opts Options) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(opts.connString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.MinConns = opts.MinConns
	cfg.MaxConns = opts.MaxConns
	cfg.MaxConnIdleTime = opts.IdleTimeout
	cfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// Acquire returns the live pool for ownerKey, creating it with opts if
// none exists. Creation is serialized per key, so concurrent callers
// for the same key share a single dial. A failed dial registers
// nothing, leaving the key free for a clean retry.
func (r *Registry) Acquire(ctx context.Context, ownerKey string, opts Options) (*pgxpool.Pool, error) {
	for {
		r.mu.Lock()
		e, ok := r.entries[ownerKey]
		if !ok {
			e = &entry{}
			r.entries[ownerKey] = e
		}
		r.mu.Unlock()

		e.mu.Lock()
		if e.removed {
			// Lost a race with Release; start over with a fresh entry.
			e.mu.Unlock()
			continue
		}
		if e.pool != nil {
			pool := e.pool
			e.mu.Unlock()
			return pool, nil
		}

		pool, err := r.dial(ctx, opts.withDefaults())
		if err != nil {
			e.removed = true
			r.mu.Lock()
			if cur, ok := r.entries[ownerKey]; ok && cur == e {
				delete(r.entries, ownerKey)
			}
			r.mu.Unlock()
			e.mu.Unlock()
			return nil, &ConnectError{Key: ownerKey, Err: err}
		}

		e.pool = pool
		e.mu.Unlock()
		if r.gauge != nil {
			r.gauge.Inc()
		}
		return pool, nil
	}
}

// Release closes and removes the pool for ownerKey. Releasing an
// unknown key is a no-op.
func (r *Registry) Release(ctx context.Context, ownerKey string) {
	r.mu.Lock()
	e, ok := r.entries[ownerKey]
	if ok {
		delete(r.entries, ownerKey)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	e.removed = true
	if e.pool != nil {
		e.pool.Close()
		e.pool = nil
		if r.gauge != nil {
			r.gauge.Dec()
		}
	}
	e.mu.Unlock()
}

// CloseAll releases every registered pool.
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	r.mu.Unlock()

	for _, key := range keys {
		r.Release(ctx, key)
	}
}

// Len reports the number of registered pools.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Source binds a registry, owner key, and options so repositories can
// borrow the shared pool per operation without holding it.
type Source struct {
	reg  *Registry
	key  string
	opts Options
}

// Source returns a Source for the given owner key.
func (r *Registry) Source(ownerKey string, opts Options) *Source {
	return &Source{reg: r, key: ownerKey, opts: opts}
}

// Pool returns the live pool for the source's owner key, establishing
// it on first use.
func (s *Source) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	return s.reg.Acquire(ctx, s.key, s.opts)
}
