package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adminkit/adminkit/internal/pgpool"
)

// Table names come from code constants, never from payloads. The
// identifier check guards against a bad constant slipping into SQL.
var tableNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// PostgresRepository implements Repository for one catalog table,
// borrowing the shared pool per operation.
type PostgresRepository struct {
	db    *pgpool.Source
	table string
}

// NewRepository creates a Repository over the given table.
func NewRepository(db *pgpool.Source, table string) (Repository, error) {
	if !tableNameRegex.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}
	return &PostgresRepository{db: db, table: table}, nil
}

// EnsureSchema creates the catalog table if it does not exist. The
// inner value is unique per category at the storage layer; the index
// keys on value->>'value' so two entries may not share a value under
// the same category even when their titles differ.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, table string) error {
	if !tableNameRegex.MatchString(table) {
		return fmt.Errorf("invalid catalog table name %q", table)
	}

	_, err := pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			category TEXT NOT NULL,
			value JSONB NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`, table))
	if err != nil {
		return fmt.Errorf("creating %s table: %w", table, err)
	}

	_, err = pool.Exec(ctx, fmt.Sprintf(`
		CREATE UNIQUE INDEX IF NOT EXISTS %s_category_value_idx
		ON %s (category, (value->>'value'))`, table, table))
	if err != nil {
		return fmt.Errorf("creating %s value index: %w", table, err)
	}

	return nil
}

// Create inserts a new entry. The pre-check on the inner value gives a
// fast duplicate error; the unique expression index keys on the same
// value and stays authoritative under concurrent inserts.
func (r *PostgresRepository) Create(ctx context.Context, e *Entry) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}

	var existing uuid.UUID
	err = pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT id FROM %s WHERE category = $1 AND value->>'value' = $2`, r.table),
		e.Category, fmt.Sprintf("%v", e.Value.Value),
	).Scan(&existing)
	if err == nil {
		return ErrDuplicateValue
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("checking value: %w", err)
	}

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err = pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, category, value, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, r.table),
		e.ID, e.Category, e.Value, e.Description, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateValue
		}
		return fmt.Errorf("inserting entry: %w", err)
	}

	return nil
}

// Update replaces category, value, and description on an entry and
// recomputes updated_at. The uniqueness pre-check excludes the row's
// own id.
func (r *PostgresRepository) Update(ctx context.Context, e *Entry) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}

	var existing uuid.UUID
	err = pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT id FROM %s WHERE category = $1 AND value->>'value' = $2 AND id <> $3`, r.table),
		e.Category, fmt.Sprintf("%v", e.Value.Value), e.ID,
	).Scan(&existing)
	if err == nil {
		return ErrDuplicateValue
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("checking value: %w", err)
	}

	e.UpdatedAt = time.Now().UTC()

	result, err := pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET category = $1, value = $2, description = $3, updated_at = $4
		WHERE id = $5`, r.table),
		e.Category, e.Value, e.Description, e.UpdatedAt, e.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateValue
		}
		return fmt.Errorf("updating entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an entry physically.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}

	result, err := pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a single entry.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	row := pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, category, value, description, created_at, updated_at
		FROM %s WHERE id = $1`, r.table), id)
	return scanEntry(row)
}

// List retrieves entries, optionally filtered by category.
func (r *PostgresRepository) List(ctx context.Context, category *string) ([]Entry, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, category, value, description, created_at, updated_at
		FROM %s`, r.table)
	var args []any
	if category != nil {
		query += ` WHERE category = $1`
		args = append(args, *category)
	}
	query += ` ORDER BY category, value->>'title'`

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.Category, &e.Value, &e.Description, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

// GetByList resolves a batch of named ids in one round trip. Missing
// ids map to nil rather than failing the batch.
func (r *PostgresRepository) GetByList(ctx context.Context, ids map[string]uuid.UUID) (map[string]*Entry, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	rows, err := pool.Query(ctx, fmt.Sprintf(`
		SELECT id, category, value, description, created_at, updated_at
		FROM %s WHERE id = ANY($1)`, r.table), unique)
	if err != nil {
		return nil, fmt.Errorf("batch querying entries: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*Entry, len(unique))
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.Category, &e.Value, &e.Description, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	out := make(map[string]*Entry, len(ids))
	for key, id := range ids {
		out[key] = byID[id]
	}
	return out, nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Category, &e.Value, &e.Description, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning entry row: %w", err)
	}
	return &e, nil
}
