package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adminkit/adminkit/internal/pgpool"
)

const accountColumns = `id, fullname, role, username, password_hash, status,
       created_at, updated_at, last_login, deleted_at`

// PostgresRepository implements Repository against the accounts table,
// borrowing the shared pool per operation.
type PostgresRepository struct {
	db *pgpool.Source
}

// NewRepository creates a Repository backed by the given pool source.
func NewRepository(db *pgpool.Source) Repository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the accounts table and its partial unique index
// if they do not exist. Username uniqueness is enforced only among
// non-deleted rows, so a soft-deleted username may be reused.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			fullname TEXT NOT NULL,
			role TEXT NOT NULL,
			username TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			last_login TIMESTAMPTZ,
			deleted_at TIMESTAMPTZ
		)`)
	if err != nil {
		return fmt.Errorf("creating accounts table: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS accounts_username_active_idx
		ON accounts (username) WHERE deleted_at IS NULL`)
	if err != nil {
		return fmt.Errorf("creating username index: %w", err)
	}

	return nil
}

// Create inserts a new account. A pre-check gives a fast ErrUsernameTaken
// for the common case; the partial unique index remains the authority
// under concurrent duplicate inserts.
func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}

	var existing uuid.UUID
	err = pool.QueryRow(ctx,
		`SELECT id FROM accounts WHERE username = $1 AND deleted_at IS NULL`,
		a.Username,
	).Scan(&existing)
	if err == nil {
		return ErrUsernameTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("checking username: %w", err)
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err = pool.Exec(ctx, `
		INSERT INTO accounts (id, fullname, role, username, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Fullname, a.Role, a.Username, a.PasswordHash, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUsernameTaken
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	return nil
}

// Update modifies the given fields on a non-deleted account and always
// recomputes updated_at. When the username changes, the same scoped
// pre-check runs excluding the row's own id.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Account, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	if fields.Username != nil {
		var existing uuid.UUID
		err = pool.QueryRow(ctx,
			`SELECT id FROM accounts WHERE username = $1 AND id <> $2 AND deleted_at IS NULL`,
			*fields.Username, id,
		).Scan(&existing)
		if err == nil {
			return nil, ErrUsernameTaken
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("checking username: %w", err)
		}
	}

	var setClauses []string
	var args []any
	argIdx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if fields.Fullname != nil {
		set("fullname", *fields.Fullname)
	}
	if fields.Role != nil {
		set("role", *fields.Role)
	}
	if fields.Username != nil {
		set("username", *fields.Username)
	}
	if fields.PasswordHash != nil {
		set("password_hash", *fields.PasswordHash)
	}
	if fields.Status != nil {
		set("status", *fields.Status)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE accounts
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, accountColumns)

	a, err := scanOne(pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return a, nil
}

// SoftDelete stamps deleted_at on a non-deleted account. A second call
// affects zero rows and still succeeds.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	result, err := pool.Exec(ctx,
		`UPDATE accounts SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		now, id,
	)
	if err != nil {
		return 0, fmt.Errorf("soft deleting account: %w", err)
	}

	return result.RowsAffected(), nil
}

// HardDelete removes the row physically. It is not gated by soft-delete
// status; administrative purge may remove active rows too.
func (r *PostgresRepository) HardDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return 0, err
	}

	result, err := pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("hard deleting account: %w", err)
	}

	return result.RowsAffected(), nil
}

// Recover clears deleted_at on a soft-deleted account. Recovering an
// active or missing id affects zero rows.
func (r *PostgresRepository) Recover(ctx context.Context, id uuid.UUID) (int64, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return 0, err
	}

	result, err := pool.Exec(ctx,
		`UPDATE accounts SET deleted_at = NULL, updated_at = $1 WHERE id = $2 AND deleted_at IS NOT NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return 0, fmt.Errorf("recovering account: %w", err)
	}

	return result.RowsAffected(), nil
}

// GetByID retrieves a single non-deleted account.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE id = $1 AND deleted_at IS NULL`, accountColumns)
	return scanOne(pool.QueryRow(ctx, query, id))
}

// GetByUsername retrieves a single non-deleted account by username,
// hash included. Used by the auth service.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE username = $1 AND deleted_at IS NULL`, accountColumns)
	return scanOne(pool.QueryRow(ctx, query, username))
}

// List retrieves all non-deleted accounts ordered by fullname.
func (r *PostgresRepository) List(ctx context.Context) ([]Account, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE deleted_at IS NULL ORDER BY fullname`, accountColumns)
	return r.list(ctx, query)
}

// GetDeleted retrieves a single soft-deleted account.
func (r *PostgresRepository) GetDeleted(ctx context.Context, id uuid.UUID) (*Account, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE id = $1 AND deleted_at IS NOT NULL`, accountColumns)
	return scanOne(pool.QueryRow(ctx, query, id))
}

// ListDeleted retrieves soft-deleted accounts, most recently deleted
// first.
func (r *PostgresRepository) ListDeleted(ctx context.Context) ([]Account, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC`, accountColumns)
	return r.list(ctx, query)
}

// TouchLastLogin stamps last_login after a successful login.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `UPDATE accounts SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("updating last_login: %w", err)
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string) ([]Account, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		err := rows.Scan(
			&a.ID, &a.Fullname, &a.Role, &a.Username, &a.PasswordHash, &a.Status,
			&a.CreatedAt, &a.UpdatedAt, &a.LastLogin, &a.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	if accounts == nil {
		accounts = []Account{}
	}

	return accounts, nil
}

func scanOne(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.Fullname, &a.Role, &a.Username, &a.PasswordHash, &a.Status,
		&a.CreatedAt, &a.UpdatedAt, &a.LastLogin, &a.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning account row: %w", err)
	}
	return &a, nil
}
