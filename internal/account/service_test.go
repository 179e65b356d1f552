package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adminkit/adminkit/internal/account"
)

const testBcryptCost = 4 // low cost for fast tests

// --- Mock Repository ---

type mockRepo struct {
	createFn         func(ctx context.Context, a *account.Account) error
	updateFn         func(ctx context.Context, id uuid.UUID, fields account.UpdateFields) (*account.Account, error)
	softDeleteFn     func(ctx context.Context, id uuid.UUID) (int64, error)
	hardDeleteFn     func(ctx context.Context, id uuid.UUID) (int64, error)
	recoverFn        func(ctx context.Context, id uuid.UUID) (int64, error)
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*account.Account, error)
	getByUsernameFn  func(ctx context.Context, username string) (*account.Account, error)
	listFn           func(ctx context.Context) ([]account.Account, error)
	getDeletedFn     func(ctx context.Context, id uuid.UUID) (*account.Account, error)
	listDeletedFn    func(ctx context.Context) ([]account.Account, error)
	touchLastLoginFn func(ctx context.Context, id uuid.UUID, at time.Time) error
}

func (m *mockRepo) Create(ctx context.Context, a *account.Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	a.ID = uuid.New()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

func (m *mockRepo) Update(ctx context.Context, id uuid.UUID, fields account.UpdateFields) (*account.Account, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, account.ErrNotFound
}

func (m *mockRepo) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, id)
	}
	return 0, nil
}

func (m *mockRepo) HardDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	if m.hardDeleteFn != nil {
		return m.hardDeleteFn(ctx, id)
	}
	return 0, nil
}

func (m *mockRepo) Recover(ctx context.Context, id uuid.UUID) (int64, error) {
	if m.recoverFn != nil {
		return m.recoverFn(ctx, id)
	}
	return 0, nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, account.ErrNotFound
}

func (m *mockRepo) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, account.ErrNotFound
}

func (m *mockRepo) List(ctx context.Context) ([]account.Account, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []account.Account{}, nil
}

func (m *mockRepo) GetDeleted(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if m.getDeletedFn != nil {
		return m.getDeletedFn(ctx, id)
	}
	return nil, account.ErrNotFound
}

func (m *mockRepo) ListDeleted(ctx context.Context) ([]account.Account, error) {
	if m.listDeletedFn != nil {
		return m.listDeletedFn(ctx)
	}
	return []account.Account{}, nil
}

func (m *mockRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if m.touchLastLoginFn != nil {
		return m.touchLastLoginFn(ctx, id, at)
	}
	return nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), testBcryptCost)
	require.NoError(t, err)
	return string(hash)
}

func storedAccount(t *testing.T, username, password string) *account.Account {
	t.Helper()
	now := time.Now().UTC()
	return &account.Account{
		ID:           uuid.New(),
		Fullname:     "Alice Example",
		Role:         account.RoleOperator,
		Username:     username,
		PasswordHash: hashOf(t, password),
		Status:       account.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- HashPassword Tests ---

func TestHashPassword_VerifiableAndSalted(t *testing.T) {
	t.Parallel()

	svc := account.NewService(&mockRepo{}, testBcryptCost)

	first, err := svc.HashPassword("secret1")
	require.NoError(t, err)
	second, err := svc.HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "per-record salt should vary the hash")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(first), []byte("secret1")))
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	stored := storedAccount(t, "alice", "secret1")
	var touched *time.Time
	repo := &mockRepo{
		getByUsernameFn: func(_ context.Context, username string) (*account.Account, error) {
			assert.Equal(t, "alice", username)
			return stored, nil
		},
		touchLastLoginFn: func(_ context.Context, id uuid.UUID, at time.Time) error {
			assert.Equal(t, stored.ID, id)
			touched = &at
			return nil
		},
	}

	svc := account.NewService(repo, testBcryptCost)
	a, err := svc.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	assert.Empty(t, a.PasswordHash, "password hash must be stripped from the result")
	require.NotNil(t, touched, "last_login must be stamped")
	require.NotNil(t, a.LastLogin)
	assert.Equal(t, *touched, *a.LastLogin)
}

func TestLogin_UnknownUsername(t *testing.T) {
	t.Parallel()

	svc := account.NewService(&mockRepo{}, testBcryptCost)
	_, err := svc.Login(context.Background(), "ghost", "secret1")

	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestLogin_WrongPasswordLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	stored := storedAccount(t, "alice", "secret1")
	touched := false
	repo := &mockRepo{
		getByUsernameFn: func(context.Context, string) (*account.Account, error) {
			return stored, nil
		},
		touchLastLoginFn: func(context.Context, uuid.UUID, time.Time) error {
			touched = true
			return nil
		},
	}

	svc := account.NewService(repo, testBcryptCost)
	_, err := svc.Login(context.Background(), "alice", "wrong-password")

	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
	assert.False(t, touched, "a failed login must not stamp last_login")
}
