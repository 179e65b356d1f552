package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/adminkit/adminkit/internal/metrics"
)

// ErrInvalidCredentials is returned when the supplied password does
// not match the stored hash.
var ErrInvalidCredentials = errors.New("wrong password")

// Service provides authentication on top of the account store.
type Service struct {
	repo       Repository
	bcryptCost int
	metrics    *metrics.Collector
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMetrics records login failures in the given collector.
func WithMetrics(m *metrics.Collector) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService creates an auth Service.
func NewService(repo Repository, bcryptCost int, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, bcryptCost: bcryptCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashPassword produces a salted bcrypt hash of the given password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Login verifies the credentials against the non-deleted account for
// username. On success it stamps last_login and returns the account
// with the password hash stripped; the hash never appears in a result.
// On mismatch no state changes and ErrInvalidCredentials is returned.
func (s *Service) Login(ctx context.Context, username, password string) (*Account, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.countFailure("not_found")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		s.countFailure("bad_password")
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, a.ID, now); err != nil {
		return nil, err
	}

	a.LastLogin = &now
	a.PasswordHash = ""
	return a, nil
}

func (s *Service) countFailure(reason string) {
	if s.metrics == nil {
		return
	}
	s.metrics.AuthFailures.WithLabelValues(reason).Inc()
}
