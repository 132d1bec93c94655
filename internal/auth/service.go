package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// Sessions issues and resolves bearer tokens.
type Sessions interface {
	Issue(ctx context.Context, caller shared.Caller) (string, error)
	Resolve(ctx context.Context, token string) (shared.Caller, error)
	Revoke(ctx context.Context, token string) error
	TTL() time.Duration
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	sessions Sessions
}

// NewService constructs a new Service.
func NewService(repo Repository, sessions Sessions) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates the user and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.sessions.Issue(ctx, shared.Caller{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout revokes the bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// TokenTTL reports how long issued tokens stay valid.
func (s *Service) TokenTTL() time.Duration {
	return s.sessions.TTL()
}

// Resolve maps a bearer token to the caller it was issued for.
func (s *Service) Resolve(ctx context.Context, token string) (shared.Caller, error) {
	return s.sessions.Resolve(ctx, token)
}

// Profile loads the current profile for caller.
func (s *Service) Profile(ctx context.Context, caller shared.Caller) (Profile, error) {
	user, err := s.repo.FindByID(ctx, caller.UserID)
	if err != nil {
		return Profile{}, err
	}
	return toProfile(user), nil
}

func toProfile(u *User) Profile {
	return Profile{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
