package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/pennyledger/pennyledger/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenService
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenService) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates login/password credentials and the API capability
// flag. Every failure collapses to ErrInvalidCredentials so the caller cannot
// distinguish an unknown login from a bad password or a missing capability.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*User, error) {
	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.APIEnabled {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a token in one step.
func (s *Service) Login(ctx context.Context, login, password string) (string, *User, error) {
	user, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
