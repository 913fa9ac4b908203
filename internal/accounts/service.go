package accounts

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service encapsulates account sign-up and credential verification.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// SignUp creates a new account. Returns ErrUsernameTaken when the username is
// already registered.
func (s *Service) SignUp(ctx context.Context, username, secret string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a := &Account{Username: username, CredentialHash: string(hash)}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate verifies the secret against the stored hash. An unknown
// username and a wrong secret both yield ErrInvalidCredentials so callers
// cannot probe for registered names.
func (s *Service) Authenticate(ctx context.Context, username, secret string) (*Account, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.CredentialHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}
