package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/acmecorp/invoicedesk/internal/domain"
	"github.com/acmecorp/invoicedesk/internal/session"
	"github.com/acmecorp/invoicedesk/internal/store"
	"github.com/acmecorp/invoicedesk/internal/validate"
)

var (
	// ErrInvalidCredentials covers every bad-credential outcome: malformed
	// email, unknown user, wrong password. Callers must not learn which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthFailed covers classified non-credential failures, such as the
	// user store being unreachable.
	ErrAuthFailed = errors.New("authentication failed")
)

// CredentialUserStore is the lookup the credential service needs.
type CredentialUserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CredentialService verifies an email/password pair against the user store
// and mints a session token on success.
type CredentialService struct {
	users    CredentialUserStore
	sessions *session.Manager
}

func NewCredentialService(users CredentialUserStore, sessions *session.Manager) *CredentialService {
	return &CredentialService{users: users, sessions: sessions}
}

// SignIn implements Authenticator. Credentials that fail the shape check
// are rejected without a store round trip.
func (s *CredentialService) SignIn(ctx context.Context, creds domain.Credentials) (string, error) {
	if !validate.ValidEmail(creds.Email) || len(creds.Password) < validate.MinPasswordLength {
		return "", ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		return "", fmt.Errorf("issuing session: %w", err)
	}
	return token, nil
}
