package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/acmecorp/invoicedesk/internal/domain"
	"github.com/acmecorp/invoicedesk/internal/session"
	"github.com/acmecorp/invoicedesk/internal/store"
)

type fakeCredentialStore struct {
	user  *domain.User
	err   error
	calls int
}

func (f *fakeCredentialStore) GetUserByEmail(context.Context, string) (*domain.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func credFixture(t *testing.T) (*CredentialService, *fakeCredentialStore, *session.Manager) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("abc123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &fakeCredentialStore{user: &domain.User{
		ID:           "user-1",
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: string(hash),
	}}
	sessions := session.NewManager("test-secret", time.Hour)
	return NewCredentialService(users, sessions), users, sessions
}

func TestSignIn_Success(t *testing.T) {
	svc, _, sessions := credFixture(t)

	token, err := svc.SignIn(context.Background(), domain.Credentials{
		Email: "ada@example.com", Password: "abc123",
	})

	require.NoError(t, err)
	claims, err := sessions.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestSignIn_MalformedCredentials_NoStoreRoundTrip(t *testing.T) {
	svc, users, _ := credFixture(t)

	cases := []domain.Credentials{
		{Email: "not-an-email", Password: "abc123"},
		{Email: "ada@example.com", Password: "short"},
		{},
	}
	for _, creds := range cases {
		_, err := svc.SignIn(context.Background(), creds)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Zero(t, users.calls)
}

func TestSignIn_UnknownUser(t *testing.T) {
	svc, users, _ := credFixture(t)
	users.err = store.ErrNotFound

	_, err := svc.SignIn(context.Background(), domain.Credentials{
		Email: "ghost@example.com", Password: "abc123",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc, _, _ := credFixture(t)

	_, err := svc.SignIn(context.Background(), domain.Credentials{
		Email: "ada@example.com", Password: "wrong-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_StoreFailureIsClassified(t *testing.T) {
	svc, users, _ := credFixture(t)
	users.err = errors.New("connection refused")

	_, err := svc.SignIn(context.Background(), domain.Credentials{
		Email: "ada@example.com", Password: "abc123",
	})

	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
