package session

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmecorp/invoicedesk/internal/domain"
)

var testUser = &domain.User{ID: "user-1", Name: "Ada", Email: "ada@example.com"}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.Issue(testUser)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Issue(testUser)
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager("secret", -time.Minute)
	token, err := m.Issue(testUser)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerify_Garbage(t *testing.T) {
	m := NewManager("secret", time.Hour)
	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestFromRequest(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, err := m.Issue(testUser)
	require.NoError(t, err)

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/dashboard", nil)
		r.AddCookie(Cookie(token, time.Hour))

		claims, err := m.FromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
	})

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/dashboard", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		claims, err := m.FromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
	})

	t.Run("no session", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/dashboard", nil)
		_, err := m.FromRequest(r)
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestGateDecide(t *testing.T) {
	gate := NewGate(DefaultGateConfig())

	cases := []struct {
		path          string
		authenticated bool
		want          Decision
	}{
		{"/dashboard", false, RedirectLogin},
		{"/dashboard/invoices", false, RedirectLogin},
		{"/dashboard/invoices/abc/edit", false, RedirectLogin},
		{"/dashboard", true, Allow},
		{"/dashboard/invoices", true, Allow},
		{"/login", true, RedirectDashboard},
		{"/signup", true, RedirectDashboard},
		{"/login", false, Allow},
		{"/signup", false, Allow},
		{"/health", false, Allow},
		{"/health", true, Allow},
	}

	for _, tc := range cases {
		got := gate.Decide(tc.path, tc.authenticated)
		assert.Equal(t, tc.want, got, "path %s authenticated %v", tc.path, tc.authenticated)
	}
}
