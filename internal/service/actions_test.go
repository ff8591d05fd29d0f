package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/acmecorp/invoicedesk/internal/domain"
)

type fakeInvoiceStore struct {
	invoices    map[string]domain.Invoice
	createErr   error
	updateErr   error
	deleteErr   error
	createCalls int
	updateCalls int
	deleteCalls int
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{invoices: make(map[string]domain.Invoice)}
}

func (f *fakeInvoiceStore) CreateInvoice(_ context.Context, inv domain.Invoice) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.invoices[inv.ID] = inv
	return nil
}

func (f *fakeInvoiceStore) UpdateInvoice(_ context.Context, inv domain.Invoice) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	existing := f.invoices[inv.ID]
	existing.ID = inv.ID
	existing.CustomerID = inv.CustomerID
	existing.Amount = inv.Amount
	existing.Status = inv.Status
	f.invoices[inv.ID] = existing
	return nil
}

func (f *fakeInvoiceStore) DeleteInvoice(_ context.Context, id string) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.invoices, id)
	return nil
}

type fakeUserStore struct {
	users       map[string]domain.User
	existsErr   error
	createErr   error
	existsCalls int
	createCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]domain.User)}
}

func (f *fakeUserStore) UserEmailExists(_ context.Context, email string) (bool, error) {
	f.existsCalls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserStore) CreateUser(_ context.Context, user domain.User) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.users[user.Email] = user
	return nil
}

type fakeViews struct {
	invalidated []string
}

func (f *fakeViews) Invalidate(path string) {
	f.invalidated = append(f.invalidated, path)
}

type fakeAuth struct {
	token string
	err   error
}

func (f *fakeAuth) SignIn(context.Context, domain.Credentials) (string, error) {
	return f.token, f.err
}

type fixture struct {
	actions  *Actions
	invoices *fakeInvoiceStore
	users    *fakeUserStore
	views    *fakeViews
	auth     *fakeAuth
}

func newFixture() *fixture {
	f := &fixture{
		invoices: newFakeInvoiceStore(),
		users:    newFakeUserStore(),
		views:    &fakeViews{},
		auth:     &fakeAuth{},
	}
	f.actions = NewActions(f.invoices, f.users, f.views, f.auth, bcrypt.MinCost, zerolog.Nop())
	f.actions.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func validInvoiceForm() domain.InvoiceForm {
	return domain.InvoiceForm{CustomerID: "cust-1", Amount: "12.50", Status: "paid"}
}

func TestCreateInvoice_Success(t *testing.T) {
	f := newFixture()

	state := f.actions.CreateInvoice(context.Background(), nil, validInvoiceForm())

	require.Nil(t, state)
	require.Len(t, f.invoices.invoices, 1)
	for _, inv := range f.invoices.invoices {
		assert.Equal(t, int64(1250), inv.Amount)
		assert.Equal(t, "cust-1", inv.CustomerID)
		assert.Equal(t, domain.StatusPaid, inv.Status)
		assert.Equal(t, "2025-06-15", inv.Date)
		assert.NotEmpty(t, inv.ID)
	}
	assert.Equal(t, []string{InvoicesPath}, f.views.invalidated)
}

func TestCreateInvoice_AmountNotPositive_NoPersistence(t *testing.T) {
	for _, amount := range []string{"0", "-1", "abc", ""} {
		f := newFixture()
		form := validInvoiceForm()
		form.Amount = amount

		state := f.actions.CreateInvoice(context.Background(), nil, form)

		require.NotNil(t, state, "amount %q", amount)
		assert.NotEmpty(t, state.Errors["amount"])
		assert.Equal(t, "Missing Fields. Failed to Create Invoice.", state.Message)
		assert.Zero(t, f.invoices.createCalls)
		assert.Empty(t, f.views.invalidated)
	}
}

func TestCreateInvoice_CentsConversion(t *testing.T) {
	cases := []struct {
		amount string
		cents  int64
	}{
		{"12.50", 1250},
		{"0.01", 1},
		{"100", 10000},
		{"19.999", 2000},
	}

	for _, tc := range cases {
		f := newFixture()
		form := validInvoiceForm()
		form.Amount = tc.amount

		state := f.actions.CreateInvoice(context.Background(), nil, form)

		require.Nil(t, state, "amount %q", tc.amount)
		for _, inv := range f.invoices.invoices {
			assert.Equal(t, tc.cents, inv.Amount, "amount %q", tc.amount)
		}
	}
}

func TestCreateInvoice_StoreFailure(t *testing.T) {
	f := newFixture()
	f.invoices.createErr = errors.New("connection refused")

	state := f.actions.CreateInvoice(context.Background(), nil, validInvoiceForm())

	require.NotNil(t, state)
	assert.Equal(t, "Database Error: Failed to Create Invoice.", state.Message)
	require.NotNil(t, state.Errors)
	assert.Empty(t, state.Errors)
	assert.Empty(t, f.views.invalidated)
}

func TestUpdateInvoice_Success(t *testing.T) {
	f := newFixture()
	f.invoices.invoices["inv-1"] = domain.Invoice{
		ID: "inv-1", CustomerID: "cust-1", Amount: 100, Status: domain.StatusPending, Date: "2025-01-01",
	}

	state := f.actions.UpdateInvoice(context.Background(), "inv-1", nil, validInvoiceForm())

	require.Nil(t, state)
	got := f.invoices.invoices["inv-1"]
	assert.Equal(t, int64(1250), got.Amount)
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.Equal(t, "2025-01-01", got.Date, "update must not restamp the date")
	assert.Equal(t, []string{InvoicesPath}, f.views.invalidated)
}

func TestUpdateInvoice_Idempotent(t *testing.T) {
	f := newFixture()
	f.invoices.invoices["inv-1"] = domain.Invoice{
		ID: "inv-1", CustomerID: "cust-1", Amount: 100, Status: domain.StatusPending, Date: "2025-01-01",
	}

	require.Nil(t, f.actions.UpdateInvoice(context.Background(), "inv-1", nil, validInvoiceForm()))
	after1 := f.invoices.invoices["inv-1"]
	require.Nil(t, f.actions.UpdateInvoice(context.Background(), "inv-1", nil, validInvoiceForm()))
	after2 := f.invoices.invoices["inv-1"]

	assert.Equal(t, after1, after2)
}

func TestUpdateInvoice_ValidationFailure(t *testing.T) {
	f := newFixture()
	form := validInvoiceForm()
	form.Amount = "-3"

	state := f.actions.UpdateInvoice(context.Background(), "inv-1", nil, form)

	require.NotNil(t, state)
	assert.Equal(t, "Missing Fields. Failed to Update Invoice.", state.Message)
	assert.NotEmpty(t, state.Errors["amount"])
	assert.Zero(t, f.invoices.updateCalls)
}

func TestUpdateInvoice_StoreFailure(t *testing.T) {
	f := newFixture()
	f.invoices.updateErr = errors.New("connection refused")

	state := f.actions.UpdateInvoice(context.Background(), "inv-1", nil, validInvoiceForm())

	require.NotNil(t, state)
	assert.Equal(t, "Database Error: Failed to Update Invoice.", state.Message)
	require.NotNil(t, state.Errors)
	assert.Empty(t, state.Errors)
}

func TestDeleteInvoice(t *testing.T) {
	f := newFixture()
	f.invoices.invoices["inv-1"] = domain.Invoice{ID: "inv-1"}

	require.NoError(t, f.actions.DeleteInvoice(context.Background(), "inv-1"))
	assert.Empty(t, f.invoices.invoices)
	assert.Equal(t, []string{InvoicesPath}, f.views.invalidated)
}

func TestDeleteInvoice_FailureIsOneGenericSignal(t *testing.T) {
	f := newFixture()
	f.invoices.deleteErr = errors.New("row is locked")

	err := f.actions.DeleteInvoice(context.Background(), "inv-1")

	assert.ErrorIs(t, err, ErrDeleteInvoice)
	assert.Empty(t, f.views.invalidated)
}

func validSignupForm() domain.SignupForm {
	return domain.SignupForm{
		Name:            "Ada Lovelace",
		Email:           "ada@example.com",
		Password:        "abc123",
		ConfirmPassword: "abc123",
	}
}

func TestCreateUser_Success(t *testing.T) {
	f := newFixture()

	state := f.actions.CreateUser(context.Background(), nil, validSignupForm())

	require.True(t, state.Success)
	assert.Equal(t, "Account created successfully! Redirecting to login...", state.Message)

	stored := f.users.users["ada@example.com"]
	assert.NotEqual(t, "abc123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("abc123")))
}

func TestCreateUser_PasswordMismatch_NoStoreCalls(t *testing.T) {
	f := newFixture()
	form := validSignupForm()
	form.Password = "abc123"
	form.ConfirmPassword = "xyz789"

	state := f.actions.CreateUser(context.Background(), nil, form)

	require.False(t, state.Success)
	assert.NotEmpty(t, state.Errors["confirmPassword"])
	assert.Zero(t, f.users.existsCalls)
	assert.Zero(t, f.users.createCalls)
}

func TestCreateUser_DuplicateEmail_OneReadZeroInserts(t *testing.T) {
	f := newFixture()
	f.users.users["ada@example.com"] = domain.User{Email: "ada@example.com"}

	state := f.actions.CreateUser(context.Background(), nil, validSignupForm())

	require.False(t, state.Success)
	assert.Equal(t, []string{"Email address already exists."}, state.Errors["email"])
	assert.Equal(t, 1, f.users.existsCalls)
	assert.Zero(t, f.users.createCalls)
}

func TestCreateUser_StoreFailure(t *testing.T) {
	f := newFixture()
	f.users.createErr = errors.New("connection refused")

	state := f.actions.CreateUser(context.Background(), nil, validSignupForm())

	require.False(t, state.Success)
	assert.Equal(t, "Database error: Failed to create account.", state.Message)
	require.NotNil(t, state.Errors)
	assert.Empty(t, state.Errors)
}

func TestAuthenticate_Success(t *testing.T) {
	f := newFixture()
	f.auth.token = "signed-token"

	state, token := f.actions.Authenticate(context.Background(), nil, domain.Credentials{
		Email: "ada@example.com", Password: "abc123",
	})

	require.True(t, state.Success)
	assert.Equal(t, "signed-token", token)
	require.NotNil(t, state.Errors)
	assert.Empty(t, state.Errors)
}

func TestAuthenticate_FailureClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		msg  string
	}{
		{"bad credentials", ErrInvalidCredentials, "Invalid credentials."},
		{"wrapped bad credentials", errors.Join(ErrInvalidCredentials), "Invalid credentials."},
		{"classified failure", ErrAuthFailed, "Something went wrong."},
		{"unexpected failure", errors.New("jwt signing broke"), "An unexpected error occurred. Please try again."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.auth.err = tc.err

			state, token := f.actions.Authenticate(context.Background(), nil, domain.Credentials{})

			require.False(t, state.Success)
			assert.Equal(t, tc.msg, state.Message)
			assert.Empty(t, token)
			require.NotNil(t, state.Errors)
			assert.Empty(t, state.Errors)
		})
	}
}
