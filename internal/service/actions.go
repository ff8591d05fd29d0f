// Package service implements the form actions: each operation takes the
// previous UI state plus the raw submitted fields and returns the new state
// for the UI to render. State is rebuilt on every submission; nothing
// accumulates across calls.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/acmecorp/invoicedesk/internal/domain"
	"github.com/acmecorp/invoicedesk/internal/validate"
)

// InvoicesPath is the list view invalidated and navigated to after a
// successful create, update, or delete.
const InvoicesPath = "/dashboard/invoices"

const (
	msgCreateMissing = "Missing Fields. Failed to Create Invoice."
	msgUpdateMissing = "Missing Fields. Failed to Update Invoice."
	msgCreateDBError = "Database Error: Failed to Create Invoice."
	msgUpdateDBError = "Database Error: Failed to Update Invoice."

	msgEmailTaken    = "Email address already exists."
	msgSignupSuccess = "Account created successfully! Redirecting to login..."
	msgSignupDBError = "Database error: Failed to create account."

	msgBadCredentials = "Invalid credentials."
	msgAuthFailed     = "Something went wrong."
	msgAuthUnexpected = "An unexpected error occurred. Please try again."
)

// ErrDeleteInvoice is the single generic failure signal the delete action
// surfaces; the underlying cause is logged, not returned.
var ErrDeleteInvoice = errors.New("failed to delete invoice")

// InvoiceStore is the persistence surface the invoice actions need.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv domain.Invoice) error
	UpdateInvoice(ctx context.Context, inv domain.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
}

// UserStore is the persistence surface the signup action needs.
type UserStore interface {
	UserEmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user domain.User) error
}

// ViewInvalidator signals the rendering layer that cached views of a path
// are stale.
type ViewInvalidator interface {
	Invalidate(path string)
}

// Authenticator verifies credentials and mints a session token.
type Authenticator interface {
	SignIn(ctx context.Context, creds domain.Credentials) (string, error)
}

// Actions binds the form operations to their collaborators.
type Actions struct {
	invoices   InvoiceStore
	users      UserStore
	views      ViewInvalidator
	auth       Authenticator
	bcryptCost int
	log        zerolog.Logger
	now        func() time.Time
}

func NewActions(invoices InvoiceStore, users UserStore, views ViewInvalidator, auth Authenticator, bcryptCost int, log zerolog.Logger) *Actions {
	return &Actions{
		invoices:   invoices,
		users:      users,
		views:      views,
		auth:       auth,
		bcryptCost: bcryptCost,
		log:        log,
		now:        time.Now,
	}
}

// CreateInvoice validates the submission, stamps today's date, converts the
// amount to integer cents, and inserts the row. A nil return is the
// committed terminal state: the list view has been invalidated and the
// caller should redirect to InvoicesPath.
func (a *Actions) CreateInvoice(ctx context.Context, prev *domain.InvoiceState, raw domain.InvoiceForm) *domain.InvoiceState {
	in, fieldErrs := validate.Invoice(raw)
	if fieldErrs != nil {
		return &domain.InvoiceState{Errors: fieldErrs, Message: msgCreateMissing}
	}

	inv := domain.Invoice{
		ID:         uuid.NewString(),
		CustomerID: in.CustomerID,
		Amount:     amountToCents(in.Amount),
		Status:     in.Status,
		Date:       a.now().Format("2006-01-02"),
	}

	if err := a.invoices.CreateInvoice(ctx, inv); err != nil {
		a.log.Error().Err(err).Msg("create invoice failed")
		return &domain.InvoiceState{Message: msgCreateDBError, Errors: map[string][]string{}}
	}

	a.views.Invalidate(InvoicesPath)
	return nil
}

// UpdateInvoice rewrites an existing invoice with the same validation and
// error shape as create. A missing id collapses into the generic database
// message; the store does not report it separately.
func (a *Actions) UpdateInvoice(ctx context.Context, id string, prev *domain.InvoiceState, raw domain.InvoiceForm) *domain.InvoiceState {
	in, fieldErrs := validate.Invoice(raw)
	if fieldErrs != nil {
		return &domain.InvoiceState{Errors: fieldErrs, Message: msgUpdateMissing}
	}

	inv := domain.Invoice{
		ID:         id,
		CustomerID: in.CustomerID,
		Amount:     amountToCents(in.Amount),
		Status:     in.Status,
	}

	if err := a.invoices.UpdateInvoice(ctx, inv); err != nil {
		a.log.Error().Err(err).Str("invoice_id", id).Msg("update invoice failed")
		return &domain.InvoiceState{Message: msgUpdateDBError, Errors: map[string][]string{}}
	}

	a.views.Invalidate(InvoicesPath)
	return nil
}

// DeleteInvoice removes an invoice. The id is trusted positional input; no
// validation runs. Failure surfaces as one generic signal rather than a
// structured form state, asymmetric with create and update.
func (a *Actions) DeleteInvoice(ctx context.Context, id string) error {
	if err := a.invoices.DeleteInvoice(ctx, id); err != nil {
		a.log.Error().Err(err).Str("invoice_id", id).Msg("delete invoice failed")
		return ErrDeleteInvoice
	}
	a.views.Invalidate(InvoicesPath)
	return nil
}

// CreateUser validates the signup form, hashes the password, then performs
// the check-then-insert for email uniqueness. The hash is computed before
// the existence check and discarded if the email is taken; the ordering is
// deliberate and preserved.
func (a *Actions) CreateUser(ctx context.Context, prev *domain.UserState, raw domain.SignupForm) *domain.UserState {
	in, fieldErrs := validate.Signup(raw)
	if fieldErrs != nil {
		return &domain.UserState{Success: false, Errors: fieldErrs}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.bcryptCost)
	if err != nil {
		a.log.Error().Err(err).Msg("password hash failed")
		return &domain.UserState{Success: false, Message: msgSignupDBError, Errors: map[string][]string{}}
	}

	exists, err := a.users.UserEmailExists(ctx, in.Email)
	if err != nil {
		a.log.Error().Err(err).Msg("email existence check failed")
		return &domain.UserState{Success: false, Message: msgSignupDBError, Errors: map[string][]string{}}
	}
	if exists {
		return &domain.UserState{
			Success: false,
			Errors:  map[string][]string{"email": {msgEmailTaken}},
		}
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		a.log.Error().Err(err).Msg("create user failed")
		return &domain.UserState{Success: false, Message: msgSignupDBError, Errors: map[string][]string{}}
	}

	return &domain.UserState{Success: true, Message: msgSignupSuccess}
}

// Authenticate delegates credential verification to the Authenticator and
// translates its outcomes: bad credentials and other classified failures
// get distinct messages, anything unclassified gets the catch-all. The
// failure branches never say which field was wrong.
func (a *Actions) Authenticate(ctx context.Context, prev *domain.AuthState, creds domain.Credentials) (*domain.AuthState, string) {
	token, err := a.auth.SignIn(ctx, creds)
	if err == nil {
		return &domain.AuthState{Success: true, Errors: map[string][]string{}}, token
	}

	state := &domain.AuthState{Success: false, Errors: map[string][]string{}}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		state.Message = msgBadCredentials
	case errors.Is(err, ErrAuthFailed):
		state.Message = msgAuthFailed
	default:
		a.log.Error().Err(err).Msg("authentication failed unexpectedly")
		state.Message = msgAuthUnexpected
	}
	return state, ""
}

// amountToCents converts a validated decimal currency amount to integer
// minor units, rounding half away from zero.
func amountToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
