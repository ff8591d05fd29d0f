// Package validate checks raw form submissions and produces either a typed
// value or a field-keyed map of violation messages, never both. Every rule
// is checked independently so the UI can highlight all invalid fields at
// once.
package validate

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/acmecorp/invoicedesk/internal/domain"
)

const (
	msgSelectCustomer = "Please select a customer."
	msgAmountPositive = "Please enter an amount greater than $0."
	msgSelectStatus   = "Please select an invoice status."

	msgNameRequired     = "Name is required"
	msgEmailInvalid     = "Invalid email address"
	msgPasswordTooShort = "Password must be at least 6 characters"
	msgPasswordMismatch = "Passwords don't match"
)

// MinPasswordLength applies to both signup and login submissions.
const MinPasswordLength = 6

// InvoiceInput is a validated, normalized invoice submission. Amount is the
// decimal currency value as entered; conversion to integer cents is the
// action layer's job.
type InvoiceInput struct {
	CustomerID string
	Amount     decimal.Decimal
	Status     domain.InvoiceStatus
}

// SignupInput is a validated signup submission.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// FieldErrors maps a form field name to its ordered violation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Invoice validates a raw invoice form. On failure the returned FieldErrors
// is non-nil and contains every violation; on success it is nil.
func Invoice(raw domain.InvoiceForm) (InvoiceInput, FieldErrors) {
	errs := FieldErrors{}
	var in InvoiceInput

	if strings.TrimSpace(raw.CustomerID) == "" {
		errs.add("customerId", msgSelectCustomer)
	} else {
		in.CustomerID = strings.TrimSpace(raw.CustomerID)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(raw.Amount))
	if err != nil || !amount.IsPositive() {
		errs.add("amount", msgAmountPositive)
	} else {
		in.Amount = amount
	}

	status := domain.InvoiceStatus(raw.Status)
	if !status.Valid() {
		errs.add("status", msgSelectStatus)
	} else {
		in.Status = status
	}

	if len(errs) > 0 {
		return InvoiceInput{}, errs
	}
	return in, nil
}

// Signup validates a raw signup form. A confirmation mismatch is attached
// to the confirmPassword field, not password.
func Signup(raw domain.SignupForm) (SignupInput, FieldErrors) {
	errs := FieldErrors{}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		errs.add("name", msgNameRequired)
	}

	email := strings.TrimSpace(raw.Email)
	if !ValidEmail(email) {
		errs.add("email", msgEmailInvalid)
	}

	if len(raw.Password) < MinPasswordLength {
		errs.add("password", msgPasswordTooShort)
	}
	if raw.ConfirmPassword != raw.Password {
		errs.add("confirmPassword", msgPasswordMismatch)
	}

	if len(errs) > 0 {
		return SignupInput{}, errs
	}
	return SignupInput{Name: name, Email: email, Password: raw.Password}, nil
}

// ValidEmail reports whether addr is a plain well-formed address. Display
// names ("A <a@b.c>") are rejected even though the parser accepts them.
func ValidEmail(addr string) bool {
	if addr == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}
