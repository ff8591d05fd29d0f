package domain

import "time"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "pending"
	StatusPaid    InvoiceStatus = "paid"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Invoice is a stored invoice. Amount is always integer cents; the
// decimal-to-cents conversion happens before persistence, never after.
type Invoice struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id"`
	Amount     int64         `json:"amount"`
	Status     InvoiceStatus `json:"status"`
	Date       string        `json:"date"`
}

// InvoiceRow is an invoice joined with its customer for list views.
type InvoiceRow struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	Amount        int64         `json:"amount"`
	Status        InvoiceStatus `json:"status"`
	Date          string        `json:"date"`
}

// Customer is the foreign target of an invoice.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// User is a registered account. PasswordHash is derived with bcrypt and
// never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials is a transient email/password pair consumed once by the
// authenticate operation.
type Credentials struct {
	Email    string
	Password string
}

// InvoiceForm holds the raw field values of an invoice submission.
type InvoiceForm struct {
	CustomerID string
	Amount     string
	Status     string
}

// SignupForm holds the raw field values of a signup submission.
type SignupForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// InvoiceState is the result an invoice action hands back for the UI to
// render. A nil *InvoiceState means the action committed and the caller
// should redirect.
type InvoiceState struct {
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}

// UserState is the signup action result.
type UserState struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// AuthState is the login action result. Errors is always present, empty on
// every failure branch, for shape uniformity with the other actions.
type AuthState struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors"`
}

// DashboardSummary is the card data on the dashboard landing page.
type DashboardSummary struct {
	InvoiceCount  int64 `json:"invoice_count"`
	CustomerCount int64 `json:"customer_count"`
	TotalPaid     int64 `json:"total_paid"`
	TotalPending  int64 `json:"total_pending"`
}

// InvoicePage is one page of the filtered invoice list.
type InvoicePage struct {
	Invoices   []InvoiceRow `json:"invoices"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
}
