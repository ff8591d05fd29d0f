package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acmecorp/invoicedesk/internal/domain"
)

// ErrNotFound is returned when a row the caller asked for does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	Db *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{Db: pool}
}

func Open(ctx context.Context, connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{Db: pool}, nil
}

func (s *Store) Close() {
	s.Db.Close()
}

// CreateInvoice inserts a fully validated invoice row.
func (s *Store) CreateInvoice(ctx context.Context, inv domain.Invoice) error {
	_, err := s.Db.Exec(ctx,
		"INSERT INTO invoices (id, customer_id, amount, status, date) VALUES ($1, $2, $3, $4, $5)",
		inv.ID, inv.CustomerID, inv.Amount, inv.Status, inv.Date)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetInvoice retrieves a single invoice by ID.
func (s *Store) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := s.Db.QueryRow(ctx,
		"SELECT id, customer_id, amount, status, date::text FROM invoices WHERE id = $1",
		id).Scan(&inv.ID, &inv.CustomerID, &inv.Amount, &inv.Status, &inv.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select invoice: %w", err)
	}
	return &inv, nil
}

// UpdateInvoice rewrites the mutable fields of an existing invoice. A
// missing row is not distinguished from any other store failure; callers
// collapse both to one generic message.
func (s *Store) UpdateInvoice(ctx context.Context, inv domain.Invoice) error {
	_, err := s.Db.Exec(ctx,
		"UPDATE invoices SET customer_id = $1, amount = $2, status = $3 WHERE id = $4",
		inv.CustomerID, inv.Amount, inv.Status, inv.ID)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// DeleteInvoice removes an invoice by ID.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	_, err := s.Db.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

const invoiceFilter = `
	customers.name ILIKE $1 OR
	customers.email ILIKE $1 OR
	invoices.amount::text ILIKE $1 OR
	invoices.date::text ILIKE $1 OR
	invoices.status ILIKE $1`

// ListInvoices returns one page of invoices joined with their customer,
// newest first, filtered by a free-text query across every visible column.
func (s *Store) ListInvoices(ctx context.Context, query string, page, pageSize int) ([]domain.InvoiceRow, error) {
	offset := (page - 1) * pageSize
	rows, err := s.Db.Query(ctx, `
		SELECT invoices.id, invoices.customer_id, customers.name, customers.email,
		       invoices.amount, invoices.status, invoices.date::text
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE `+invoiceFilter+`
		ORDER BY invoices.date DESC
		LIMIT $2 OFFSET $3`,
		"%"+query+"%", pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []domain.InvoiceRow{}
	for rows.Next() {
		var row domain.InvoiceRow
		if err := rows.Scan(&row.ID, &row.CustomerID, &row.CustomerName, &row.CustomerEmail,
			&row.Amount, &row.Status, &row.Date); err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		invoices = append(invoices, row)
	}
	return invoices, rows.Err()
}

// CountInvoicePages computes the page count for a query. An empty result
// set still has one (empty) page so the landing view always resolves.
func (s *Store) CountInvoicePages(ctx context.Context, query string, pageSize int) (int, error) {
	var count int
	err := s.Db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE `+invoiceFilter,
		"%"+query+"%").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages, nil
}

// ListCustomers returns every customer ordered by name, for the invoice
// form's select box.
func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.Db.Query(ctx, "SELECT id, name, email FROM customers ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// GetCustomer retrieves a single customer by ID.
func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := s.Db.QueryRow(ctx,
		"SELECT id, name, email FROM customers WHERE id = $1", id).Scan(&c.ID, &c.Name, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select customer: %w", err)
	}
	return &c, nil
}

// GetUserByEmail retrieves a user for credential verification.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.Db.QueryRow(ctx,
		"SELECT id, name, email, password, created_at FROM users WHERE email = $1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// UserEmailExists is the pre-insert uniqueness probe. The check and the
// insert are not one transaction; the unique constraint on users.email is
// the backstop for the race window.
func (s *Store) UserEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.Db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return exists, nil
}

// CreateUser inserts a new account row.
func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	_, err := s.Db.Exec(ctx,
		"INSERT INTO users (id, name, email, password) VALUES ($1, $2, $3, $4)",
		user.ID, user.Name, user.Email, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// CountInvoices returns the total number of invoices.
func (s *Store) CountInvoices(ctx context.Context) (int64, error) {
	var count int64
	if err := s.Db.QueryRow(ctx, "SELECT COUNT(*) FROM invoices").Scan(&count); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return count, nil
}

// CountCustomers returns the total number of customers.
func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.Db.QueryRow(ctx, "SELECT COUNT(*) FROM customers").Scan(&count); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return count, nil
}

// InvoiceTotals returns the paid and pending sums in cents.
func (s *Store) InvoiceTotals(ctx context.Context) (paid, pending int64, err error) {
	err = s.Db.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0)
		FROM invoices`).Scan(&paid, &pending)
	if err != nil {
		return 0, 0, fmt.Errorf("invoice totals: %w", err)
	}
	return paid, pending, nil
}
