package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/acmecorp/invoicedesk/internal/domain"
	"github.com/acmecorp/invoicedesk/internal/service"
	"github.com/acmecorp/invoicedesk/internal/session"
	"github.com/acmecorp/invoicedesk/internal/store"
	"github.com/acmecorp/invoicedesk/internal/views"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicedesk_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoicedesk_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

// Reader is the query surface the page handlers need. *store.Store
// satisfies it.
type Reader interface {
	ListInvoices(ctx context.Context, query string, page, pageSize int) ([]domain.InvoiceRow, error)
	CountInvoicePages(ctx context.Context, query string, pageSize int) (int, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	CountInvoices(ctx context.Context) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
	InvoiceTotals(ctx context.Context) (paid, pending int64, err error)
}

type Handler struct {
	store      Reader
	actions    *service.Actions
	sessions   *session.Manager
	views      *views.Cache
	pageSize   int
	sessionTTL time.Duration
}

func NewHandler(s Reader, actions *service.Actions, sessions *session.Manager, vc *views.Cache, pageSize int, sessionTTL time.Duration) *Handler {
	return &Handler{
		store:      s,
		actions:    actions,
		sessions:   sessions,
		views:      vc,
		pageSize:   pageSize,
		sessionTTL: sessionTTL,
	}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListInvoicesHandler serves one filtered page of invoices. The page
// parameter defaults to 1 and is clamped upward; a page beyond the computed
// total is a not-found outcome, not an empty page.
func (h *Handler) ListInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("GET", service.InvoicesPath))
	defer timer.ObserveDuration()

	query := r.URL.Query().Get("query")
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 1 {
		page = p
	}

	totalPages, err := h.store.CountInvoicePages(r.Context(), query, h.pageSize)
	if err != nil {
		h.countReq("GET", service.InvoicesPath, 500)
		respondWithError(w, http.StatusInternalServerError, "Failed to load invoices")
		return
	}
	if page > totalPages {
		h.countReq("GET", service.InvoicesPath, 404)
		respondWithError(w, http.StatusNotFound, "Not Found")
		return
	}

	invoices, err := h.store.ListInvoices(r.Context(), query, page, h.pageSize)
	if err != nil {
		h.countReq("GET", service.InvoicesPath, 500)
		respondWithError(w, http.StatusInternalServerError, "Failed to load invoices")
		return
	}

	w.Header().Set("X-View-Version", strconv.FormatUint(h.views.Version(service.InvoicesPath), 10))
	h.countReq("GET", service.InvoicesPath, 200)
	respondWithJSON(w, http.StatusOK, domain.InvoicePage{
		Invoices:   invoices,
		Page:       page,
		TotalPages: totalPages,
	})
}

// CreateInvoiceHandler runs the create action. Commit is terminal: the
// response is a redirect to the list view, not a form state.
func (h *Handler) CreateInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", service.InvoicesPath))
	defer timer.ObserveDuration()

	if err := r.ParseForm(); err != nil {
		h.countReq("POST", service.InvoicesPath, 400)
		respondWithError(w, http.StatusBadRequest, "Malformed form body")
		return
	}
	form := domain.InvoiceForm{
		CustomerID: r.PostFormValue("customerId"),
		Amount:     r.PostFormValue("amount"),
		Status:     r.PostFormValue("status"),
	}

	state := h.actions.CreateInvoice(r.Context(), nil, form)
	if state == nil {
		h.countReq("POST", service.InvoicesPath, 303)
		http.Redirect(w, r, service.InvoicesPath, http.StatusSeeOther)
		return
	}
	h.respondFormState(w, "POST", service.InvoicesPath, state)
}

// GetInvoiceHandler serves the edit-page data: the invoice and the customer
// list, fetched concurrently. Either read failing fails the whole load.
func (h *Handler) GetInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var (
		invoice   *domain.Invoice
		customers []domain.Customer
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		invoice, err = h.store.GetInvoice(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = h.store.ListCustomers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.countReq("GET", "/dashboard/invoices/{id}", 404)
			respondWithError(w, http.StatusNotFound, "Not Found")
			return
		}
		h.countReq("GET", "/dashboard/invoices/{id}", 500)
		respondWithError(w, http.StatusInternalServerError, "Failed to load invoice")
		return
	}

	h.countReq("GET", "/dashboard/invoices/{id}", 200)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"invoice":   invoice,
		"customers": customers,
	})
}

// UpdateInvoiceHandler runs the update action against an existing row.
func (h *Handler) UpdateInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/dashboard/invoices/{id}"))
	defer timer.ObserveDuration()

	id := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		h.countReq("POST", "/dashboard/invoices/{id}", 400)
		respondWithError(w, http.StatusBadRequest, "Malformed form body")
		return
	}
	form := domain.InvoiceForm{
		CustomerID: r.PostFormValue("customerId"),
		Amount:     r.PostFormValue("amount"),
		Status:     r.PostFormValue("status"),
	}

	state := h.actions.UpdateInvoice(r.Context(), id, nil, form)
	if state == nil {
		h.countReq("POST", "/dashboard/invoices/{id}", 303)
		http.Redirect(w, r, service.InvoicesPath, http.StatusSeeOther)
		return
	}
	h.respondFormState(w, "POST", "/dashboard/invoices/{id}", state)
}

// DeleteInvoiceHandler runs the delete action. Success carries no body.
func (h *Handler) DeleteInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.actions.DeleteInvoice(r.Context(), id); err != nil {
		h.countReq("POST", "/dashboard/invoices/{id}/delete", 500)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete invoice")
		return
	}

	h.countReq("POST", "/dashboard/invoices/{id}/delete", 204)
	w.WriteHeader(http.StatusNoContent)
}

// ListCustomersHandler serves the id/name pairs for the invoice form.
func (h *Handler) ListCustomersHandler(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.ListCustomers(r.Context())
	if err != nil {
		h.countReq("GET", "/dashboard/customers", 500)
		respondWithError(w, http.StatusInternalServerError, "Failed to load customers")
		return
	}
	h.countReq("GET", "/dashboard/customers", 200)
	respondWithJSON(w, http.StatusOK, customers)
}

// DashboardHandler serves the summary cards. The three reads run
// concurrently; a partial failure fails the whole page.
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	var summary domain.DashboardSummary

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		summary.InvoiceCount, err = h.store.CountInvoices(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		summary.CustomerCount, err = h.store.CountCustomers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		summary.TotalPaid, summary.TotalPending, err = h.store.InvoiceTotals(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.countReq("GET", "/dashboard", 500)
		respondWithError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	h.countReq("GET", "/dashboard", 200)
	respondWithJSON(w, http.StatusOK, summary)
}

// SignupHandler runs the createUser action. Validation failures and the
// taken-email outcome share the 422 shape; message-only failures are 500.
func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/signup"))
	defer timer.ObserveDuration()

	if err := r.ParseForm(); err != nil {
		h.countReq("POST", "/signup", 400)
		respondWithError(w, http.StatusBadRequest, "Malformed form body")
		return
	}
	form := domain.SignupForm{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}

	state := h.actions.CreateUser(r.Context(), nil, form)
	switch {
	case state.Success:
		h.countReq("POST", "/signup", 201)
		respondWithJSON(w, http.StatusCreated, state)
	case len(state.Errors) > 0:
		h.countReq("POST", "/signup", 422)
		respondWithJSON(w, http.StatusUnprocessableEntity, state)
	default:
		h.countReq("POST", "/signup", 500)
		respondWithJSON(w, http.StatusInternalServerError, state)
	}
}

// LoginHandler runs the authenticate action. Success sets the session
// cookie and redirects into the dashboard; every failure is a 401 with the
// action's message and deliberately does not say which field was wrong.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/login"))
	defer timer.ObserveDuration()

	if err := r.ParseForm(); err != nil {
		h.countReq("POST", "/login", 400)
		respondWithError(w, http.StatusBadRequest, "Malformed form body")
		return
	}
	creds := domain.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	state, token := h.actions.Authenticate(r.Context(), nil, creds)
	if !state.Success {
		h.countReq("POST", "/login", 401)
		respondWithJSON(w, http.StatusUnauthorized, state)
		return
	}

	http.SetCookie(w, session.Cookie(token, h.sessionTTL))
	h.countReq("POST", "/login", 303)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// LogoutHandler clears the session cookie.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, session.ClearCookie())
	h.countReq("POST", "/logout", 303)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// respondFormState renders a failed invoice action: field errors mean the
// submission was rejected by validation, an empty error map plus a message
// means the store failed.
func (h *Handler) respondFormState(w http.ResponseWriter, method, endpoint string, state *domain.InvoiceState) {
	code := http.StatusUnprocessableEntity
	if len(state.Errors) == 0 {
		code = http.StatusInternalServerError
	}
	h.countReq(method, endpoint, code)
	respondWithJSON(w, code, state)
}

func (h *Handler) countReq(method, endpoint string, code int) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
