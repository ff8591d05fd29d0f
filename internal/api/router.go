package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acmecorp/invoicedesk/internal/session"
)

// NewRouter wires every route behind the authorization gate. The gate
// configuration is constructed by the caller and passed in; nothing here
// reads ambient auth state.
func NewRouter(h *Handler, gate *session.Gate, sessions *session.Manager) *mux.Router {
	r := mux.NewRouter()
	r.Use(GateMiddleware(gate, sessions))

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")

	r.HandleFunc("/signup", h.SignupHandler).Methods("POST")
	r.HandleFunc("/login", h.LoginHandler).Methods("POST")
	r.HandleFunc("/logout", h.LogoutHandler).Methods("POST")

	r.HandleFunc("/dashboard", h.DashboardHandler).Methods("GET")
	r.HandleFunc("/dashboard/customers", h.ListCustomersHandler).Methods("GET")
	r.HandleFunc("/dashboard/invoices", h.ListInvoicesHandler).Methods("GET")
	r.HandleFunc("/dashboard/invoices", h.CreateInvoiceHandler).Methods("POST")
	r.HandleFunc("/dashboard/invoices/{id}", h.GetInvoiceHandler).Methods("GET")
	r.HandleFunc("/dashboard/invoices/{id}", h.UpdateInvoiceHandler).Methods("POST")
	r.HandleFunc("/dashboard/invoices/{id}/delete", h.DeleteInvoiceHandler).Methods("POST")
	r.HandleFunc("/dashboard/invoices/{id}/pdf", h.InvoicePDFHandler).Methods("GET")

	return r
}
