package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/acmecorp/invoicedesk/internal/session"
)

// GateMiddleware enforces the path authorization decision on every request:
// unauthenticated callers are bounced off the dashboard to the login page,
// authenticated callers are bounced off the public auth pages to the
// dashboard.
func GateMiddleware(gate *session.Gate, sessions *session.Manager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := sessions.FromRequest(r)
			authenticated := err == nil

			switch gate.Decide(r.URL.Path, authenticated) {
			case session.RedirectLogin:
				http.Redirect(w, r, gate.LoginPath(), http.StatusSeeOther)
			case session.RedirectDashboard:
				http.Redirect(w, r, gate.DashboardPrefix(), http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
