package session

import "strings"

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectDashboard
)

// GateConfig names the protected prefix and the public auth pages. It is
// constructed explicitly at startup and handed to the routing layer; there
// is no ambient process-wide auth state.
type GateConfig struct {
	DashboardPrefix string
	LoginPath       string
	SignupPath      string
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		DashboardPrefix: "/dashboard",
		LoginPath:       "/login",
		SignupPath:      "/signup",
	}
}

// Gate decides whether a caller may reach a path. Paths under the dashboard
// prefix require a session; the public auth pages bounce an already
// authenticated caller toward the dashboard; everything else is public.
type Gate struct {
	cfg GateConfig
}

func NewGate(cfg GateConfig) *Gate {
	return &Gate{cfg: cfg}
}

func (g *Gate) Decide(path string, authenticated bool) Decision {
	onDashboard := strings.HasPrefix(path, g.cfg.DashboardPrefix)
	if onDashboard && !authenticated {
		return RedirectLogin
	}
	if (path == g.cfg.LoginPath || path == g.cfg.SignupPath) && authenticated {
		return RedirectDashboard
	}
	return Allow
}

func (g *Gate) LoginPath() string       { return g.cfg.LoginPath }
func (g *Gate) DashboardPrefix() string { return g.cfg.DashboardPrefix }
