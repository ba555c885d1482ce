package screen

import "github.com/gerunddev/projecthub/internal/session"

// Action is the outcome of a gate decision.
type Action int

const (
	// Allow renders the requested screen.
	Allow Action = iota
	// Wait renders a neutral loading indicator; the session is unresolved.
	Wait
	// Redirect navigates to Decision.Target instead.
	Redirect
)

// Decision is the session gate's answer for one navigation.
type Decision struct {
	Action Action
	Target Route
}

// Decide gates a navigation on the session. It never redirects while the
// session is loading, so the login screen does not flash before resolution.
func Decide(s session.Session, r Route) Decision {
	if s.Loading {
		return Decision{Action: Wait}
	}

	switch r.Visibility() {
	case Protected:
		if !s.IsAuthenticated {
			return Decision{Action: Redirect, Target: LoginRoute}
		}
	case PublicOnly:
		if s.IsAuthenticated {
			return Decision{Action: Redirect, Target: DashboardRoute}
		}
	}
	return Decision{Action: Allow, Target: r}
}
