package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/projecthub/internal/screen"
	"github.com/gerunddev/projecthub/internal/session"
)

// NavigateMsg asks the router to show a route. The session gate decides
// what is actually shown.
type NavigateMsg struct {
	Route screen.Route
}

// SessionChangedMsg carries a new session from the provider.
type SessionChangedMsg struct {
	Session session.Session
}

// AuthSucceededMsg is sent after a successful login or registration.
type AuthSucceededMsg struct {
	Session session.Session
}

// AuthExpiredMsg is sent when the server rejects the session mid-use.
type AuthExpiredMsg struct {
	Err error
}

// LogoutMsg is sent when the viewer asks to sign out.
type LogoutMsg struct{}

// DashboardLoadedMsg is sent when a dashboard load completes.
type DashboardLoadedMsg struct {
	Mount  uint64
	Result screen.DashboardResult
}

// ProjectLoadedMsg is sent when a project detail load completes.
type ProjectLoadedMsg struct {
	Mount  uint64
	Result screen.DetailResult
}

// MutationDoneMsg is sent when a create, update or delete completes.
type MutationDoneMsg struct {
	Mount  uint64
	Result screen.MutationResult
}

// authResultMsg is the outcome of a login or register request.
type authResultMsg struct {
	Session session.Session
	Err     error
}

func navigate(r screen.Route) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: r}
	}
}
