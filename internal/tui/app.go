package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/log"
	"github.com/gerunddev/projecthub/internal/screen"
	"github.com/gerunddev/projecthub/internal/session"
)

// Sessions is the session provider as seen by the TUI. *session.Provider
// implements it.
type Sessions interface {
	Current() session.Session
	Subscribe() <-chan session.Session
	Resolve(ctx context.Context) session.Session
	Login(ctx context.Context, creds api.Credentials) (session.Session, error)
	Register(ctx context.Context, reg api.Registration) (session.Session, error)
	Logout()
}

var _ Sessions = (*session.Provider)(nil)

// ViewState represents which view is currently active.
type ViewState int

const (
	// ViewWaiting shows a spinner until the session resolves.
	ViewWaiting ViewState = iota
	ViewLogin
	ViewRegister
	ViewDashboard
	ViewProject
)

// Model is the main Bubble Tea model. It routes between screens and applies
// the session gate on every navigation and every session change.
type Model struct {
	sessions Sessions
	res      screen.Resources
	updates  <-chan session.Session

	session session.Session
	route   screen.Route // requested route
	state   ViewState
	mounted screen.Route // route of the mounted screen
	mounts  uint64

	login     LoginModel
	register  RegisterModel
	dashboard DashboardModel
	detail    DetailModel

	spinner spinner.Model
	keys    KeyMap
	width   int
	height  int
}

// New creates the root model. The first navigation goes to route once the
// session resolves.
func New(sessions Sessions, res screen.Resources, route screen.Route) Model {
	return Model{
		sessions: sessions,
		res:      res,
		updates:  sessions.Subscribe(),
		session:  sessions.Current(),
		route:    route,
		state:    ViewWaiting,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		keys:     DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	sessions := m.sessions
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return SessionChangedMsg{Session: sessions.Resolve(context.Background())}
		},
		waitForSession(m.updates),
	)
}

// waitForSession delivers the next session change from the provider.
func waitForSession(updates <-chan session.Session) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return sessionNotifiedMsg{Session: s}
	}
}

// sessionNotifiedMsg is a SessionChangedMsg that came from the subscription
// and must re-arm it.
type sessionNotifiedMsg struct {
	Session session.Session
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.forward(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Quit) && !m.capturing() {
			return m, tea.Quit
		}
		return m.forward(msg)

	case spinner.TickMsg:
		if m.state != ViewWaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SessionChangedMsg:
		m.session = msg.Session
		return m.navigate(m.route)

	case sessionNotifiedMsg:
		m.session = msg.Session
		next, cmd := m.navigate(m.route)
		return next, tea.Batch(cmd, waitForSession(m.updates))

	case AuthSucceededMsg:
		m.session = msg.Session
		return m.navigate(screen.DashboardRoute)

	case AuthExpiredMsg:
		log.Warn("Session rejected by server, signing out", "error", msg.Err)
		return m.logout()

	case LogoutMsg:
		return m.logout()

	case NavigateMsg:
		return m.navigate(msg.Route)
	}

	return m.forward(msg)
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	m.sessions.Logout()
	m.session = m.sessions.Current()
	return m.navigate(m.route)
}

// navigate records the requested route and mounts whatever the gate allows.
// While the session is loading nothing is mounted and nothing redirects.
func (m Model) navigate(r screen.Route) (tea.Model, tea.Cmd) {
	m.route = r
	d := screen.Decide(m.session, r)
	switch d.Action {
	case screen.Wait:
		if m.state == ViewWaiting {
			return m, nil
		}
		m.state = ViewWaiting
		return m, m.spinner.Tick
	case screen.Redirect:
		log.Debug("Redirecting", "from", r, "to", d.Target)
		return m.navigate(d.Target)
	}

	if m.state != ViewWaiting && m.mounted == r {
		return m, nil
	}
	return m.mount(r)
}

// mount builds a fresh screen for r. Screen state never survives navigation.
func (m Model) mount(r screen.Route) (tea.Model, tea.Cmd) {
	m.mounts++
	m.mounted = r
	size := func() tea.Msg {
		return tea.WindowSizeMsg{Width: m.width, Height: m.height}
	}

	var cmd tea.Cmd
	switch r.Name {
	case screen.RouteLogin:
		m.state = ViewLogin
		m.login = NewLoginModel(m.sessions)
	case screen.RouteRegister:
		m.state = ViewRegister
		m.register = NewRegisterModel(m.sessions)
	case screen.RouteProject:
		m.state = ViewProject
		m.detail = NewDetailModel(m.res, r.ProjectID, m.mounts)
		cmd = m.detail.Load()
	default:
		m.state = ViewDashboard
		m.dashboard = NewDashboardModel(m.res, m.mounts)
		cmd = m.dashboard.Load()
	}
	return m, tea.Batch(cmd, size)
}

// forward hands msg to the active screen.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case ViewLogin:
		m.login, cmd = m.login.Update(msg)
	case ViewRegister:
		m.register, cmd = m.register.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewProject:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

// capturing reports whether the active screen wants every key, so "q"
// types a letter instead of quitting.
func (m Model) capturing() bool {
	switch m.state {
	case ViewLogin, ViewRegister:
		return true
	case ViewDashboard:
		return m.dashboard.Capturing()
	case ViewProject:
		return m.detail.Capturing()
	}
	return false
}

// State returns the active view.
func (m Model) State() ViewState {
	return m.state
}

// Route returns the route of the mounted screen.
func (m Model) Route() screen.Route {
	return m.mounted
}

// Target returns the route the router is trying to show.
func (m Model) Target() screen.Route {
	return m.route
}

// Session returns the session the router last saw.
func (m Model) Session() session.Session {
	return m.session
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.state {
	case ViewWaiting:
		return m.spinner.View() + " " + helpStyle.Render("Checking session...") + "\n"
	case ViewLogin:
		return m.login.View()
	case ViewRegister:
		return m.register.View()
	case ViewDashboard:
		return m.dashboard.View()
	case ViewProject:
		return m.detail.View()
	default:
		return "Unknown state\n"
	}
}
