package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/screen"
	"github.com/gerunddev/projecthub/internal/screen/screentest"
	"github.com/gerunddev/projecthub/internal/session"
)

func newTestModel(t *testing.T, s session.Session, route screen.Route) (Model, *fakeSessions, *screentest.Resources) {
	t.Helper()
	sessions := newFakeSessions(s)
	res := screentest.New()
	res.AddProject(api.Project{ID: "p1", Name: "Alpha", Status: api.ProjectActive, UserRole: api.RoleOwner, CreatedBy: "u1"})
	return New(sessions, res, route), sessions, res
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func TestNew_WaitsForSession(t *testing.T) {
	m, _, _ := newTestModel(t, session.Session{Loading: true}, screen.ProjectRoute("p1"))
	if m.State() != ViewWaiting {
		t.Errorf("state = %v, want waiting", m.State())
	}
	if m.Init() == nil {
		t.Error("expected Init to return a command")
	}
	if !strings.Contains(m.View(), "Checking session") {
		t.Errorf("view = %q", m.View())
	}
}

func TestModel_NoRedirectWhileLoading(t *testing.T) {
	m, _, _ := newTestModel(t, session.Session{Loading: true}, screen.DashboardRoute)
	for _, r := range []screen.Route{screen.LoginRoute, screen.DashboardRoute, screen.ProjectRoute("p1")} {
		m, _ = update(t, m, NavigateMsg{Route: r})
		if m.State() != ViewWaiting {
			t.Errorf("navigate(%s) state = %v, want waiting", r, m.State())
		}
	}
}

func TestModel_SignedOutRedirectsToLogin(t *testing.T) {
	for _, r := range []screen.Route{screen.DashboardRoute, screen.ProjectRoute("p1"), screen.ParseRoute("/whatever")} {
		m, _, _ := newTestModel(t, session.Session{Loading: true}, r)
		m, _ = update(t, m, SessionChangedMsg{Session: session.Session{}})
		if m.State() != ViewLogin || m.Route() != screen.LoginRoute {
			t.Errorf("route %s: state = %v route = %s, want login", r, m.State(), m.Route())
		}
	}
}

func TestModel_SignedInSkipsLogin(t *testing.T) {
	m, _, _ := newTestModel(t, session.Session{Loading: true}, screen.LoginRoute)
	m, cmd := update(t, m, SessionChangedMsg{Session: signedIn()})
	if m.State() != ViewDashboard {
		t.Fatalf("state = %v, want dashboard", m.State())
	}
	msgs := runCmd(t, cmd)
	if _, ok := findMsg[DashboardLoadedMsg](msgs); !ok {
		t.Errorf("expected a dashboard load, got %T", msgs)
	}
}

func TestModel_OpenProjectFromDashboard(t *testing.T) {
	m, _, _ := newTestModel(t, signedIn(), screen.DashboardRoute)
	m, cmd := update(t, m, SessionChangedMsg{Session: signedIn()})
	for _, msg := range runCmd(t, cmd) {
		m, _ = update(t, m, msg)
	}

	m, cmd = update(t, m, keyEnter)
	nav, ok := findMsg[NavigateMsg](runCmd(t, cmd))
	if !ok || nav.Route != screen.ProjectRoute("p1") {
		t.Fatalf("expected navigation to p1, got %+v", nav)
	}
	m, cmd = update(t, m, nav)
	if m.State() != ViewProject {
		t.Fatalf("state = %v, want project", m.State())
	}
	for _, msg := range runCmd(t, cmd) {
		m, _ = update(t, m, msg)
	}
	if !strings.Contains(m.View(), "Alpha") {
		t.Errorf("view missing project name:\n%s", m.View())
	}
}

func TestModel_SameRouteDoesNotRemount(t *testing.T) {
	m, sessions, _ := newTestModel(t, signedIn(), screen.DashboardRoute)
	m, _ = update(t, m, SessionChangedMsg{Session: signedIn()})
	_, cmd := update(t, m, sessionNotifiedMsg{Session: signedIn()})

	// Queue a notification so the re-armed subscription returns at once.
	sessions.updates <- signedIn()
	msgs := runCmd(t, cmd)
	if _, ok := findMsg[DashboardLoadedMsg](msgs); ok {
		t.Error("a repeated session notification remounted the dashboard")
	}
	if _, ok := findMsg[sessionNotifiedMsg](msgs); !ok {
		t.Error("subscription was not re-armed")
	}
}

func TestModel_AuthExpiredSignsOut(t *testing.T) {
	m, sessions, _ := newTestModel(t, signedIn(), screen.ProjectRoute("p1"))
	m, _ = update(t, m, SessionChangedMsg{Session: signedIn()})
	if m.State() != ViewProject {
		t.Fatalf("state = %v, want project", m.State())
	}

	m, _ = update(t, m, AuthExpiredMsg{Err: api.ErrUnauthorized})
	if sessions.logoutCalls != 1 {
		t.Errorf("logout calls = %d, want 1", sessions.logoutCalls)
	}
	if m.State() != ViewLogin {
		t.Errorf("state = %v, want login", m.State())
	}
}

func TestModel_LogoutFromDashboard(t *testing.T) {
	m, sessions, _ := newTestModel(t, signedIn(), screen.DashboardRoute)
	m, _ = update(t, m, SessionChangedMsg{Session: signedIn()})

	m, cmd := update(t, m, keyRunes("L"))
	msgs := runCmd(t, cmd)
	if _, ok := findMsg[LogoutMsg](msgs); !ok {
		t.Fatalf("expected LogoutMsg, got %v", msgs)
	}
	m, _ = update(t, m, LogoutMsg{})
	if sessions.logoutCalls != 1 || m.State() != ViewLogin {
		t.Errorf("logout calls = %d state = %v", sessions.logoutCalls, m.State())
	}
}

func TestModel_AuthSucceededGoesToDashboard(t *testing.T) {
	m, _, _ := newTestModel(t, session.Session{}, screen.LoginRoute)
	m, _ = update(t, m, SessionChangedMsg{Session: session.Session{}})
	if m.State() != ViewLogin {
		t.Fatalf("state = %v, want login", m.State())
	}
	m, _ = update(t, m, AuthSucceededMsg{Session: signedIn()})
	if m.State() != ViewDashboard {
		t.Errorf("state = %v, want dashboard", m.State())
	}
}

func TestModel_QuitKey(t *testing.T) {
	m, _, _ := newTestModel(t, signedIn(), screen.DashboardRoute)
	m, _ = update(t, m, SessionChangedMsg{Session: signedIn()})
	_, cmd := update(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_QuitKeyTypesInForms(t *testing.T) {
	m, _, _ := newTestModel(t, session.Session{}, screen.LoginRoute)
	m, _ = update(t, m, SessionChangedMsg{Session: session.Session{}})
	m, _ = update(t, m, keyRunes("q"))
	if got := m.login.form.value(loginEmail); got != "q" {
		t.Errorf("email = %q, want the typed key", got)
	}
}

func TestModel_CtrlCAlwaysQuits(t *testing.T) {
	m, _, _ := newTestModel(t, session.Session{}, screen.LoginRoute)
	m, _ = update(t, m, SessionChangedMsg{Session: session.Session{}})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
