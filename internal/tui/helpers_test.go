package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/session"
)

// fakeSessions is a scripted session provider.
type fakeSessions struct {
	current       session.Session
	updates       chan session.Session
	loginErr      error
	loginCalls    int
	registerCalls int
	logoutCalls   int
}

func newFakeSessions(s session.Session) *fakeSessions {
	return &fakeSessions{current: s, updates: make(chan session.Session, 1)}
}

func signedIn() session.Session {
	return session.Session{IsAuthenticated: true, User: &api.User{ID: "u1", Name: "Alice Smith"}}
}

func (f *fakeSessions) Current() session.Session                { return f.current }
func (f *fakeSessions) Subscribe() <-chan session.Session       { return f.updates }
func (f *fakeSessions) Resolve(context.Context) session.Session { return f.current }

func (f *fakeSessions) Login(ctx context.Context, creds api.Credentials) (session.Session, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return session.Session{}, f.loginErr
	}
	f.current = signedIn()
	return f.current, nil
}

func (f *fakeSessions) Register(ctx context.Context, reg api.Registration) (session.Session, error) {
	f.registerCalls++
	if reg.Email == "taken@b.com" {
		return session.Session{}, errors.New("email already registered")
	}
	f.current = session.Session{IsAuthenticated: true, User: &api.User{ID: "u2", Name: reg.Name, Email: reg.Email}}
	return f.current, nil
}

func (f *fakeSessions) Logout() {
	f.logoutCalls++
	f.current = session.Session{}
}

// runCmd executes cmd and flattens batches into the resulting messages.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(t, c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// findMsg returns the first message of type T.
func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if m, ok := msg.(T); ok {
			return m, true
		}
	}
	var zero T
	return zero, false
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)
