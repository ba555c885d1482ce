package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/screen"
)

const (
	loginEmail = iota
	loginPassword
)

var registerKey = key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "create account"))

// LoginModel is the sign-in screen.
type LoginModel struct {
	sessions   Sessions
	form       form
	keys       KeyMap
	err        error
	submitting bool
}

// NewLoginModel creates the sign-in screen.
func NewLoginModel(sessions Sessions) LoginModel {
	f := newForm("")
	f.addText("Email", "", false)
	f.addText("Password", "", true)
	return LoginModel{sessions: sessions, form: f, keys: DefaultKeyMap()}
}

// Update handles input for the sign-in screen.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		s := msg.Session
		return m, func() tea.Msg { return AuthSucceededMsg{Session: s} }

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, registerKey):
			return m, navigate(screen.RegisterRoute)
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	input := screen.LoginForm{
		Email:    strings.TrimSpace(m.form.value(loginEmail)),
		Password: m.form.value(loginPassword),
	}
	if err := screen.ValidateLogin(input); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.submitting = true
	sessions := m.sessions
	return m, func() tea.Msg {
		s, err := sessions.Login(context.Background(), api.Credentials{Email: input.Email, Password: input.Password})
		return authResultMsg{Session: s, Err: err}
	}
}

// Submitting reports whether a login request is in flight.
func (m LoginModel) Submitting() bool {
	return m.submitting
}

// Error returns the last validation or login error.
func (m LoginModel) Error() error {
	return m.err
}

// View renders the sign-in screen.
func (m LoginModel) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("ProjectHub"))
	s.WriteString("  ")
	s.WriteString(subtitleStyle.Render("Sign in"))
	s.WriteString("\n\n")
	s.WriteString(panelStyle.Render(m.form.view()))
	s.WriteString("\n")
	if m.submitting {
		s.WriteString(helpStyle.Render("Signing in..."))
		s.WriteString("\n")
	}
	if m.err != nil {
		s.WriteString(errorMessageStyle.Render(m.err.Error()))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("tab: next field | enter: sign in | ctrl+r: create account | ctrl+c: quit"))
	return s.String()
}
