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
	registerName = iota
	registerEmail
	registerPassword
	registerConfirm
)

// RegisterModel is the sign-up screen.
type RegisterModel struct {
	sessions   Sessions
	form       form
	keys       KeyMap
	err        error
	submitting bool
}

// NewRegisterModel creates the sign-up screen.
func NewRegisterModel(sessions Sessions) RegisterModel {
	f := newForm("")
	f.addText("Name", "", false)
	f.addText("Email", "", false)
	f.addText("Password", "", true)
	f.addText("Confirm", "", true)
	return RegisterModel{sessions: sessions, form: f, keys: DefaultKeyMap()}
}

// Update handles input for the sign-up screen.
func (m RegisterModel) Update(msg tea.Msg) (RegisterModel, tea.Cmd) {
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
		case key.Matches(msg, m.keys.Cancel):
			return m, navigate(screen.LoginRoute)
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

// submit validates locally first. Invalid input never reaches the server.
func (m RegisterModel) submit() (RegisterModel, tea.Cmd) {
	input := screen.RegistrationForm{
		Name:            strings.TrimSpace(m.form.value(registerName)),
		Email:           strings.TrimSpace(m.form.value(registerEmail)),
		Password:        m.form.value(registerPassword),
		ConfirmPassword: m.form.value(registerConfirm),
	}
	if err := screen.ValidateRegistration(input); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.submitting = true
	sessions := m.sessions
	return m, func() tea.Msg {
		s, err := sessions.Register(context.Background(), api.Registration{
			Name:     input.Name,
			Email:    input.Email,
			Password: input.Password,
		})
		return authResultMsg{Session: s, Err: err}
	}
}

// Submitting reports whether a register request is in flight.
func (m RegisterModel) Submitting() bool {
	return m.submitting
}

// Error returns the last validation or registration error.
func (m RegisterModel) Error() error {
	return m.err
}

// View renders the sign-up screen.
func (m RegisterModel) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("ProjectHub"))
	s.WriteString("  ")
	s.WriteString(subtitleStyle.Render("Create an account"))
	s.WriteString("\n\n")
	s.WriteString(panelStyle.Render(m.form.view()))
	s.WriteString("\n")
	if m.submitting {
		s.WriteString(helpStyle.Render("Creating account..."))
		s.WriteString("\n")
	}
	if m.err != nil {
		s.WriteString(errorMessageStyle.Render(m.err.Error()))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("tab: next field | enter: create account | esc: back to sign in | ctrl+c: quit"))
	return s.String()
}
