package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/projecthub/internal/screen"
	"github.com/gerunddev/projecthub/internal/session"
)

func fillRegister(m RegisterModel, name, email, password, confirm string) RegisterModel {
	m.form.setValue(registerName, name)
	m.form.setValue(registerEmail, email)
	m.form.setValue(registerPassword, password)
	m.form.setValue(registerConfirm, confirm)
	return m
}

func TestRegisterModel_ShortNameRejectedLocally(t *testing.T) {
	sessions := newFakeSessions(session.Session{})
	m := fillRegister(NewRegisterModel(sessions), "Al", "a@b.com", "secret1", "secret1")

	m, cmd := m.Update(keyEnter)
	if cmd != nil {
		t.Error("expected no command for invalid input")
	}
	var verr *screen.ValidationError
	if !errors.As(m.Error(), &verr) || verr.Field != "name" {
		t.Fatalf("err = %v, want name ValidationError", m.Error())
	}
	if !strings.Contains(m.View(), "name too short") {
		t.Errorf("view missing validation message:\n%s", m.View())
	}
	if sessions.registerCalls != 0 {
		t.Errorf("register calls = %d, want 0", sessions.registerCalls)
	}
}

func TestRegisterModel_ValidSubmitRegistersOnce(t *testing.T) {
	sessions := newFakeSessions(session.Session{})
	m := fillRegister(NewRegisterModel(sessions), "Alice Smith", "a@b.com", "secret1", "secret1")

	m, cmd := m.Update(keyEnter)
	if cmd == nil || !m.Submitting() {
		t.Fatal("expected a register command")
	}
	msgs := runCmd(t, cmd)
	if sessions.registerCalls != 1 {
		t.Fatalf("register calls = %d, want 1", sessions.registerCalls)
	}

	m, cmd = m.Update(msgs[0])
	if m.Submitting() || m.Error() != nil {
		t.Errorf("submitting = %v err = %v", m.Submitting(), m.Error())
	}
	done, ok := findMsg[AuthSucceededMsg](runCmd(t, cmd))
	if !ok || !done.Session.IsAuthenticated {
		t.Errorf("expected AuthSucceededMsg, got %+v", done)
	}
}

func TestRegisterModel_ServerRejectionStays(t *testing.T) {
	sessions := newFakeSessions(session.Session{})
	m := fillRegister(NewRegisterModel(sessions), "Alice Smith", "taken@b.com", "secret1", "secret1")

	m, cmd := m.Update(keyEnter)
	msgs := runCmd(t, cmd)
	m, cmd = m.Update(msgs[0])
	if cmd != nil {
		t.Error("expected no navigation after a failed registration")
	}
	if m.Error() == nil || !strings.Contains(m.View(), "already registered") {
		t.Errorf("err = %v", m.Error())
	}
}

func TestRegisterModel_TypingFillsFields(t *testing.T) {
	m := NewRegisterModel(newFakeSessions(session.Session{}))
	m, _ = m.Update(keyRunes("Alice"))
	m, _ = m.Update(keyTab)
	m, _ = m.Update(keyRunes("a@b.com"))

	if got := m.form.value(registerName); got != "Alice" {
		t.Errorf("name = %q", got)
	}
	if got := m.form.value(registerEmail); got != "a@b.com" {
		t.Errorf("email = %q", got)
	}
}

func TestRegisterModel_EscGoesToLogin(t *testing.T) {
	m := NewRegisterModel(newFakeSessions(session.Session{}))
	_, cmd := m.Update(keyEsc)
	nav, ok := findMsg[NavigateMsg](runCmd(t, cmd))
	if !ok || nav.Route != screen.LoginRoute {
		t.Errorf("expected navigation to login, got %+v", nav)
	}
}

func TestLoginModel_Submit(t *testing.T) {
	sessions := newFakeSessions(session.Session{})
	m := NewLoginModel(sessions)
	m.form.setValue(loginEmail, " a@b.com ")
	m.form.setValue(loginPassword, "secret1")

	m, cmd := m.Update(keyEnter)
	msgs := runCmd(t, cmd)
	if sessions.loginCalls != 1 {
		t.Fatalf("login calls = %d, want 1", sessions.loginCalls)
	}
	_, cmd = m.Update(msgs[0])
	if _, ok := findMsg[AuthSucceededMsg](runCmd(t, cmd)); !ok {
		t.Error("expected AuthSucceededMsg")
	}
}

func TestLoginModel_EmptyFieldsRejected(t *testing.T) {
	sessions := newFakeSessions(session.Session{})
	m, cmd := NewLoginModel(sessions).Update(keyEnter)
	if cmd != nil || m.Error() == nil {
		t.Errorf("has cmd = %v err = %v", cmd != nil, m.Error())
	}
	if sessions.loginCalls != 0 {
		t.Errorf("login calls = %d", sessions.loginCalls)
	}
}

func TestLoginModel_FailureShown(t *testing.T) {
	sessions := newFakeSessions(session.Session{})
	sessions.loginErr = errors.New("login failed: invalid credentials")
	m := NewLoginModel(sessions)
	m.form.setValue(loginEmail, "a@b.com")
	m.form.setValue(loginPassword, "wrong")

	m, cmd := m.Update(keyEnter)
	m, _ = m.Update(runCmd(t, cmd)[0])
	if !strings.Contains(m.View(), "invalid credentials") {
		t.Errorf("view missing error:\n%s", m.View())
	}
}

func TestLoginModel_CtrlRGoesToRegister(t *testing.T) {
	m := NewLoginModel(newFakeSessions(session.Session{}))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	nav, ok := findMsg[NavigateMsg](runCmd(t, cmd))
	if !ok || nav.Route != screen.RegisterRoute {
		t.Errorf("expected navigation to register, got %+v", nav)
	}
}
