package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/log"
	"github.com/gerunddev/projecthub/internal/screen"
)

const (
	createName = iota
	createDescription
)

// DashboardModel lists the viewer's projects with their statistics.
type DashboardModel struct {
	res    screen.Resources
	mount  uint64
	state  screen.DashboardState
	form   form
	cursor int
	keys   KeyMap
	help   help.Model
	width  int
	height int
}

// NewDashboardModel creates a dashboard. Call Load to fetch its data.
func NewDashboardModel(res screen.Resources, mount uint64) DashboardModel {
	return DashboardModel{
		res:   res,
		mount: mount,
		state: screen.NewDashboardState(),
		keys:  DefaultKeyMap(),
		help:  help.New(),
	}
}

// Load starts a fresh load of projects and statistics.
func (m *DashboardModel) Load() tea.Cmd {
	token := m.state.BeginLoad()
	res, mount := m.res, m.mount
	return func() tea.Msg {
		return DashboardLoadedMsg{Mount: mount, Result: screen.LoadDashboard(context.Background(), res, token)}
	}
}

// Capturing reports whether keys are going to a text field.
func (m DashboardModel) Capturing() bool {
	return m.state.Mode() != screen.Viewing
}

// State returns the dashboard's view state.
func (m DashboardModel) State() screen.DashboardState {
	return m.state
}

// Update handles messages for the dashboard.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case DashboardLoadedMsg:
		if msg.Mount != m.mount {
			return m, nil
		}
		if err := m.state.ApplyLoad(msg.Result); err != nil {
			return m, authExpired(err)
		}
		m.clampCursor()
		return m, nil

	case MutationDoneMsg:
		if msg.Mount != m.mount || !m.state.Saving() {
			return m, nil
		}
		followup, err := m.state.Complete(msg.Result)
		if err != nil {
			return m, authExpired(err)
		}
		if followup == screen.Reload {
			cmd := m.Load()
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.state.Mode() == screen.CreatingProject {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m DashboardModel) updateList(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Projects)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if p, ok := m.Selected(); ok {
			return m, navigate(screen.ProjectRoute(p.ID))
		}
	case key.Matches(msg, m.keys.New):
		if m.state.OpenCreate() {
			m.form = newForm("New project")
			m.form.addText("Name", "", false)
			m.form.addText("Description", "", false)
		}
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.Load()
		return m, cmd
	case key.Matches(msg, m.keys.Logout):
		return m, func() tea.Msg { return LogoutMsg{} }
	}
	return m, nil
}

func (m DashboardModel) updateForm(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	if m.state.Saving() {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.state.Cancel()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.state.SetForm(screen.ProjectForm{
			Name:        strings.TrimSpace(m.form.value(createName)),
			Description: strings.TrimSpace(m.form.value(createDescription)),
			Status:      api.ProjectActive,
		})
		mut, err := m.state.Submit()
		if err != nil {
			log.Debug("Project form rejected", "error", err)
			return m, nil
		}
		return m, runMutation(m.res, m.mount, mut)
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m *DashboardModel) clampCursor() {
	if m.cursor >= len(m.state.Projects) {
		m.cursor = len(m.state.Projects) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Selected returns the project under the cursor.
func (m DashboardModel) Selected() (api.Project, bool) {
	if len(m.state.Projects) == 0 {
		return api.Project{}, false
	}
	return m.state.Projects[m.cursor], true
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("ProjectHub"))
	if m.state.User.Name != "" {
		s.WriteString("  ")
		s.WriteString(subtitleStyle.Render("Welcome, " + m.state.User.Name))
	}
	s.WriteString("\n\n")
	s.WriteString(m.renderStats())
	s.WriteString("\n\n")

	if m.state.Err != nil && m.state.Mode() == screen.Viewing {
		s.WriteString(errorStyle.Render("Error: "))
		s.WriteString(errorMessageStyle.Render(m.state.Err.Error()))
		s.WriteString("\n\n")
	}

	switch {
	case m.state.Loading() && len(m.state.Projects) == 0:
		s.WriteString(helpStyle.Render("Loading projects..."))
		s.WriteString("\n")
	case len(m.state.Projects) == 0:
		s.WriteString(emptyStateStyle.Render("No projects yet. Press n to create one."))
		s.WriteString("\n")
	default:
		s.WriteString(m.renderList())
	}

	if m.state.Mode() == screen.CreatingProject {
		s.WriteString("\n")
		s.WriteString(m.renderForm())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.help.View(m.bindings()))
	return s.String()
}

func (m DashboardModel) renderStats() string {
	stats := m.state.Stats
	cell := func(label string, n int) string {
		return panelStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(fmt.Sprintf("%d", n)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Projects", stats.TotalProjects),
		cell("Active", stats.ActiveProjects),
		cell("Completed", stats.CompletedProjects),
		cell("Tasks", stats.TotalTasks),
	)
}

func (m DashboardModel) renderList() string {
	var s strings.Builder

	visible := m.height - 14
	if visible < 3 {
		visible = 3
	}
	start, end := 0, len(m.state.Projects)
	if end > visible {
		if m.cursor > visible/2 {
			start = m.cursor - visible/2
		}
		if start+visible > end {
			start = end - visible
		}
		end = start + visible
	}

	if start > 0 {
		s.WriteString(helpStyle.Render(fmt.Sprintf("  ... %d more above", start)))
		s.WriteString("\n")
	}
	for i := start; i < end; i++ {
		p := m.state.Projects[i]
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
			style = selectedStyle
		}
		line := fmt.Sprintf("%s  %s  %s  %s",
			style.Render(p.Name),
			projectStatusBadge(p.Status),
			roleBadge(p.UserRole),
			helpStyle.Render(fmt.Sprintf("%d tasks", p.TaskCount)),
		)
		s.WriteString(cursor + line)
		s.WriteString("\n")
	}
	if end < len(m.state.Projects) {
		s.WriteString(helpStyle.Render(fmt.Sprintf("  ... %d more below", len(m.state.Projects)-end)))
		s.WriteString("\n")
	}
	return s.String()
}

func (m DashboardModel) renderForm() string {
	var s strings.Builder
	s.WriteString(m.form.view())
	if m.state.Err != nil {
		s.WriteString("\n\n")
		s.WriteString(errorMessageStyle.Render(m.state.Err.Error()))
	}
	if m.state.Saving() {
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("Saving..."))
	}
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("enter: create | tab: next field | esc: cancel"))
	return modalStyle.Render(s.String())
}

func (m DashboardModel) bindings() bindingSet {
	if m.state.Mode() != screen.Viewing {
		return bindingSet{m.keys.NextField, m.keys.Submit, m.keys.Cancel}
	}
	return bindingSet{m.keys.Up, m.keys.Down, m.keys.Open, m.keys.New, m.keys.Refresh, m.keys.Logout, m.keys.Quit}
}

// runMutation executes a mutation in the background.
func runMutation(res screen.Resources, mount uint64, mut screen.Mutation) tea.Cmd {
	return func() tea.Msg {
		err := mut.Execute(context.Background(), res)
		return MutationDoneMsg{Mount: mount, Result: screen.MutationResult{Mutation: mut, Err: err}}
	}
}

func authExpired(err error) tea.Cmd {
	return func() tea.Msg {
		return AuthExpiredMsg{Err: err}
	}
}
