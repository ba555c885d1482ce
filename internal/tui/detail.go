package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/log"
	"github.com/gerunddev/projecthub/internal/screen"
)

const (
	projectName = iota
	projectDescription
	projectStatus
)

const (
	taskTitle = iota
	taskDescription
	taskStatus
)

var (
	projectStatuses = []string{string(api.ProjectActive), string(api.ProjectCompleted)}
	taskStatuses    = []string{string(api.TaskPending), string(api.TaskInProgress), string(api.TaskCompleted)}

	editProjectKey   = key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "edit project"))
	deleteProjectKey = key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete project"))
)

// DetailModel shows one project and its tasks.
type DetailModel struct {
	res    screen.Resources
	mount  uint64
	state  screen.DetailState
	form   form
	cursor int
	keys   KeyMap
	help   help.Model
	width  int
	height int
}

// NewDetailModel creates the detail screen for a project. Call Load to
// fetch its data.
func NewDetailModel(res screen.Resources, projectID string, mount uint64) DetailModel {
	return DetailModel{
		res:   res,
		mount: mount,
		state: screen.NewDetailState(projectID),
		keys:  DefaultKeyMap(),
		help:  help.New(),
	}
}

// Load starts a fresh load of the project and its tasks.
func (m *DetailModel) Load() tea.Cmd {
	token := m.state.BeginLoad()
	res, mount, id := m.res, m.mount, m.state.ProjectID
	return func() tea.Msg {
		return ProjectLoadedMsg{Mount: mount, Result: screen.LoadDetail(context.Background(), res, id, token)}
	}
}

// Capturing reports whether keys are going to a form or a prompt.
func (m DetailModel) Capturing() bool {
	_, confirming := m.state.PendingConfirmation()
	return confirming || m.state.Mode() != screen.Viewing
}

// State returns the screen's view state.
func (m DetailModel) State() screen.DetailState {
	return m.state
}

// Update handles messages for the detail screen.
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case ProjectLoadedMsg:
		if msg.Mount != m.mount {
			return m, nil
		}
		if err := m.state.ApplyLoad(msg.Result); err != nil {
			if screen.IsAuthError(err) {
				return m, authExpired(err)
			}
			return m, navigate(screen.DashboardRoute)
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
		switch followup {
		case screen.Reload:
			cmd := m.Load()
			return m, cmd
		case screen.LeaveToDashboard:
			return m, navigate(screen.DashboardRoute)
		}
		return m, nil

	case tea.KeyMsg:
		if _, ok := m.state.PendingConfirmation(); ok {
			return m.updateConfirm(msg)
		}
		if m.state.Mode() != screen.Viewing {
			return m.updateForm(msg)
		}
		return m.updateViewing(msg)
	}
	return m, nil
}

func (m DetailModel) updateViewing(msg tea.KeyMsg) (DetailModel, tea.Cmd) {
	if !m.state.Loaded {
		if key.Matches(msg, m.keys.Back) {
			return m, navigate(screen.DashboardRoute)
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Back):
		return m, navigate(screen.DashboardRoute)
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.Load()
		return m, cmd
	case key.Matches(msg, editProjectKey):
		if m.state.EditProject() {
			m.form = projectFormFor(m.state.ProjectForm())
		}
	case key.Matches(msg, deleteProjectKey):
		m.state.RequestDeleteProject()
	case key.Matches(msg, m.keys.New):
		if m.state.CreateTask() {
			m.form = taskFormFor("New task", m.state.TaskForm())
		}
	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Open):
		if t, ok := m.Selected(); ok && m.state.EditTask(t.ID) {
			m.form = taskFormFor("Edit task", m.state.TaskForm())
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.Selected(); ok {
			m.state.RequestDeleteTask(t.ID)
		}
	}
	return m, nil
}

func (m DetailModel) updateForm(msg tea.KeyMsg) (DetailModel, tea.Cmd) {
	if m.state.Saving() {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.state.Cancel()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.syncForm()
		mut, err := m.state.Submit()
		if err != nil {
			log.Debug("Form rejected", "mode", m.state.Mode(), "error", err)
			return m, nil
		}
		return m, runMutation(m.res, m.mount, mut)
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	m.syncForm()
	return m, cmd
}

// syncForm copies the widget values into the state's edit buffer.
func (m *DetailModel) syncForm() {
	switch m.state.Mode() {
	case screen.EditingProject:
		m.state.SetProjectForm(screen.ProjectForm{
			Name:        strings.TrimSpace(m.form.value(projectName)),
			Description: strings.TrimSpace(m.form.value(projectDescription)),
			Status:      api.ProjectStatus(m.form.value(projectStatus)),
		})
	case screen.CreatingTask, screen.EditingTask:
		f := m.state.TaskForm()
		f.Title = strings.TrimSpace(m.form.value(taskTitle))
		f.Description = strings.TrimSpace(m.form.value(taskDescription))
		f.Status = api.TaskStatus(m.form.value(taskStatus))
		m.state.SetTaskForm(f)
	}
}

func (m DetailModel) updateConfirm(msg tea.KeyMsg) (DetailModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		mut, err := m.state.Confirm()
		if err != nil {
			log.Warn("Confirmation failed", "error", err)
			return m, nil
		}
		return m, runMutation(m.res, m.mount, mut)
	case key.Matches(msg, m.keys.Decline):
		m.state.Decline()
	}
	return m, nil
}

func projectFormFor(p screen.ProjectForm) form {
	f := newForm("Edit project")
	f.addText("Name", p.Name, false)
	f.addText("Description", p.Description, false)
	f.addChoice("Status", projectStatuses, string(p.Status))
	return f
}

func taskFormFor(title string, t screen.TaskForm) form {
	f := newForm(title)
	f.addText("Title", t.Title, false)
	f.addText("Description", t.Description, false)
	f.addChoice("Status", taskStatuses, string(t.Status))
	return f
}

func (m *DetailModel) clampCursor() {
	if m.cursor >= len(m.state.Tasks) {
		m.cursor = len(m.state.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Selected returns the task under the cursor.
func (m DetailModel) Selected() (api.Task, bool) {
	if len(m.state.Tasks) == 0 {
		return api.Task{}, false
	}
	return m.state.Tasks[m.cursor], true
}

// View renders the detail screen.
func (m DetailModel) View() string {
	if !m.state.Loaded {
		return helpStyle.Render("Loading project...") + "\n"
	}

	var s strings.Builder
	p := m.state.Project

	s.WriteString(titleStyle.Render(p.Name))
	s.WriteString("  ")
	s.WriteString(projectStatusBadge(p.Status))
	s.WriteString("  ")
	s.WriteString(roleBadge(p.UserRole))
	s.WriteString("\n")
	meta := fmt.Sprintf("%d members | %d tasks", p.MemberCount, p.TaskCount)
	if !p.CreatedAt.IsZero() {
		meta += " | created " + p.CreatedAt.Local().Format("Jan 02 2006")
	}
	s.WriteString(subtitleStyle.Render(meta))
	s.WriteString("\n\n")

	if desc := renderMarkdown(p.Description, m.contentWidth()); desc != "" {
		s.WriteString(desc)
		s.WriteString("\n\n")
	}

	if m.state.Err != nil && m.state.Mode() == screen.Viewing {
		s.WriteString(errorStyle.Render("Error: "))
		s.WriteString(errorMessageStyle.Render(m.state.Err.Error()))
		s.WriteString("\n\n")
	}

	s.WriteString(labelStyle.Render("Tasks"))
	s.WriteString("\n")
	if len(m.state.Tasks) == 0 {
		s.WriteString(emptyStateStyle.Render("No tasks yet. Press n to add one."))
		s.WriteString("\n")
	} else {
		for i, t := range m.state.Tasks {
			cursor := "  "
			style := normalStyle
			if i == m.cursor {
				cursor = cursorStyle.Render("> ")
				style = selectedStyle
			}
			s.WriteString(cursor + style.Render(t.Title) + "  " + taskStatusBadge(t.Status))
			s.WriteString("\n")
		}
	}

	if mut, ok := m.state.PendingConfirmation(); ok {
		s.WriteString("\n")
		s.WriteString(m.renderConfirm(mut))
		s.WriteString("\n")
	} else if m.state.Mode() != screen.Viewing {
		s.WriteString("\n")
		s.WriteString(m.renderForm())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.help.View(m.bindings()))
	return s.String()
}

func (m DetailModel) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width - 4
}

func (m DetailModel) renderForm() string {
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
	s.WriteString(helpStyle.Render("enter: save | tab: next field | ←/→: status | esc: cancel"))
	return modalStyle.Render(s.String())
}

func (m DetailModel) renderConfirm(mut screen.Mutation) string {
	var body string
	switch mut.Kind {
	case screen.DeleteProject:
		body = fmt.Sprintf("Delete project %q and all of its tasks?", m.state.Project.Name)
	default:
		title := mut.TaskID
		if t, ok := m.state.Task(mut.TaskID); ok {
			title = t.Title
		}
		body = fmt.Sprintf("Delete task %q?", title)
	}
	content := modalTitleStyle.Render("Confirm delete") + "\n\n" + body + "\n\n" +
		helpStyle.Render("y: delete | n/esc: keep")
	return dangerModalStyle.Render(content)
}

func (m DetailModel) bindings() bindingSet {
	if m.state.Mode() != screen.Viewing {
		return bindingSet{m.keys.NextField, m.keys.Submit, m.keys.Cancel}
	}
	b := bindingSet{m.keys.Up, m.keys.Down, m.keys.New, m.keys.Edit, m.keys.Delete}
	if m.state.CanEdit() {
		b = append(b, editProjectKey, deleteProjectKey)
	}
	return append(b, m.keys.Refresh, m.keys.Back, m.keys.Quit)
}
