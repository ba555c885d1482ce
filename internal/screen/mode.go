package screen

import "github.com/gerunddev/projecthub/internal/api"

// Mode is the mutually exclusive UI state of a screen.
type Mode int

const (
	Viewing Mode = iota
	CreatingProject
	EditingProject
	CreatingTask
	EditingTask
)

func (m Mode) String() string {
	switch m {
	case CreatingProject:
		return "creating project"
	case EditingProject:
		return "editing project"
	case CreatingTask:
		return "creating task"
	case EditingTask:
		return "editing task"
	default:
		return "viewing"
	}
}

// Editing reports whether a form is open.
func (m Mode) Editing() bool {
	return m != Viewing
}

// ProjectForm is the edit buffer for a project.
type ProjectForm struct {
	Name        string
	Description string
	Status      api.ProjectStatus
}

// ProjectFormFrom copies a project into a fresh buffer.
func ProjectFormFrom(p api.Project) ProjectForm {
	return ProjectForm{Name: p.Name, Description: p.Description, Status: p.Status}
}

// Fields converts the buffer to the writable fields sent to the server.
func (f ProjectForm) Fields() api.ProjectFields {
	return api.ProjectFields{Name: f.Name, Description: f.Description, Status: f.Status}
}

// TaskForm is the edit buffer for a task. TaskID is empty when creating.
type TaskForm struct {
	TaskID      string
	Title       string
	Description string
	Status      api.TaskStatus
}

// TaskFormFrom copies a task into a fresh buffer.
func TaskFormFrom(t api.Task) TaskForm {
	return TaskForm{TaskID: t.ID, Title: t.Title, Description: t.Description, Status: t.Status}
}

// ModeMachine owns a screen's mode and its form buffers. Buffers are values,
// so edits never alias the loaded records.
type ModeMachine struct {
	mode    Mode
	project ProjectForm
	task    TaskForm
}

// Mode returns the current mode.
func (m *ModeMachine) Mode() Mode {
	return m.mode
}

// Load replaces the project buffer with the server's value. While a form is
// open the buffer is left alone; it is refreshed again on the reload that
// follows a successful save.
func (m *ModeMachine) Load(p api.Project) {
	if m.mode == Viewing {
		m.project = ProjectFormFrom(p)
	}
}

// CreateProject opens an empty project form.
func (m *ModeMachine) CreateProject() bool {
	if m.mode != Viewing {
		return false
	}
	m.mode = CreatingProject
	m.project = ProjectForm{Status: api.ProjectActive}
	return true
}

// EditProject opens the edit form for p. Only owners may edit.
func (m *ModeMachine) EditProject(p api.Project) bool {
	if m.mode != Viewing || !p.IsOwner() {
		return false
	}
	m.mode = EditingProject
	m.project = ProjectFormFrom(p)
	return true
}

// CreateTask opens an empty task form.
func (m *ModeMachine) CreateTask() bool {
	if m.mode != Viewing {
		return false
	}
	m.mode = CreatingTask
	m.task = TaskForm{Status: api.TaskPending}
	return true
}

// EditTask opens the edit form for t.
func (m *ModeMachine) EditTask(t api.Task) bool {
	if m.mode != Viewing {
		return false
	}
	m.mode = EditingTask
	m.task = TaskFormFrom(t)
	return true
}

// ProjectForm returns a copy of the project buffer.
func (m *ModeMachine) ProjectForm() ProjectForm {
	return m.project
}

// TaskForm returns a copy of the task buffer.
func (m *ModeMachine) TaskForm() TaskForm {
	return m.task
}

// SetProjectForm stores the user's edits. Ignored unless a project form is open.
func (m *ModeMachine) SetProjectForm(f ProjectForm) {
	if m.mode == CreatingProject || m.mode == EditingProject {
		m.project = f
	}
}

// SetTaskForm stores the user's edits. Ignored unless a task form is open.
func (m *ModeMachine) SetTaskForm(f TaskForm) {
	if m.mode == CreatingTask || m.mode == EditingTask {
		m.task = f
	}
}

// Cancel discards the open form.
func (m *ModeMachine) Cancel() {
	m.mode = Viewing
	m.task = TaskForm{}
}

// Finish closes the form after a successful save.
func (m *ModeMachine) Finish() {
	m.mode = Viewing
	m.task = TaskForm{}
}
