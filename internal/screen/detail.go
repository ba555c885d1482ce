package screen

import (
	"context"
	"errors"
	"fmt"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/log"
)

// DetailData is the result of one project detail load.
type DetailData struct {
	Project api.Project
	Tasks   []api.Task
}

// DetailResult is a completed project detail load.
type DetailResult struct {
	Token     Token
	ProjectID string
	Data      DetailData
	Err       error
}

// LoadDetail fetches a project and its tasks concurrently.
func LoadDetail(ctx context.Context, res Resources, projectID string, token Token) DetailResult {
	var (
		project *api.Project
		tasks   []api.Task
	)
	err := FetchAll(ctx,
		func(ctx context.Context) error {
			var err error
			project, err = res.GetProject(ctx, projectID)
			return err
		},
		func(ctx context.Context) error {
			var err error
			tasks, err = res.ListTasks(ctx, projectID)
			return err
		},
	)
	result := DetailResult{Token: token, ProjectID: projectID}
	if err == nil && project == nil {
		err = errors.New("project missing from response")
	}
	if err != nil {
		result.Err = authOr(err, func(err error) error {
			return &LoadError{Screen: "project " + projectID, Err: err}
		})
		return result
	}
	result.Data.Project = *project
	result.Data.Tasks = tasks
	if result.Data.Tasks == nil {
		result.Data.Tasks = []api.Task{}
	}
	return result
}

// DetailState is the view state of one project's detail screen.
type DetailState struct {
	ProjectID string
	Project   api.Project
	Tasks     []api.Task
	// Loaded is false until the first load commits.
	Loaded bool
	// Err is the last validation or save failure, shown inline.
	Err error

	loader  Loader
	mode    ModeMachine
	coord   Coordinator
	confirm Confirmation
}

// NewDetailState returns an empty detail screen for a project.
func NewDetailState(projectID string) DetailState {
	return DetailState{ProjectID: projectID, Tasks: []api.Task{}}
}

// BeginLoad issues a load token. Pass it to LoadDetail.
func (s *DetailState) BeginLoad() Token {
	return s.loader.Begin()
}

// Loading reports whether the latest load is still outstanding.
func (s *DetailState) Loading() bool {
	return s.loader.Loading()
}

// ApplyLoad commits a completed load unless a newer one already committed.
// A returned *LoadError is fatal for the screen and the caller navigates to
// the dashboard; an *AuthError signs the viewer out.
func (s *DetailState) ApplyLoad(r DetailResult) error {
	if r.ProjectID != s.ProjectID || !s.loader.Settle(r.Token) {
		log.Debug("Discarding stale project load", "project", r.ProjectID, "token", r.Token)
		return nil
	}
	if r.Err != nil {
		log.Error("Project load failed", "project", r.ProjectID, "error", r.Err)
		return r.Err
	}
	s.Project = r.Data.Project
	s.Tasks = r.Data.Tasks
	s.Loaded = true
	s.mode.Load(s.Project)
	return nil
}

// Mode returns the current view mode.
func (s *DetailState) Mode() Mode {
	return s.mode.Mode()
}

// CanEdit reports whether the viewer may edit or delete the project.
func (s *DetailState) CanEdit() bool {
	return s.Loaded && s.Project.IsOwner()
}

// Task returns the loaded task with the given id.
func (s *DetailState) Task(id string) (api.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return api.Task{}, false
}

// EditProject opens the project form. Members cannot edit.
func (s *DetailState) EditProject() bool {
	if !s.Loaded || s.confirming() {
		return false
	}
	if !s.mode.EditProject(s.Project) {
		return false
	}
	s.Err = nil
	return true
}

// CreateTask opens an empty task form.
func (s *DetailState) CreateTask() bool {
	if !s.Loaded || s.confirming() || !s.mode.CreateTask() {
		return false
	}
	s.Err = nil
	return true
}

// EditTask opens the form for a loaded task.
func (s *DetailState) EditTask(taskID string) bool {
	t, ok := s.Task(taskID)
	if !ok || s.confirming() || !s.mode.EditTask(t) {
		return false
	}
	s.Err = nil
	return true
}

// ProjectForm returns the project buffer.
func (s *DetailState) ProjectForm() ProjectForm {
	return s.mode.ProjectForm()
}

// TaskForm returns the task buffer.
func (s *DetailState) TaskForm() TaskForm {
	return s.mode.TaskForm()
}

// SetProjectForm stores the user's edits to the project buffer.
func (s *DetailState) SetProjectForm(f ProjectForm) {
	s.mode.SetProjectForm(f)
}

// SetTaskForm stores the user's edits to the task buffer.
func (s *DetailState) SetTaskForm(f TaskForm) {
	s.mode.SetTaskForm(f)
}

// Cancel closes the open form without saving.
func (s *DetailState) Cancel() {
	if s.coord.Pending() {
		return
	}
	s.mode.Cancel()
	s.Err = nil
}

// Saving reports whether a mutation is in flight.
func (s *DetailState) Saving() bool {
	return s.coord.Pending()
}

// Submit validates the open form and returns the mutation to execute.
func (s *DetailState) Submit() (Mutation, error) {
	var m Mutation
	switch s.mode.Mode() {
	case EditingProject:
		form := s.mode.ProjectForm()
		if err := ValidateProjectForm(form); err != nil {
			s.Err = err
			return Mutation{}, err
		}
		m = Mutation{Kind: UpdateProject, ProjectID: s.ProjectID, Project: form.Fields()}
	case CreatingTask, EditingTask:
		form := s.mode.TaskForm()
		if err := ValidateTaskForm(form); err != nil {
			s.Err = err
			return Mutation{}, err
		}
		m = Mutation{
			Kind:      CreateTask,
			ProjectID: s.ProjectID,
			Task:      s.taskFields(form),
		}
		if s.mode.Mode() == EditingTask {
			m.Kind = UpdateTask
			m.TaskID = form.TaskID
		}
	default:
		return Mutation{}, fmt.Errorf("no form open while %s", s.mode.Mode())
	}
	if err := s.coord.Begin(m); err != nil {
		return Mutation{}, err
	}
	return m, nil
}

// taskFields builds the request body for a task form. Tasks are assigned to
// the project's creator.
// TODO: replace with an assignee picker once the API exposes project members.
func (s *DetailState) taskFields(f TaskForm) api.TaskFields {
	status := f.Status
	if status == "" {
		status = api.TaskPending
	}
	return api.TaskFields{
		Title:       f.Title,
		Description: f.Description,
		Status:      status,
		AssignedTo:  s.Project.CreatedBy,
	}
}

func (s *DetailState) confirming() bool {
	_, ok := s.confirm.Pending()
	return ok
}

// RequestDeleteProject asks for confirmation to delete the project. Only
// owners may delete.
func (s *DetailState) RequestDeleteProject() bool {
	if !s.CanEdit() || s.mode.Mode() != Viewing || s.coord.Pending() {
		return false
	}
	return s.confirm.Request(Mutation{Kind: DeleteProject, ProjectID: s.ProjectID}) == nil
}

// RequestDeleteTask asks for confirmation to delete a task.
func (s *DetailState) RequestDeleteTask(taskID string) bool {
	if _, ok := s.Task(taskID); !ok || s.mode.Mode() != Viewing || s.coord.Pending() {
		return false
	}
	return s.confirm.Request(Mutation{Kind: DeleteTask, ProjectID: s.ProjectID, TaskID: taskID}) == nil
}

// PendingConfirmation returns the delete awaiting an answer.
func (s *DetailState) PendingConfirmation() (Mutation, bool) {
	return s.confirm.Pending()
}

// Confirm accepts the pending delete and returns it for execution.
func (s *DetailState) Confirm() (Mutation, error) {
	m, ok := s.confirm.Confirm()
	if !ok {
		return Mutation{}, errors.New("nothing to confirm")
	}
	if err := s.coord.Begin(m); err != nil {
		return Mutation{}, err
	}
	return m, nil
}

// Decline drops the pending delete. Nothing is sent.
func (s *DetailState) Decline() {
	s.confirm.Decline()
}

// Complete records the outcome of a mutation. On success any open form
// closes and the screen reloads, or leaves when the project itself was
// deleted. On failure the mode and buffers are kept and the error is stored.
func (s *DetailState) Complete(r MutationResult) (Followup, error) {
	s.coord.End()
	if r.Err != nil {
		err := authOr(r.Err, func(err error) error {
			return &MutationError{Kind: r.Mutation.Kind, Err: err}
		})
		if IsAuthError(err) {
			return Stay, err
		}
		log.Warn("Mutation failed", "kind", r.Mutation.Kind, "project", s.ProjectID, "error", r.Err)
		s.Err = err
		return Stay, nil
	}
	s.Err = nil
	if r.Mutation.Kind == DeleteProject {
		return LeaveToDashboard, nil
	}
	s.mode.Finish()
	return Reload, nil
}
