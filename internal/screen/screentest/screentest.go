// Package screentest provides an in-memory Resources implementation that
// records every call, for tests of the screen and tui packages.
package screentest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gerunddev/projecthub/internal/api"
)

// Method names as recorded in Calls.
const (
	ListProjects  = "ListProjects"
	GetProfile    = "GetProfile"
	GetProject    = "GetProject"
	ListTasks     = "ListTasks"
	CreateProject = "CreateProject"
	UpdateProject = "UpdateProject"
	DeleteProject = "DeleteProject"
	CreateTask    = "CreateTask"
	UpdateTask    = "UpdateTask"
	DeleteTask    = "DeleteTask"
)

// Call is one recorded invocation.
type Call struct {
	Method string
	Args   []string
}

// Resources is a fake remote store. It is safe for concurrent use.
type Resources struct {
	mu       sync.Mutex
	projects []api.Project
	tasks    map[string][]api.Task
	profile  api.Profile
	failures map[string]error
	calls    []Call
	nextID   int

	// OnUpdateProject, if set, rewrites a project after an update is
	// stored, to model server-side normalization.
	OnUpdateProject func(p *api.Project)
}

// New returns an empty fake.
func New() *Resources {
	return &Resources{
		tasks:    make(map[string][]api.Task),
		failures: make(map[string]error),
	}
}

// AddProject stores a project.
func (r *Resources) AddProject(p api.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = append(r.projects, p)
}

// AddTask stores a task under a project.
func (r *Resources) AddTask(projectID string, t api.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[projectID] = append(r.tasks[projectID], t)
}

// SetProfile sets the profile returned by GetProfile.
func (r *Resources) SetProfile(p api.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = p
}

// Fail makes every later call to method return err. A nil err clears it.
func (r *Resources) Fail(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, method)
		return
	}
	r.failures[method] = err
}

// Calls returns a copy of the recorded calls in order.
func (r *Resources) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many times method was called.
func (r *Resources) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Mutations returns how many create, update or delete calls were made.
func (r *Resources) Mutations() int {
	return r.Count(CreateProject) + r.Count(UpdateProject) + r.Count(DeleteProject) +
		r.Count(CreateTask) + r.Count(UpdateTask) + r.Count(DeleteTask)
}

// Project returns the stored project with the given id.
func (r *Resources) Project(id string) (api.Project, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return api.Project{}, false
	}
	return r.projects[i], true
}

// Tasks returns the stored tasks of a project.
func (r *Resources) Tasks(projectID string) []api.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.Task(nil), r.tasks[projectID]...)
}

func (r *Resources) record(method string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Args: args})
	return r.failures[method]
}

func (r *Resources) indexLocked(id string) int {
	for i, p := range r.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Resources) newIDLocked(prefix string) string {
	r.nextID++
	return fmt.Sprintf("%s%d", prefix, r.nextID)
}

func notFound(what string) error {
	return &api.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: what + " not found"}
}

func (r *Resources) ListProjects(ctx context.Context) ([]api.Project, error) {
	if err := r.record(ListProjects); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.Project(nil), r.projects...), nil
}

func (r *Resources) GetProfile(ctx context.Context) (*api.Profile, error) {
	if err := r.record(GetProfile); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.profile
	return &p, nil
}

func (r *Resources) GetProject(ctx context.Context, id string) (*api.Project, error) {
	if err := r.record(GetProject, id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return nil, notFound("project")
	}
	p := r.projects[i]
	return &p, nil
}

// ListTasks returns nil for a project without tasks, like a server that
// omits empty collections.
func (r *Resources) ListTasks(ctx context.Context, projectID string) ([]api.Task, error) {
	if err := r.record(ListTasks, projectID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tasks[projectID]) == 0 {
		return nil, nil
	}
	return append([]api.Task(nil), r.tasks[projectID]...), nil
}

func (r *Resources) CreateProject(ctx context.Context, fields api.ProjectFields) (*api.Project, error) {
	if err := r.record(CreateProject, fields.Name); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := api.Project{
		ID:          r.newIDLocked("p"),
		Name:        fields.Name,
		Description: fields.Description,
		Status:      fields.Status,
		UserRole:    api.RoleOwner,
		MemberCount: 1,
	}
	r.projects = append([]api.Project{p}, r.projects...)
	return &p, nil
}

func (r *Resources) UpdateProject(ctx context.Context, id string, fields api.ProjectFields) (*api.Project, error) {
	if err := r.record(UpdateProject, id, fields.Name, string(fields.Status)); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return nil, notFound("project")
	}
	p := &r.projects[i]
	p.Name = fields.Name
	p.Description = fields.Description
	if fields.Status != "" {
		p.Status = fields.Status
	}
	if r.OnUpdateProject != nil {
		r.OnUpdateProject(p)
	}
	out := *p
	return &out, nil
}

func (r *Resources) DeleteProject(ctx context.Context, id string) error {
	if err := r.record(DeleteProject, id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return notFound("project")
	}
	r.projects = append(r.projects[:i], r.projects[i+1:]...)
	delete(r.tasks, id)
	return nil
}

func (r *Resources) CreateTask(ctx context.Context, projectID string, fields api.TaskFields) (*api.Task, error) {
	if err := r.record(CreateTask, projectID, fields.Title, fields.AssignedTo); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t := api.Task{
		ID:          r.newIDLocked("t"),
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		AssignedTo:  fields.AssignedTo,
	}
	r.tasks[projectID] = append([]api.Task{t}, r.tasks[projectID]...)
	return &t, nil
}

func (r *Resources) UpdateTask(ctx context.Context, projectID, taskID string, fields api.TaskFields) (*api.Task, error) {
	if err := r.record(UpdateTask, projectID, taskID, fields.Title); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks[projectID] {
		t := &r.tasks[projectID][i]
		if t.ID == taskID {
			t.Title = fields.Title
			t.Description = fields.Description
			t.Status = fields.Status
			t.AssignedTo = fields.AssignedTo
			out := *t
			return &out, nil
		}
	}
	return nil, notFound("task")
}

func (r *Resources) DeleteTask(ctx context.Context, projectID, taskID string) error {
	if err := r.record(DeleteTask, projectID, taskID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := r.tasks[projectID]
	for i, t := range tasks {
		if t.ID == taskID {
			r.tasks[projectID] = append(tasks[:i], tasks[i+1:]...)
			return nil
		}
	}
	return notFound("task")
}
