package screen

import (
	"context"
	"errors"
	"testing"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/screen/screentest"
)

func newDetailFixture(t *testing.T, role api.Role) (*screentest.Resources, DetailState) {
	t.Helper()
	res := screentest.New()
	res.AddProject(api.Project{
		ID:        "p1",
		Name:      "Alpha",
		Status:    api.ProjectActive,
		CreatedBy: "owner-1",
		UserRole:  role,
	})
	res.AddTask("p1", api.Task{ID: "t1", Title: "Write docs", Status: api.TaskPending})
	s := NewDetailState("p1")
	loadDetail(t, res, &s)
	return res, s
}

func loadDetail(t *testing.T, res Resources, s *DetailState) {
	t.Helper()
	r := LoadDetail(context.Background(), res, s.ProjectID, s.BeginLoad())
	if err := s.ApplyLoad(r); err != nil {
		t.Fatalf("ApplyLoad: %v", err)
	}
}

// execute runs a mutation against res and feeds the outcome back.
func execute(t *testing.T, res Resources, s *DetailState, m Mutation) Followup {
	t.Helper()
	followup, err := s.Complete(MutationResult{Mutation: m, Err: m.Execute(context.Background(), res)})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if followup == Reload {
		loadDetail(t, res, s)
	}
	return followup
}

func TestDetail_Load(t *testing.T) {
	res, s := newDetailFixture(t, api.RoleOwner)
	if !s.Loaded || s.Project.Name != "Alpha" || len(s.Tasks) != 1 {
		t.Errorf("state = %+v", s)
	}
	if res.Count(screentest.GetProject) != 1 || res.Count(screentest.ListTasks) != 1 {
		t.Errorf("calls = %+v", res.Calls())
	}
}

func TestDetail_EmptyTasksIsNotAnError(t *testing.T) {
	res := screentest.New()
	res.AddProject(api.Project{ID: "p1", Name: "Alpha", UserRole: api.RoleOwner})
	s := NewDetailState("p1")
	loadDetail(t, res, &s)

	if s.Tasks == nil || len(s.Tasks) != 0 {
		t.Errorf("tasks = %#v, want empty slice", s.Tasks)
	}
	if s.Err != nil {
		t.Errorf("Err = %v", s.Err)
	}
}

func TestDetail_LoadFailureIsFatal(t *testing.T) {
	res := screentest.New()
	s := NewDetailState("missing")

	err := s.ApplyLoad(LoadDetail(context.Background(), res, "missing", s.BeginLoad()))
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("err = %v, want LoadError", err)
	}
	if !api.IsNotFound(err) {
		t.Error("LoadError should unwrap to the API error")
	}
}

func TestDetail_LastCompletedLoadWins(t *testing.T) {
	s := NewDetailState("p1")
	a := s.BeginLoad()
	b := s.BeginLoad()

	_ = s.ApplyLoad(DetailResult{Token: b, ProjectID: "p1", Data: DetailData{Project: api.Project{ID: "p1", Name: "B"}, Tasks: []api.Task{}}})
	_ = s.ApplyLoad(DetailResult{Token: a, ProjectID: "p1", Data: DetailData{Project: api.Project{ID: "p1", Name: "A"}, Tasks: []api.Task{}}})

	if s.Project.Name != "B" {
		t.Errorf("project = %q, want B", s.Project.Name)
	}
	if s.ProjectForm().Name != "B" {
		t.Errorf("buffer = %q, want B", s.ProjectForm().Name)
	}
}

func TestDetail_MemberCannotEditOrDelete(t *testing.T) {
	res, s := newDetailFixture(t, api.RoleMember)
	if s.EditProject() {
		t.Error("member entered edit mode")
	}
	if s.Mode() != Viewing {
		t.Errorf("mode = %s, want viewing", s.Mode())
	}
	if s.RequestDeleteProject() {
		t.Error("member requested project deletion")
	}
	if res.Mutations() != 0 {
		t.Errorf("mutations = %d", res.Mutations())
	}
}

func TestDetail_UpdateProjectFailureKeepsEdits(t *testing.T) {
	res, s := newDetailFixture(t, api.RoleOwner)
	res.Fail(screentest.UpdateProject, errors.New("server unavailable"))

	if !s.EditProject() {
		t.Fatal("owner could not edit")
	}
	form := s.ProjectForm()
	form.Name = "Alpha renamed"
	form.Status = api.ProjectCompleted
	s.SetProjectForm(form)

	m, err := s.Submit()
	if err != nil {
		t.Fatal(err)
	}
	followup := execute(t, res, &s, m)

	if followup != Stay {
		t.Errorf("followup = %v, want stay", followup)
	}
	if s.Mode() != EditingProject {
		t.Errorf("mode = %s, want editing project", s.Mode())
	}
	if s.ProjectForm() != form {
		t.Errorf("buffer = %+v, want %+v", s.ProjectForm(), form)
	}
	var merr *MutationError
	if !errors.As(s.Err, &merr) || merr.Kind != UpdateProject {
		t.Errorf("Err = %v, want MutationError", s.Err)
	}
}

func TestDetail_UpdateProjectReloadsServerValue(t *testing.T) {
	res, s := newDetailFixture(t, api.RoleOwner)
	res.OnUpdateProject = func(p *api.Project) {
		p.Name = p.Name + " (normalized)"
	}

	s.EditProject()
	form := s.ProjectForm()
	form.Status = api.ProjectCompleted
	s.SetProjectForm(form)
	m, err := s.Submit()
	if err != nil {
		t.Fatal(err)
	}
	getsBefore := res.Count(screentest.GetProject)

	if followup := execute(t, res, &s, m); followup != Reload {
		t.Fatalf("followup = %v, want reload", followup)
	}
	if res.Count(screentest.GetProject) != getsBefore+1 {
		t.Error("GetProject was not re-invoked after the update")
	}
	if s.Mode() != Viewing {
		t.Errorf("mode = %s, want viewing", s.Mode())
	}
	want := ProjectForm{Name: "Alpha (normalized)", Status: api.ProjectCompleted}
	if s.ProjectForm() != want {
		t.Errorf("buffer = %+v, want %+v", s.ProjectForm(), want)
	}
	if s.Project.Status != api.ProjectCompleted {
		t.Errorf("status = %q", s.Project.Status)
	}
}

func TestDetail_DeclineDeleteTaskMakesNoCalls(t *testing.T) {
	res, s := newDetailFixture(t, api.RoleMember)
	if !s.RequestDeleteTask("t1") {
		t.Fatal("could not request task deletion")
	}
	if s.EditTask("t1") {
		t.Error("opened a form while a confirmation was pending")
	}
	s.Decline()

	if res.Mutations() != 0 {
		t.Errorf("mutations = %d, want 0", res.Mutations())
	}
	loadDetail(t, res, &s)
	if _, ok := s.Task("t1"); !ok {
		t.Error("task disappeared after declining")
	}
}

func TestDetail_ConfirmDeleteTask(t *testing.T) {
	res, s := newDetailFixture(t, api.RoleOwner)
	s.RequestDeleteTask("t1")
	m, err := s.Confirm()
	if err != nil {
		t.Fatal(err)
	}
	if m.Kind != DeleteTask || m.ProjectID != "p1" || m.TaskID != "t1" {
		t.Errorf("mutation = %+v", m)
	}
	execute(t, res, &s, m)
	if len(s.Tasks) != 0 {
		t.Errorf("tasks = %+v, want none", s.Tasks)
	}
}

func TestDetail_ConfirmDeleteProjectLeaves(t *testing.T) {
	res, s := newDetailFixture(t, api.RoleOwner)
	if !s.RequestDeleteProject() {
		t.Fatal("owner could not request deletion")
	}
	m, err := s.Confirm()
	if err != nil {
		t.Fatal(err)
	}
	if followup := execute(t, res, &s, m); followup != LeaveToDashboard {
		t.Errorf("followup = %v, want leave", followup)
	}
	if _, ok := res.Project("p1"); ok {
		t.Error("project still stored")
	}
}

func TestDetail_CreateTaskAssignsProjectCreator(t *testing.T) {
	res, s := newDetailFixture(t, api.RoleMember)
	if !s.CreateTask() {
		t.Fatal("could not open task form")
	}
	s.SetTaskForm(TaskForm{Title: "Review", Status: api.TaskInProgress})
	m, err := s.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if m.Task.AssignedTo != "owner-1" {
		t.Errorf("assignedTo = %q, want project creator", m.Task.AssignedTo)
	}
	execute(t, res, &s, m)
	if len(s.Tasks) != 2 || s.Tasks[0].Title != "Review" {
		t.Errorf("tasks = %+v", s.Tasks)
	}
}

func TestDetail_EditTask(t *testing.T) {
	res, s := newDetailFixture(t, api.RoleOwner)
	if !s.EditTask("t1") {
		t.Fatal("could not edit task")
	}
	form := s.TaskForm()
	form.Status = api.TaskCompleted
	s.SetTaskForm(form)
	m, err := s.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if m.Kind != UpdateTask || m.TaskID != "t1" {
		t.Errorf("mutation = %+v", m)
	}
	execute(t, res, &s, m)
	if task, _ := s.Task("t1"); task.Status != api.TaskCompleted {
		t.Errorf("status = %q", task.Status)
	}
}

func TestDetail_TaskValidation(t *testing.T) {
	res, s := newDetailFixture(t, api.RoleOwner)
	s.CreateTask()
	s.SetTaskForm(TaskForm{Title: "x"})
	if _, err := s.Submit(); err == nil {
		t.Fatal("expected validation error")
	}
	if s.Mode() != CreatingTask || res.Mutations() != 0 {
		t.Errorf("mode = %s mutations = %d", s.Mode(), res.Mutations())
	}
	s.Cancel()
	if s.Mode() != Viewing || s.Err != nil {
		t.Errorf("after cancel mode = %s err = %v", s.Mode(), s.Err)
	}
}

func TestDetail_IgnoresOtherProjectsLoad(t *testing.T) {
	s := NewDetailState("p1")
	tok := s.BeginLoad()
	_ = s.ApplyLoad(DetailResult{Token: tok, ProjectID: "p2", Data: DetailData{Project: api.Project{ID: "p2"}}})
	if s.Loaded {
		t.Error("applied a load for another project")
	}
}
