package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/screen"
	"github.com/gerunddev/projecthub/internal/screen/screentest"
)

func detailResources(role api.Role) *screentest.Resources {
	res := screentest.New()
	res.AddProject(api.Project{
		ID:          "p1",
		Name:        "Alpha",
		Description: "Ship the **first** release",
		Status:      api.ProjectActive,
		CreatedBy:   "u1",
		UserRole:    role,
		MemberCount: 2,
	})
	return res
}

func loadedDetail(t *testing.T, res *screentest.Resources) DetailModel {
	t.Helper()
	m := NewDetailModel(res, "p1", 1)
	cmd := m.Load()
	m = drainDetail(t, m, cmd)
	if !m.State().Loaded {
		t.Fatal("project did not load")
	}
	return m
}

// drainDetail feeds every message produced by cmd back into m, following
// reloads until the screen settles.
func drainDetail(t *testing.T, m DetailModel, cmd tea.Cmd) DetailModel {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		var next []tea.Cmd
		for _, msg := range runCmd(t, cmd) {
			var c tea.Cmd
			m, c = m.Update(msg)
			next = append(next, c)
		}
		cmd = tea.Batch(next...)
	}
	return m
}

func TestDetailModel_EmptyTasksAffordance(t *testing.T) {
	m := loadedDetail(t, detailResources(api.RoleOwner))
	view := m.View()
	if !strings.Contains(view, "No tasks yet") {
		t.Errorf("view missing empty-tasks affordance:\n%s", view)
	}
	if strings.Contains(view, "Error") {
		t.Errorf("empty tasks rendered as an error:\n%s", view)
	}
}

func TestDetailModel_RendersProject(t *testing.T) {
	res := detailResources(api.RoleOwner)
	res.AddTask("p1", api.Task{ID: "t1", Title: "Write docs", Status: api.TaskInProgress})
	m := loadedDetail(t, res)

	view := m.View()
	for _, want := range []string{"Alpha", "first", "Write docs", "[in progress]", "2 members"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestDetailModel_LoadFailureLeaves(t *testing.T) {
	m := NewDetailModel(screentest.New(), "missing", 1)
	cmd := m.Load()
	_, cmd = m.Update(runCmd(t, cmd)[0])
	nav, ok := findMsg[NavigateMsg](runCmd(t, cmd))
	if !ok || nav.Route != screen.DashboardRoute {
		t.Errorf("expected navigation to the dashboard, got %+v", nav)
	}
}

func TestDetailModel_MemberCannotEdit(t *testing.T) {
	m := loadedDetail(t, detailResources(api.RoleMember))
	m, _ = m.Update(keyRunes("E"))
	if detailState(m).Mode() != screen.Viewing {
		t.Errorf("mode = %s, want viewing", detailState(m).Mode())
	}
	m, _ = m.Update(keyRunes("D"))
	if _, ok := detailState(m).PendingConfirmation(); ok {
		t.Error("member was asked to confirm a project delete")
	}
}

func TestDetailModel_EditProjectStatus(t *testing.T) {
	res := detailResources(api.RoleOwner)
	m := loadedDetail(t, res)

	m, _ = m.Update(keyRunes("E"))
	if detailState(m).Mode() != screen.EditingProject {
		t.Fatalf("mode = %s", detailState(m).Mode())
	}
	m, _ = m.Update(keyTab)
	m, _ = m.Update(keyTab)
	m, _ = m.Update(keyRunes("l"))
	if got := detailState(m).ProjectForm().Status; got != api.ProjectCompleted {
		t.Fatalf("status = %q, want completed", got)
	}

	gets := res.Count(screentest.GetProject)
	m, cmd := m.Update(keyEnter)
	m = drainDetail(t, m, cmd)

	if res.Count(screentest.UpdateProject) != 1 {
		t.Errorf("update calls = %d", res.Count(screentest.UpdateProject))
	}
	if res.Count(screentest.GetProject) != gets+1 {
		t.Error("project was not reloaded")
	}
	if detailState(m).Mode() != screen.Viewing || m.State().Project.Status != api.ProjectCompleted {
		t.Errorf("mode = %s status = %q", detailState(m).Mode(), m.State().Project.Status)
	}
}

func TestDetailModel_EditFailureKeepsForm(t *testing.T) {
	res := detailResources(api.RoleOwner)
	res.Fail(screentest.UpdateProject, errors.New("server unavailable"))
	m := loadedDetail(t, res)

	m, _ = m.Update(keyRunes("E"))
	m, _ = m.Update(keyRunes(" v2"))
	m, cmd := m.Update(keyEnter)
	m = drainDetail(t, m, cmd)

	if detailState(m).Mode() != screen.EditingProject {
		t.Errorf("mode = %s, want editing", detailState(m).Mode())
	}
	if got := detailState(m).ProjectForm().Name; got != "Alpha v2" {
		t.Errorf("name = %q, want the unsaved edit", got)
	}
	if !strings.Contains(m.View(), "server unavailable") {
		t.Errorf("view missing error:\n%s", m.View())
	}
}

func TestDetailModel_DeclineDeleteTask(t *testing.T) {
	res := detailResources(api.RoleOwner)
	res.AddTask("p1", api.Task{ID: "t1", Title: "Write docs", Status: api.TaskPending})
	m := loadedDetail(t, res)

	m, _ = m.Update(keyRunes("d"))
	if !strings.Contains(m.View(), "Confirm delete") {
		t.Fatalf("view missing prompt:\n%s", m.View())
	}
	m, cmd := m.Update(keyRunes("n"))
	if cmd != nil {
		t.Error("declining produced a command")
	}
	if res.Mutations() != 0 {
		t.Errorf("mutations = %d, want 0", res.Mutations())
	}

	cmd = m.Load()
	m = drainDetail(t, m, cmd)
	if _, ok := detailState(m).Task("t1"); !ok {
		t.Error("task missing after reload")
	}
}

func TestDetailModel_ConfirmDeleteTask(t *testing.T) {
	res := detailResources(api.RoleOwner)
	res.AddTask("p1", api.Task{ID: "t1", Title: "Write docs", Status: api.TaskPending})
	m := loadedDetail(t, res)

	m, _ = m.Update(keyRunes("d"))
	m, cmd := m.Update(keyRunes("y"))
	m = drainDetail(t, m, cmd)

	if res.Count(screentest.DeleteTask) != 1 {
		t.Errorf("delete calls = %d", res.Count(screentest.DeleteTask))
	}
	if !strings.Contains(m.View(), "No tasks yet") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestDetailModel_DeleteProjectLeaves(t *testing.T) {
	res := detailResources(api.RoleOwner)
	m := loadedDetail(t, res)

	m, _ = m.Update(keyRunes("D"))
	m, cmd := m.Update(keyRunes("y"))
	msgs := runCmd(t, cmd)
	_, cmd = m.Update(msgs[0])
	nav, ok := findMsg[NavigateMsg](runCmd(t, cmd))
	if !ok || nav.Route != screen.DashboardRoute {
		t.Errorf("expected navigation to the dashboard, got %+v", nav)
	}
}

func TestDetailModel_CreateTask(t *testing.T) {
	res := detailResources(api.RoleMember)
	m := loadedDetail(t, res)

	m, _ = m.Update(keyRunes("n"))
	m, _ = m.Update(keyRunes("Review PR"))
	m, cmd := m.Update(keyEnter)
	m = drainDetail(t, m, cmd)

	tasks := res.Tasks("p1")
	if len(tasks) != 1 || tasks[0].Title != "Review PR" || tasks[0].AssignedTo != "u1" {
		t.Errorf("tasks = %+v", tasks)
	}
	if !strings.Contains(m.View(), "Review PR") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestDetailModel_EditTask(t *testing.T) {
	res := detailResources(api.RoleOwner)
	res.AddTask("p1", api.Task{ID: "t1", Title: "Write docs", Status: api.TaskPending})
	m := loadedDetail(t, res)

	m, _ = m.Update(keyRunes("e"))
	if detailState(m).Mode() != screen.EditingTask {
		t.Fatalf("mode = %s", detailState(m).Mode())
	}
	m, _ = m.Update(keyTab)
	m, _ = m.Update(keyTab)
	m, _ = m.Update(keyRunes("l"))
	m, cmd := m.Update(keyEnter)
	m = drainDetail(t, m, cmd)

	if task, _ := detailState(m).Task("t1"); task.Status != api.TaskInProgress {
		t.Errorf("status = %q, want in_progress", task.Status)
	}
}

// detailState returns an addressable copy of the model's view state so
// pointer-receiver accessors can be called on it.
func detailState(m DetailModel) *screen.DetailState {
	s := m.State()
	return &s
}
