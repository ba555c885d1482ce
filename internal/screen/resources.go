package screen

import (
	"context"

	"github.com/gerunddev/projecthub/internal/api"
)

// Resources is the remote collaborator behind every screen. *api.Client
// implements it.
type Resources interface {
	ListProjects(ctx context.Context) ([]api.Project, error)
	GetProfile(ctx context.Context) (*api.Profile, error)
	GetProject(ctx context.Context, id string) (*api.Project, error)
	ListTasks(ctx context.Context, projectID string) ([]api.Task, error)

	CreateProject(ctx context.Context, fields api.ProjectFields) (*api.Project, error)
	UpdateProject(ctx context.Context, id string, fields api.ProjectFields) (*api.Project, error)
	DeleteProject(ctx context.Context, id string) error
	CreateTask(ctx context.Context, projectID string, fields api.TaskFields) (*api.Task, error)
	UpdateTask(ctx context.Context, projectID, taskID string, fields api.TaskFields) (*api.Task, error)
	DeleteTask(ctx context.Context, projectID, taskID string) error
}

var _ Resources = (*api.Client)(nil)
