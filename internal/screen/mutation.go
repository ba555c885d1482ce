package screen

import (
	"context"
	"fmt"

	"github.com/gerunddev/projecthub/internal/api"
)

// Kind is the type of a mutation.
type Kind int

const (
	CreateProject Kind = iota
	UpdateProject
	DeleteProject
	CreateTask
	UpdateTask
	DeleteTask
)

func (k Kind) String() string {
	switch k {
	case CreateProject:
		return "create project"
	case UpdateProject:
		return "update project"
	case DeleteProject:
		return "delete project"
	case CreateTask:
		return "create task"
	case UpdateTask:
		return "update task"
	case DeleteTask:
		return "delete task"
	default:
		return fmt.Sprintf("mutation(%d)", int(k))
	}
}

// Destructive reports whether the kind needs confirmation first.
func (k Kind) Destructive() bool {
	return k == DeleteProject || k == DeleteTask
}

// Mutation is one create, update or delete. Tasks are addressed by
// (ProjectID, TaskID).
type Mutation struct {
	Kind      Kind
	ProjectID string
	TaskID    string
	Project   api.ProjectFields
	Task      api.TaskFields
}

// Execute sends the mutation. The server's response body is discarded; the
// screen reloads instead.
func (m Mutation) Execute(ctx context.Context, res Resources) error {
	var err error
	switch m.Kind {
	case CreateProject:
		_, err = res.CreateProject(ctx, m.Project)
	case UpdateProject:
		_, err = res.UpdateProject(ctx, m.ProjectID, m.Project)
	case DeleteProject:
		err = res.DeleteProject(ctx, m.ProjectID)
	case CreateTask:
		_, err = res.CreateTask(ctx, m.ProjectID, m.Task)
	case UpdateTask:
		_, err = res.UpdateTask(ctx, m.ProjectID, m.TaskID, m.Task)
	case DeleteTask:
		err = res.DeleteTask(ctx, m.ProjectID, m.TaskID)
	default:
		err = fmt.Errorf("unknown mutation kind %d", int(m.Kind))
	}
	return err
}

// MutationResult is the outcome of an executed mutation.
type MutationResult struct {
	Mutation Mutation
	Err      error
}

// Coordinator allows one mutation in flight per screen. The zero value is
// idle.
type Coordinator struct {
	pending *Mutation
}

// Begin marks m as in flight.
func (c *Coordinator) Begin(m Mutation) error {
	if c.pending != nil {
		return ErrMutationPending
	}
	c.pending = &m
	return nil
}

// Pending reports whether a mutation is in flight.
func (c *Coordinator) Pending() bool {
	return c.pending != nil
}

// End clears the in-flight mutation.
func (c *Coordinator) End() {
	c.pending = nil
}
