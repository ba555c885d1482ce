package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProjectStatus is the lifecycle status of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
)

// Role is the viewer's role within a project, decided by the server.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// TaskStatus is the status of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	return s == ProjectActive || s == ProjectCompleted
}

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// User is the authenticated viewer.
type User struct {
	ID    string `json:"userId"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Project is a project as seen by the current viewer.
type Project struct {
	ID          string        `json:"projectId"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   Timestamp     `json:"createdAt"`
	CreatedBy   string        `json:"createdBy"`
	UserRole    Role          `json:"userRole"`
	MemberCount int           `json:"memberCount"`
	TaskCount   int           `json:"taskCount"`
}

// IsOwner reports whether the viewer owns the project.
func (p Project) IsOwner() bool {
	return p.UserRole == RoleOwner
}

// Task is a unit of work inside a project. The owning project is implied by
// the request that fetched it.
type Task struct {
	ID          string     `json:"taskId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	AssignedTo  string     `json:"assignedTo"`
}

// Statistics is the server-computed summary shown on the dashboard.
type Statistics struct {
	TotalProjects     int `json:"totalProjects"`
	ActiveProjects    int `json:"activeProjects"`
	CompletedProjects int `json:"completedProjects"`
	TotalTasks        int `json:"totalTasks"`
	OwnedProjects     int `json:"ownedProjects"`
}

// ProjectFields is the writable part of a project.
type ProjectFields struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
}

// TaskFields is the writable part of a task.
type TaskFields struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
}

// Credentials are submitted to log in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is submitted to create an account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by login and register.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Profile is returned by the profile endpoint.
type Profile struct {
	User       User       `json:"user"`
	Statistics Statistics `json:"statistics"`
}

// naiveLayout is the zone-less ISO format some servers emit (always UTC).
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp accepts RFC 3339 and zone-less ISO 8601 timestamps.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
