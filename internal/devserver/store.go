package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gerunddev/projecthub/internal/api"
)

// Store errors, mapped to HTTP responses by the handlers.
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
)

// Account is a registered user.
type Account struct {
	ID        string
	Name      string
	Email     string
	Hash      []byte
	CreatedAt time.Time
}

type projectRecord struct {
	ID          string
	Name        string
	Description string
	Status      api.ProjectStatus
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	seq         uint64
	members     map[string]api.Role
}

// TaskRecord is a stored task.
type TaskRecord struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      api.TaskStatus
	AssignedTo  string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	seq         uint64
}

// ProjectView is a project as seen by one user.
type ProjectView struct {
	projectRecord
	Role        api.Role
	MemberCount int
	TaskCount   int
}

// ProjectPatch holds the fields of a project update. Nil fields are left as is.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *api.ProjectStatus
}

// TaskPatch holds the fields of a task update. Nil fields are left as is.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *api.TaskStatus
	AssignedTo  *string
}

// Store is an in-memory users/projects/tasks database.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	seq      uint64
	users    map[string]*Account
	byEmail  map[string]string
	projects map[string]*projectRecord
	tasks    map[string]map[string]*TaskRecord
}

// NewStore creates an empty store. A nil now uses time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		users:    make(map[string]*Account),
		byEmail:  make(map[string]string),
		projects: make(map[string]*projectRecord),
		tasks:    make(map[string]map[string]*TaskRecord),
	}
}

// normalizeEmail lowercases and trims an address so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a user with a bcrypt-hashed password.
func (s *Store) CreateUser(name, email, password string) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	email = normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return Account{}, ErrEmailExists
	}
	u := &Account{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		Hash:      hash,
		CreatedAt: s.now().UTC(),
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return *u, nil
}

// Authenticate checks an email/password pair.
func (s *Store) Authenticate(email, password string) (Account, error) {
	s.mu.RLock()
	id, ok := s.byEmail[normalizeEmail(email)]
	var u Account
	if ok {
		u = *s.users[id]
	}
	s.mu.RUnlock()
	if !ok {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return u, nil
}

// User returns the user with the given ID.
func (s *Store) User(id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return *u, nil
}

// Statistics summarizes the projects a user belongs to.
func (s *Store) Statistics(userID string) api.Statistics {
	var stats api.Statistics
	for _, p := range s.Projects(userID) {
		stats.TotalProjects++
		switch p.Status {
		case api.ProjectActive:
			stats.ActiveProjects++
		case api.ProjectCompleted:
			stats.CompletedProjects++
		}
		if p.Role == api.RoleOwner {
			stats.OwnedProjects++
		}
		stats.TotalTasks += p.TaskCount
	}
	return stats
}

// Projects returns the user's projects, newest first.
func (s *Store) Projects(userID string) []ProjectView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ProjectView, 0)
	for _, p := range s.projects {
		if role, ok := p.members[userID]; ok {
			out = append(out, s.view(p, role))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq > out[j].seq })
	return out
}

// Project returns one project if the user belongs to it.
func (s *Store) Project(userID, projectID string) (ProjectView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, role, err := s.access(userID, projectID)
	if err != nil {
		return ProjectView{}, err
	}
	return s.view(p, role), nil
}

// CreateProject creates a project owned by userID.
func (s *Store) CreateProject(userID, name, description string, status api.ProjectStatus) ProjectView {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	s.seq++
	p := &projectRecord{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Status:      status,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		seq:         s.seq,
		members:     map[string]api.Role{userID: api.RoleOwner},
	}
	s.projects[p.ID] = p
	s.tasks[p.ID] = make(map[string]*TaskRecord)
	return s.view(p, api.RoleOwner)
}

// AddMember gives userID the member role in a project.
func (s *Store) AddMember(projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	if _, ok := p.members[userID]; !ok {
		p.members[userID] = api.RoleMember
	}
	return nil
}

// UpdateProject applies patch. Only the owner may update a project.
func (s *Store) UpdateProject(userID, projectID string, patch ProjectPatch) (ProjectView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, role, err := s.access(userID, projectID)
	if err != nil {
		return ProjectView{}, err
	}
	if role != api.RoleOwner {
		return ProjectView{}, ErrForbidden
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	p.UpdatedAt = s.now().UTC()
	return s.view(p, role), nil
}

// DeleteProject removes a project and its tasks. Only the owner may delete.
func (s *Store) DeleteProject(userID, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, role, err := s.access(userID, projectID)
	if err != nil {
		return err
	}
	if role != api.RoleOwner {
		return ErrForbidden
	}
	delete(s.projects, projectID)
	delete(s.tasks, projectID)
	return nil
}

// Tasks returns a project's tasks, newest first.
func (s *Store) Tasks(userID, projectID string) ([]TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, _, err := s.access(userID, projectID); err != nil {
		return nil, err
	}
	out := make([]TaskRecord, 0, len(s.tasks[projectID]))
	for _, t := range s.tasks[projectID] {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq > out[j].seq })
	return out, nil
}

// CreateTask adds a task to a project the user belongs to. An empty
// assignedTo assigns the task to its creator.
func (s *Store) CreateTask(userID, projectID, title, description string, status api.TaskStatus, assignedTo string) (TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, err := s.access(userID, projectID); err != nil {
		return TaskRecord{}, err
	}
	if assignedTo == "" {
		assignedTo = userID
	}
	now := s.now().UTC()
	s.seq++
	t := &TaskRecord{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      status,
		AssignedTo:  assignedTo,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		seq:         s.seq,
	}
	s.tasks[projectID][t.ID] = t
	return *t, nil
}

// UpdateTask applies patch to a task.
func (s *Store) UpdateTask(userID, projectID, taskID string, patch TaskPatch) (TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, err := s.access(userID, projectID); err != nil {
		return TaskRecord{}, err
	}
	t, ok := s.tasks[projectID][taskID]
	if !ok {
		return TaskRecord{}, ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.AssignedTo != nil && *patch.AssignedTo != "" {
		t.AssignedTo = *patch.AssignedTo
	}
	t.UpdatedAt = s.now().UTC()
	return *t, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(userID, projectID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, err := s.access(userID, projectID); err != nil {
		return err
	}
	if _, ok := s.tasks[projectID][taskID]; !ok {
		return ErrNotFound
	}
	delete(s.tasks[projectID], taskID)
	return nil
}

// access must be called with s.mu held.
func (s *Store) access(userID, projectID string) (*projectRecord, api.Role, error) {
	p, ok := s.projects[projectID]
	if !ok {
		return nil, "", ErrNotFound
	}
	role, ok := p.members[userID]
	if !ok {
		return nil, "", ErrForbidden
	}
	return p, role, nil
}

// view must be called with s.mu held.
func (s *Store) view(p *projectRecord, role api.Role) ProjectView {
	rec := *p
	rec.members = nil
	return ProjectView{
		projectRecord: rec,
		Role:          role,
		MemberCount:   len(p.members),
		TaskCount:     len(s.tasks[p.ID]),
	}
}
