package devserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/log"
)

const (
	minNameLength     = 3
	minPasswordLength = 6
)

// isoLayout is the zone-less UTC timestamp format the API emits.
const isoLayout = "2006-01-02T15:04:05.000000"

func success(c *gin.Context, status int, data interface{}, message string) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message, code string) {
	c.JSON(status, gin.H{"success": false, "error": message, "errorCode": code})
}

// failStore maps a store error onto a response.
func failStore(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		fail(c, http.StatusNotFound, "not found", "NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		fail(c, http.StatusForbidden, "you do not have access to this resource", "FORBIDDEN")
	default:
		log.Error("devserver request failed", "path", c.FullPath(), "error", err)
		fail(c, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

func timestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func userJSON(u Account) gin.H {
	return gin.H{
		"userId":    u.ID,
		"email":     u.Email,
		"name":      u.Name,
		"createdAt": timestamp(u.CreatedAt),
	}
}

func projectJSON(p ProjectView) gin.H {
	return gin.H{
		"projectId":   p.ID,
		"name":        p.Name,
		"description": p.Description,
		"status":      p.Status,
		"createdBy":   p.CreatedBy,
		"createdAt":   timestamp(p.CreatedAt),
		"updatedAt":   timestamp(p.UpdatedAt),
		"userRole":    p.Role,
		"memberCount": p.MemberCount,
		"taskCount":   p.TaskCount,
	}
}

func taskJSON(t TaskRecord) gin.H {
	return gin.H{
		"taskId":      t.ID,
		"projectId":   t.ProjectID,
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"assignedTo":  t.AssignedTo,
		"createdBy":   t.CreatedBy,
		"createdAt":   timestamp(t.CreatedAt),
		"updatedAt":   timestamp(t.UpdatedAt),
	}
}

// bind decodes the JSON body, answering 400 on failure.
func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}
	return true
}

// =============================================================================
// Auth
// =============================================================================

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}
	required := []struct{ field, value string }{
		{"name", req.Name},
		{"email", req.Email},
		{"password", req.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fail(c, http.StatusBadRequest, "missing required field: "+r.field, "MISSING_FIELD")
			return
		}
	}
	if !strings.Contains(req.Email, "@") {
		fail(c, http.StatusBadRequest, "invalid email", "INVALID_EMAIL")
		return
	}
	if len(req.Password) < minPasswordLength {
		fail(c, http.StatusBadRequest, "password must be at least 6 characters", "WEAK_PASSWORD")
		return
	}

	u, err := s.store.CreateUser(req.Name, req.Email, req.Password)
	if errors.Is(err, ErrEmailExists) {
		fail(c, http.StatusBadRequest, "email already registered", "EMAIL_EXISTS")
		return
	}
	if err != nil {
		failStore(c, err)
		return
	}
	token, err := s.issueToken(u)
	if err != nil {
		failStore(c, err)
		return
	}
	log.Info("user registered", "userID", u.ID, "email", u.Email)
	success(c, http.StatusCreated, gin.H{"token": token, "user": userJSON(u)}, "user registered")
}

func (s *Server) login(c *gin.Context) {
	var req api.Credentials
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "email and password are required", "MISSING_CREDENTIALS")
		return
	}
	u, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid email or password", "INVALID_CREDENTIALS")
		return
	}
	token, err := s.issueToken(u)
	if err != nil {
		failStore(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"token": token, "user": userJSON(u)}, "login successful")
}

func (s *Server) me(c *gin.Context) {
	u := currentUser(c)
	success(c, http.StatusOK, gin.H{
		"user":       userJSON(u),
		"statistics": s.store.Statistics(u.ID),
	}, "")
}

// =============================================================================
// Projects
// =============================================================================

type projectRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Status      *api.ProjectStatus `json:"status"`
}

func (s *Server) listProjects(c *gin.Context) {
	projects := s.store.Projects(currentUser(c).ID)
	out := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectJSON(p))
	}
	success(c, http.StatusOK, gin.H{"projects": out, "count": len(out)}, "")
}

func (s *Server) createProject(c *gin.Context) {
	var req projectRequest
	if !bind(c, &req) {
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		fail(c, http.StatusBadRequest, "project name is required", "MISSING_NAME")
		return
	}
	name := strings.TrimSpace(*req.Name)
	if len(name) < minNameLength {
		fail(c, http.StatusBadRequest, "name must be at least 3 characters", "NAME_TOO_SHORT")
		return
	}
	status := api.ProjectActive
	if req.Status != nil && *req.Status != "" {
		if !req.Status.Valid() {
			fail(c, http.StatusBadRequest, "invalid project status", "INVALID_STATUS")
			return
		}
		status = *req.Status
	}
	var description string
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}

	p := s.store.CreateProject(currentUser(c).ID, name, description, status)
	success(c, http.StatusCreated, gin.H{"project": projectJSON(p)}, "project created")
}

func (s *Server) getProject(c *gin.Context) {
	p, err := s.store.Project(currentUser(c).ID, c.Param("id"))
	if err != nil {
		failStore(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"project": projectJSON(p)}, "")
}

func (s *Server) updateProject(c *gin.Context) {
	var req projectRequest
	if !bind(c, &req) {
		return
	}
	if req.Name == nil && req.Description == nil && req.Status == nil {
		fail(c, http.StatusBadRequest, "no fields to update", "NO_UPDATES")
		return
	}
	patch := ProjectPatch{Description: req.Description}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < minNameLength {
			fail(c, http.StatusBadRequest, "name must be at least 3 characters", "NAME_TOO_SHORT")
			return
		}
		patch.Name = &name
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			fail(c, http.StatusBadRequest, "invalid project status", "INVALID_STATUS")
			return
		}
		patch.Status = req.Status
	}

	p, err := s.store.UpdateProject(currentUser(c).ID, c.Param("id"), patch)
	if err != nil {
		failStore(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"project": projectJSON(p)}, "project updated")
}

func (s *Server) deleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.DeleteProject(currentUser(c).ID, id); err != nil {
		failStore(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"projectId": id}, "project deleted")
}

// =============================================================================
// Tasks
// =============================================================================

type taskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *api.TaskStatus `json:"status"`
	AssignedTo  *string         `json:"assignedTo"`
}

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.store.Tasks(currentUser(c).ID, c.Param("id"))
	if err != nil {
		failStore(c, err)
		return
	}
	out := make([]gin.H, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskJSON(t))
	}
	success(c, http.StatusOK, gin.H{"tasks": out, "count": len(out)}, "")
}

func (s *Server) createTask(c *gin.Context) {
	var req taskRequest
	if !bind(c, &req) {
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		fail(c, http.StatusBadRequest, "task title is required", "MISSING_TITLE")
		return
	}
	title := strings.TrimSpace(*req.Title)
	if len(title) < minNameLength {
		fail(c, http.StatusBadRequest, "title must be at least 3 characters", "TITLE_TOO_SHORT")
		return
	}
	status := api.TaskPending
	if req.Status != nil && *req.Status != "" {
		if !req.Status.Valid() {
			fail(c, http.StatusBadRequest, "invalid task status", "INVALID_STATUS")
			return
		}
		status = *req.Status
	}
	var description, assignedTo string
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}
	if req.AssignedTo != nil {
		assignedTo = *req.AssignedTo
	}

	t, err := s.store.CreateTask(currentUser(c).ID, c.Param("id"), title, description, status, assignedTo)
	if err != nil {
		failStore(c, err)
		return
	}
	success(c, http.StatusCreated, gin.H{"task": taskJSON(t)}, "task created")
}

func (s *Server) updateTask(c *gin.Context) {
	var req taskRequest
	if !bind(c, &req) {
		return
	}
	if req.Title == nil && req.Description == nil && req.Status == nil && req.AssignedTo == nil {
		fail(c, http.StatusBadRequest, "no fields to update", "NO_UPDATES")
		return
	}
	patch := TaskPatch{Description: req.Description, AssignedTo: req.AssignedTo}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if len(title) < minNameLength {
			fail(c, http.StatusBadRequest, "title must be at least 3 characters", "TITLE_TOO_SHORT")
			return
		}
		patch.Title = &title
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			fail(c, http.StatusBadRequest, "invalid task status", "INVALID_STATUS")
			return
		}
		patch.Status = req.Status
	}

	t, err := s.store.UpdateTask(currentUser(c).ID, c.Param("id"), c.Param("taskId"), patch)
	if err != nil {
		failStore(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"task": taskJSON(t)}, "task updated")
}

func (s *Server) deleteTask(c *gin.Context) {
	taskID := c.Param("taskId")
	if err := s.store.DeleteTask(currentUser(c).ID, c.Param("id"), taskID); err != nil {
		failStore(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"taskId": taskID}, "task deleted")
}
