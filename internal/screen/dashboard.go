package screen

import (
	"context"
	"fmt"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/log"
)

// DashboardData is the result of one dashboard load.
type DashboardData struct {
	Projects []api.Project
	Stats    api.Statistics
	User     api.User
}

// DashboardResult is a completed dashboard load.
type DashboardResult struct {
	Token Token
	Data  DashboardData
	Err   error
}

// LoadDashboard fetches the project list and the profile concurrently.
func LoadDashboard(ctx context.Context, res Resources, token Token) DashboardResult {
	var (
		projects []api.Project
		profile  *api.Profile
	)
	err := FetchAll(ctx,
		func(ctx context.Context) error {
			var err error
			projects, err = res.ListProjects(ctx)
			return err
		},
		func(ctx context.Context) error {
			var err error
			profile, err = res.GetProfile(ctx)
			return err
		},
	)
	result := DashboardResult{Token: token}
	if err != nil {
		result.Err = authOr(err, func(err error) error {
			return &LoadError{Screen: "dashboard", Err: err}
		})
		return result
	}
	result.Data.Projects = projects
	if result.Data.Projects == nil {
		result.Data.Projects = []api.Project{}
	}
	if profile != nil {
		result.Data.Stats = profile.Statistics
		result.Data.User = profile.User
	}
	return result
}

// DashboardState is the view state of the dashboard. Build a new one each
// time the dashboard is shown.
type DashboardState struct {
	Projects []api.Project
	Stats    api.Statistics
	User     api.User
	// Err is shown as a banner: the last failed load, validation or save.
	Err error

	loader Loader
	mode   ModeMachine
	coord  Coordinator
}

// NewDashboardState returns an empty dashboard.
func NewDashboardState() DashboardState {
	return DashboardState{Projects: []api.Project{}}
}

// BeginLoad issues a load token. Pass it to LoadDashboard.
func (s *DashboardState) BeginLoad() Token {
	return s.loader.Begin()
}

// Loading reports whether the latest load is still outstanding.
func (s *DashboardState) Loading() bool {
	return s.loader.Loading()
}

// ApplyLoad commits a completed load unless a newer one already committed.
// Load failures are not fatal: the dashboard shows empty data and a banner.
// Only an *AuthError is returned.
func (s *DashboardState) ApplyLoad(r DashboardResult) error {
	if !s.loader.Settle(r.Token) {
		log.Debug("Discarding stale dashboard load", "token", r.Token)
		return nil
	}
	if r.Err != nil {
		if IsAuthError(r.Err) {
			return r.Err
		}
		log.Error("Dashboard load failed", "error", r.Err)
		s.Projects = []api.Project{}
		s.Stats = api.Statistics{}
		s.Err = r.Err
		return nil
	}
	s.Projects = r.Data.Projects
	s.Stats = r.Data.Stats
	s.User = r.Data.User
	s.Err = nil
	return nil
}

// Mode returns the current view mode.
func (s *DashboardState) Mode() Mode {
	return s.mode.Mode()
}

// OpenCreate opens the new-project form.
func (s *DashboardState) OpenCreate() bool {
	if !s.mode.CreateProject() {
		return false
	}
	s.Err = nil
	return true
}

// Form returns the new-project buffer.
func (s *DashboardState) Form() ProjectForm {
	return s.mode.ProjectForm()
}

// SetForm stores the user's edits to the new-project buffer.
func (s *DashboardState) SetForm(f ProjectForm) {
	s.mode.SetProjectForm(f)
}

// Cancel closes the form without saving.
func (s *DashboardState) Cancel() {
	if s.coord.Pending() {
		return
	}
	s.mode.Cancel()
	s.Err = nil
}

// Saving reports whether a mutation is in flight.
func (s *DashboardState) Saving() bool {
	return s.coord.Pending()
}

// Submit validates the form and returns the mutation to execute. New
// projects always start active.
func (s *DashboardState) Submit() (Mutation, error) {
	if s.mode.Mode() != CreatingProject {
		return Mutation{}, fmt.Errorf("no form open while %s", s.mode.Mode())
	}
	form := s.mode.ProjectForm()
	if err := ValidateProjectForm(form); err != nil {
		s.Err = err
		return Mutation{}, err
	}
	fields := form.Fields()
	fields.Status = api.ProjectActive
	m := Mutation{Kind: CreateProject, Project: fields}
	if err := s.coord.Begin(m); err != nil {
		return Mutation{}, err
	}
	return m, nil
}

// Complete records the outcome of a mutation started by Submit. On success
// the form closes and the dashboard must reload. On failure the form stays
// open with the user's input and the error is kept for display.
func (s *DashboardState) Complete(r MutationResult) (Followup, error) {
	s.coord.End()
	if r.Err != nil {
		err := authOr(r.Err, func(err error) error {
			return &MutationError{Kind: r.Mutation.Kind, Err: err}
		})
		if IsAuthError(err) {
			return Stay, err
		}
		log.Warn("Mutation failed", "kind", r.Mutation.Kind, "error", r.Err)
		s.Err = err
		return Stay, nil
	}
	s.mode.Finish()
	s.Err = nil
	return Reload, nil
}
