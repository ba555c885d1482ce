package screen

import "strings"

// RouteName identifies a screen.
type RouteName int

const (
	RouteDashboard RouteName = iota
	RouteLogin
	RouteRegister
	RouteProject
)

// Visibility is a screen's session requirement.
type Visibility int

const (
	// Protected screens require an authenticated session.
	Protected Visibility = iota
	// PublicOnly screens require the absence of one.
	PublicOnly
)

// Route is a navigation target. ProjectID is set only for RouteProject.
type Route struct {
	Name      RouteName
	ProjectID string
}

// Common routes.
var (
	LoginRoute     = Route{Name: RouteLogin}
	RegisterRoute  = Route{Name: RouteRegister}
	DashboardRoute = Route{Name: RouteDashboard}
)

// ProjectRoute returns the detail route for a project.
func ProjectRoute(id string) Route {
	return Route{Name: RouteProject, ProjectID: id}
}

// Visibility returns the session requirement of the route.
func (r Route) Visibility() Visibility {
	switch r.Name {
	case RouteLogin, RouteRegister:
		return PublicOnly
	default:
		return Protected
	}
}

// String returns the route as a path.
func (r Route) String() string {
	switch r.Name {
	case RouteLogin:
		return "/login"
	case RouteRegister:
		return "/register"
	case RouteProject:
		return "/projects/" + r.ProjectID
	default:
		return "/dashboard"
	}
}

// ParseRoute maps a path to a route. Unknown paths and a project path
// without an id resolve to the dashboard.
func ParseRoute(path string) Route {
	path = strings.Trim(strings.TrimSpace(path), "/")
	switch {
	case path == "login":
		return LoginRoute
	case path == "register":
		return RegisterRoute
	case strings.HasPrefix(path, "projects/"):
		id := strings.TrimPrefix(path, "projects/")
		if id != "" && !strings.Contains(id, "/") {
			return ProjectRoute(id)
		}
	}
	return DashboardRoute
}
