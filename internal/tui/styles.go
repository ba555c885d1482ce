// Package tui provides the Bubble Tea TUI for ProjectHub.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gerunddev/projecthub/internal/api"
)

// =============================================================================
// COLOR PALETTE - Monokai Pro with depth-through-intensity
// =============================================================================

var (
	colorForeground = lipgloss.Color("#fcfcfa")

	// Cyan family (links, selection)
	colorCyan      = lipgloss.Color("#78dce8")
	colorCyanLight = lipgloss.Color("#a1eaf8")

	// Green family (success, completed)
	colorGreen = lipgloss.Color("#a9dc76")

	// Yellow family (focus, attention)
	colorYellow = lipgloss.Color("#ffd866")

	// Orange family (in progress)
	colorOrange = lipgloss.Color("#fc9867")

	// Red family (errors only)
	colorRed      = lipgloss.Color("#ff6188")
	colorRedLight = lipgloss.Color("#ff97ab")

	// Magenta family (structure, owner badge)
	colorMagenta      = lipgloss.Color("#ab9df2")
	colorMagentaLight = lipgloss.Color("#c9bff7")

	// Neutral family
	colorGray    = lipgloss.Color("#727072")
	colorDimGray = lipgloss.Color("#5b595c")
)

// =============================================================================
// LAYOUT STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorMagenta).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorDimGray).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorForeground).
			Bold(true)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)
)

// =============================================================================
// LIST STYLES
// =============================================================================

var (
	cursorStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorCyanLight).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(colorForeground)
)

// =============================================================================
// STATUS STYLES
// =============================================================================

var (
	statusActiveStyle = lipgloss.NewStyle().
				Foreground(colorCyan).
				Bold(true)

	statusInProgressStyle = lipgloss.NewStyle().
				Foreground(colorOrange).
				Bold(true)

	statusCompletedStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	statusPendingStyle = lipgloss.NewStyle().
				Foreground(colorGray)

	ownerBadgeStyle = lipgloss.NewStyle().
			Foreground(colorMagentaLight)

	memberBadgeStyle = lipgloss.NewStyle().
				Foreground(colorGray)
)

// =============================================================================
// FORM AND MODAL STYLES
// =============================================================================

var (
	modalStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(colorGreen).
			Padding(0, 1)

	dangerModalStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.DoubleBorder()).
				BorderForeground(colorRed).
				Padding(0, 1)

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Width(14)

	fieldFocusedLabelStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true).
				Width(14)
)

// =============================================================================
// HELP AND ERROR STYLES
// =============================================================================

var (
	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	errorMessageStyle = lipgloss.NewStyle().
				Foreground(colorRedLight)
)

// projectStatusBadge renders a project status.
func projectStatusBadge(s api.ProjectStatus) string {
	switch s {
	case api.ProjectActive:
		return statusActiveStyle.Render("[active]")
	case api.ProjectCompleted:
		return statusCompletedStyle.Render("[completed]")
	default:
		return statusPendingStyle.Render("[" + string(s) + "]")
	}
}

// taskStatusBadge renders a task status.
func taskStatusBadge(s api.TaskStatus) string {
	switch s {
	case api.TaskPending:
		return statusPendingStyle.Render("[pending]")
	case api.TaskInProgress:
		return statusInProgressStyle.Render("[in progress]")
	case api.TaskCompleted:
		return statusCompletedStyle.Render("[completed]")
	default:
		return statusPendingStyle.Render("[" + string(s) + "]")
	}
}

// roleBadge renders the viewer's role in a project.
func roleBadge(r api.Role) string {
	if r == api.RoleOwner {
		return ownerBadgeStyle.Render("owner")
	}
	return memberBadgeStyle.Render("member")
}
