package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/screen"
)

func projectsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "projects",
		Aliases: []string{"ls"},
		Short:   "Print your projects and statistics",
		Long: `Print the dashboard summary: statistics followed by every project
you belong to, newest first.

Example:
  projecthub projects`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.newApp()
			if err != nil {
				return err
			}
			data, err := a.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), data)
			return nil
		},
	}
}

func printDashboard(w io.Writer, data *screen.DashboardData) {
	s := data.Stats
	fmt.Fprintf(w, "Welcome, %s\n\n", data.User.Name)
	fmt.Fprintf(w, "Projects: %d (%d active, %d completed)  Tasks: %d\n\n",
		s.TotalProjects, s.ActiveProjects, s.CompletedProjects, s.TotalTasks)

	if len(data.Projects) == 0 {
		fmt.Fprintln(w, "No projects yet")
		return
	}
	for _, p := range data.Projects {
		fmt.Fprintf(w, "  %s %s  (%s, %d tasks)  %s\n",
			statusIcon(p.Status), p.Name, p.UserRole, p.TaskCount, p.ID)
	}
}

func statusIcon(status api.ProjectStatus) string {
	if status == api.ProjectCompleted {
		return "[x]"
	}
	return "[ ]"
}
