// Package main is the entry point for the ProjectHub CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/app"
	"github.com/gerunddev/projecthub/internal/screen"
)

// appFactory is the function used to create a new app.App.
// It can be replaced in tests to mock app creation.
var appFactory = defaultAppFactory

// defaultAppFactory is the production app factory implementation.
func defaultAppFactory(cfg app.Config) (App, error) {
	return app.New(cfg)
}

// App interface defines the methods needed from app.App for testing.
type App interface {
	Run(ctx context.Context, route string) error
	Login(ctx context.Context, email, password string) (*api.User, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*api.User, error)
	Dashboard(ctx context.Context) (*screen.DashboardData, error)
	Serve(ctx context.Context, addr string) error
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	apiURL     string
}

func (g *globalFlags) newApp() (App, error) {
	return appFactory(app.Config{
		ConfigPath:     g.configPath,
		APIURLOverride: g.apiURL,
	})
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	var route string

	rootCmd := &cobra.Command{
		Use:   "projecthub",
		Short: "Terminal client for ProjectHub projects and tasks",
		Long: `ProjectHub is a terminal client for a small project/task service.
Without a subcommand it opens the interactive UI. Protected screens
redirect to the login screen when there is no valid session.

Examples:
  projecthub                          # Open the dashboard
  projecthub --route /projects/abc123 # Open a project directly
  projecthub login --email me@example.com
  projecthub projects                 # Print the dashboard summary
  projecthub serve                    # Run a local development API`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.newApp()
			if err != nil {
				return err
			}
			return a.Run(cmd.Context(), route)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"Config file (default ~/.config/projecthub/config.json)")
	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "",
		"Override the API base URL")
	rootCmd.Flags().StringVarP(&route, "route", "r", screen.DashboardRoute.String(),
		"Screen to open: /dashboard, /login, /register or /projects/<id>")

	rootCmd.AddCommand(loginCmd(flags))
	rootCmd.AddCommand(logoutCmd(flags))
	rootCmd.AddCommand(whoamiCmd(flags))
	rootCmd.AddCommand(projectsCmd(flags))
	rootCmd.AddCommand(serveCmd(flags))

	return rootCmd
}
