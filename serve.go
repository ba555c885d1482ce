package main

import "github.com/spf13/cobra"

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an in-memory development API server",
		Long: `Run a local implementation of the ProjectHub API backed by memory.
Data is lost when the server stops. Point the client at it with
--api-url http://localhost:8080 (or api_url in the config file).

Example:
  projecthub serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.newApp()
			if err != nil {
				return err
			}
			return a.Serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr from config)")
	return cmd
}
