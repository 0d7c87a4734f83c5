package main

import (
	"net"

	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web form and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = c.cfg.Server.Port
			}

			server, err := c.deps.WebServer()
			if err != nil {
				return err
			}

			return server.Run(cmd.Context(), net.JoinHostPort("", port), c.cfg.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default from config)")

	return cmd
}
