package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/docstash/docstash/internal/logging"
	"github.com/docstash/docstash/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start the Model Context Protocol server for docstash",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout belongs to the MCP transport; log to stderr.
			server, err := mcp.NewServer(logging.NewDefault(os.Stderr))
			if err != nil {
				return err
			}

			ctx := context.Background()
			return server.Run(ctx)
		},
	}

	return cmd
}
