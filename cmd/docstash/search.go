package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search documents by title, description, and recognized text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			docs, err := svc.Search(ctx, args[0])
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return outputJSON(cmd, docs)
			case "table":
				if len(docs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No documents matched.")
					return nil
				}
				outputTable(cmd, docs)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}
