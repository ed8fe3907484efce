package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newRebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the full-text search index from the stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.RebuildSearchIndex(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Search index rebuilt (capability: %s)\n", svc.SearchCapability())
			return nil
		},
	}

	return cmd
}
