package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle a document's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			on, err := svc.ToggleFavorite(ctx, args[0])
			if err != nil {
				return err
			}

			if on {
				fmt.Fprintln(cmd.OutOrStdout(), "Marked as favorite")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Removed from favorites")
			}
			return nil
		},
	}

	return cmd
}
