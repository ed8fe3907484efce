package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newMoveCmd() *cobra.Command {
	var toRoot bool

	cmd := &cobra.Command{
		Use:   "move <id> [folder-id]",
		Short: "Move a document into a folder",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var folderID *string
			switch {
			case toRoot && len(args) == 2:
				return errors.New("--root and a folder id are mutually exclusive")
			case toRoot:
			case len(args) == 2:
				folderID = &args[1]
			default:
				return errors.New("provide a folder id or --root")
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.MoveToFolder(ctx, args[0], folderID); err != nil {
				return err
			}

			if folderID == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Moved to root")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Moved to folder %s\n", *folderID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&toRoot, "root", false, "Move the document out of any folder")

	return cmd
}
