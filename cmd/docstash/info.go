package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <id>",
		Short: "Show a document's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if doc == nil {
				return fmt.Errorf("document not found: %s", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:            %s\n", doc.ID)
			fmt.Fprintf(out, "Title:         %s\n", doc.Title)
			if doc.Description != nil {
				fmt.Fprintf(out, "Description:   %s\n", *doc.Description)
			}
			fmt.Fprintf(out, "Original file: %s\n", doc.OriginalFileName)
			fmt.Fprintf(out, "MIME type:     %s\n", doc.MimeType)
			fmt.Fprintf(out, "Pages:         %d\n", doc.PageCount)
			fmt.Fprintf(out, "Size:          %d bytes\n", doc.FileSize)
			fmt.Fprintf(out, "OCR status:    %s\n", doc.OCRStatus)
			fmt.Fprintf(out, "Created:       %s\n", doc.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "Updated:       %s\n", doc.UpdatedAt.Format(time.RFC3339))
			if doc.FolderID != nil {
				fmt.Fprintf(out, "Folder:        %s\n", *doc.FolderID)
			}
			fmt.Fprintf(out, "Favorite:      %t\n", doc.IsFavorite)
			if len(doc.TagIDs) > 0 {
				fmt.Fprintf(out, "Tags:          %s\n", strings.Join(doc.TagIDs, ", "))
			}
			return nil
		},
	}

	return cmd
}
