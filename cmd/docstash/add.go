package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docstash/docstash/internal/services"
)

func newAddCmd() *cobra.Command {
	var (
		description string
		thumbnail   string
		folderID    string
		mimeType    string
	)

	cmd := &cobra.Command{
		Use:   "add <title> <page-file>...",
		Short: "Add a document from scanned page files",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := args[0]
			pages := args[1:]

			if strings.TrimSpace(title) == "" {
				return errors.New("title must not be blank")
			}

			input := services.AddDocumentInput{
				Title:            title,
				SourcePagePaths:  pages,
				OriginalFileName: filepath.Base(pages[0]),
				MimeType:         resolveMimeType(mimeType, pages[0]),
			}
			if strings.TrimSpace(description) != "" {
				d := description
				input.Description = &d
			}
			if thumbnail != "" {
				t := thumbnail
				input.SourceThumbnail = &t
			}
			if folderID != "" {
				f := folderID
				input.FolderID = &f
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := svc.Add(ctx, input)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Add description metadata")
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "Thumbnail image file to encrypt and store")
	cmd.Flags().StringVar(&folderID, "folder", "", "Folder id to file the document under")
	cmd.Flags().StringVar(&mimeType, "mime", "", "MIME type (detected from the first page extension when omitted)")

	return cmd
}

func resolveMimeType(explicit, firstPage string) string {
	if explicit != "" {
		return explicit
	}
	if detected := mime.TypeByExtension(filepath.Ext(firstPage)); detected != "" {
		return detected
	}
	return "application/octet-stream"
}
