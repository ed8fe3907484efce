package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/docstash/docstash/internal/database"
)

func newListCmd() *cobra.Command {
	var (
		format    string
		folderID  string
		favorites bool
		tagID     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var docs []database.DocumentRecord
			switch {
			case tagID != "":
				docs, err = svc.GetByTag(ctx, tagID)
			case favorites:
				docs, err = svc.GetFavorites(ctx)
			case folderID != "":
				docs, err = svc.GetInFolder(ctx, &folderID)
			default:
				docs, err = svc.GetAll(ctx, database.ListOptions{})
			}
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return outputJSON(cmd, docs)
			case "table":
				outputTable(cmd, docs)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVar(&folderID, "folder", "", "List documents in a specific folder")
	cmd.Flags().BoolVar(&favorites, "favorites", false, "List only favorite documents")
	cmd.Flags().StringVar(&tagID, "tag", "", "List documents carrying a tag")

	return cmd
}

type listOutputEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Pages       int64    `json:"pages"`
	OCRStatus   string   `json:"ocr_status"`
	Created     string   `json:"created"`
	FolderID    *string  `json:"folder_id,omitempty"`
	Favorite    *bool    `json:"favorite,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func outputJSON(cmd *cobra.Command, docs []database.DocumentRecord) error {
	var output []listOutputEntry

	for _, doc := range docs {
		item := listOutputEntry{
			ID:          doc.ID,
			Title:       doc.Title,
			Description: doc.Description,
			Pages:       doc.PageCount,
			OCRStatus:   string(doc.OCRStatus),
			Created:     doc.CreatedAt.Format(time.RFC3339),
			FolderID:    doc.FolderID,
			Tags:        doc.TagIDs,
		}
		if doc.IsFavorite {
			fav := true
			item.Favorite = &fav
		}
		output = append(output, item)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func getTerminalWidth() int {
	// Try to get terminal width from stdout
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	// Default width if terminal size cannot be determined
	return 80
}

func outputTable(cmd *cobra.Command, docs []database.DocumentRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	// Title and description get whatever the fixed columns leave over; the
	// id column always shows the full uuid so it can be copied.
	termWidth := getTerminalWidth()
	fixed := 36 + 5 + 9 + 19 + 6*3 // id, pages, status, created, borders
	titleWidth := (termWidth - fixed) / 2
	if titleWidth < 12 {
		titleWidth = 12
	}
	descWidth := termWidth - fixed - titleWidth
	if descWidth < 12 {
		descWidth = 12
	}

	t.AppendHeader(table.Row{"ID", "Title", "Pages", "OCR", "Created", "Description"})

	for _, doc := range docs {
		description := ""
		if doc.Description != nil {
			description = *doc.Description
		}

		title := doc.Title
		if doc.IsFavorite {
			title = "* " + title
		}

		t.AppendRow(table.Row{
			doc.ID,
			runewidth.Truncate(title, titleWidth, "..."),
			doc.PageCount,
			string(doc.OCRStatus),
			doc.CreatedAt.Format("2006-01-02 15:04:05"),
			runewidth.Truncate(description, descWidth, "..."),
		})
	}

	t.Render()
}
