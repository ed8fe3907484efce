package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docstash/docstash/internal/config"
	"github.com/docstash/docstash/internal/cryptox"
	"github.com/docstash/docstash/internal/database"
	"github.com/docstash/docstash/internal/logging"
	"github.com/docstash/docstash/internal/services"
	"github.com/docstash/docstash/internal/settings"
)

var rootCmd = &cobra.Command{
	Use:   "docstash",
	Short: "docstash - An encrypted local store for scanned documents",
	Long:  "docstash keeps scanned documents encrypted on disk with full-text search over titles, descriptions, and recognized text.",
}

func init() {
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newTagCmd())
	rootCmd.AddCommand(newFavoriteCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newRebuildCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// openService wires the database, settings store, and encryption service and
// runs first-time initialization. The returned cleanup closes the database.
func openService(ctx context.Context) (*services.DocumentService, func(), error) {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = database.CloseDatabase(dbCtx)
	}

	store, err := settings.Open(config.GetSettingsPath())
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	svc := services.NewDocumentService(dbCtx, cryptox.NewService(store), logging.NewDefault(nil))
	if _, err := svc.Initialize(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}

	return svc, cleanup, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docstash version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
