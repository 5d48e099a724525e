package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfwise/librarian/internal/app"
	"github.com/shelfwise/librarian/internal/catalog"
	"github.com/shelfwise/librarian/internal/config"
	"github.com/shelfwise/librarian/internal/log"
)

var catalogPath string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the catalog file",
	Long: `Reads the catalog JSON file, embeds each item's short profile, and
replaces the vector index contents in a single transaction.

Do not run two index jobs concurrently; concurrent reads are safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(cmd.Context())
	},
}

func init() {
	indexCmd.Flags().StringVar(&catalogPath, "catalog", "", "path to the catalog JSON file (default from config)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{Level: cfg.SlogLevel(), JSON: cfg.LogJSON})

	path := catalogPath
	if path == "" {
		path = cfg.CatalogPath
	}

	items, err := catalog.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	if err := a.NewIndexer().Run(ctx, items); err != nil {
		return err
	}

	fmt.Printf("Indexed %d items from %s\n", len(items), path)
	return nil
}
