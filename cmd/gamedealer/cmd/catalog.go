package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamedealer/gamedealer/internal/catalog"
	"github.com/gamedealer/gamedealer/internal/config"
	"github.com/gamedealer/gamedealer/pkg/logger"
)

func catalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show curated catalog statistics",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCatalog()
		},
	}
}

func runCatalog() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := catalog.Load(cfg.Catalog.Path, catalog.WithLogger(logger.Nop()))
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	stats := store.Stats()
	if jsonOutput() {
		return outputJSON(stats)
	}
	return printCatalogStats(stats)
}
