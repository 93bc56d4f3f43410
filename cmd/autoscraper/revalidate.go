package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"autoscraper/internal/app"
)

var revalidateCmd = &cobra.Command{
	Use:   "revalidate",
	Short: "Re-test stored scrapers against their example URLs",
	RunE:  runRevalidate,
}

func runRevalidate(cmd *cobra.Command, args []string) error {
	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	ctx := context.Background()
	defer application.Close(ctx)

	summary, err := application.Revalidation.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("revalidation failed: %w", err)
	}

	fmt.Printf("Revalidated %d scraper(s): %d passed, %d failed\n",
		summary.Checked, summary.Passed, summary.Failed)
	return nil
}
