package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"autoscraper/internal/app"
	"autoscraper/internal/models"
)

var scrapersCmd = &cobra.Command{
	Use:   "scrapers [domain]",
	Short: "List stored scrapers, or show one domain's scraper",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScrapers,
}

var (
	scrapersKind     string
	scrapersPipeline bool
)

func init() {
	scrapersCmd.Flags().StringVar(&scrapersKind, "kind", "", "Scraper kind to show: content or list")
	scrapersCmd.Flags().BoolVar(&scrapersPipeline, "pipeline", false, "Show both halves of the domain's pipeline")
}

func runScrapers(cmd *cobra.Command, args []string) error {
	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	ctx := context.Background()
	defer application.Close(ctx)

	if len(args) == 0 {
		records, err := application.Repository.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list scrapers: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No scrapers stored")
			return nil
		}
		for _, record := range records {
			link := ""
			if record.PipelineLink != "" {
				link = "  (pipeline)"
			}
			fmt.Printf("%-30s %-8s v%-3s last validated %s%s\n",
				record.Domain, record.Kind, record.Version,
				record.LastValidated.Format("2006-01-02 15:04"), link)
		}
		return nil
	}

	domain := args[0]

	if scrapersPipeline {
		list, content, err := application.Repository.GetPipeline(ctx, domain)
		if err != nil {
			return fmt.Errorf("no complete pipeline for %s: %w", domain, err)
		}
		fmt.Printf("Pipeline for %s\n", domain)
		printJSON(list)
		printJSON(content)
		return nil
	}

	var record *models.ScraperRecord
	if scrapersKind != "" {
		record, err = application.Repository.GetKind(ctx, domain, models.ScraperKind(scrapersKind))
	} else {
		record, err = application.Repository.Get(ctx, domain)
	}
	if err != nil {
		return fmt.Errorf("no scraper for %s: %w", domain, err)
	}

	printJSON(record)
	fmt.Println()
	fmt.Println(record.Source)
	return nil
}
