package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"autoscraper/internal/app"
	"autoscraper/internal/models"
	"autoscraper/internal/orchestrator"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [list-url]",
	Short: "Build a list+content scraper pipeline",
	Long: `Builds the two-stage pipeline for a site: a list scraper that collects
article URLs from the given listing page, and a content scraper built
against one of the listed articles.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

var (
	pipelinePrompt    string
	pipelineSampleURL string
)

func init() {
	pipelineCmd.Flags().StringVar(&pipelinePrompt, "prompt", "", "Description of the fields to extract from articles (required)")
	pipelineCmd.Flags().StringVar(&pipelineSampleURL, "sample-url", "", "Article URL to build the content scraper against (defaults to the first listed URL)")
	pipelineCmd.MarkFlagRequired("prompt")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	ctx := context.Background()
	defer application.Close(ctx)

	request := orchestrator.PipelineRequest{
		ListURL:   args[0],
		Prompt:    pipelinePrompt,
		SampleURL: pipelineSampleURL,
	}

	result, err := application.PipelineBuilder.Build(ctx, request)
	if err != nil {
		if result != nil {
			if result.ListSession != nil && result.ListSession.Status != models.SessionSucceeded {
				printHistory(result.ListSession)
			}
			if result.ContentSession != nil && result.ContentSession.Status != models.SessionSucceeded {
				printHistory(result.ContentSession)
			}
		}
		return fmt.Errorf("pipeline build failed: %w", err)
	}

	fmt.Printf("Pipeline built for %s\n", result.ListSession.Request.URL)
	fmt.Printf("  list scraper:    %d iteration(s)\n", result.ListSession.Iteration+1)
	fmt.Printf("  content scraper: %d iteration(s)\n", result.ContentSession.Iteration+1)
	if result.CrossValidated != "" {
		fmt.Printf("  cross-validated against %s\n", result.CrossValidated)
	}
	return nil
}
