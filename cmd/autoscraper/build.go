package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"autoscraper/internal/app"
	"autoscraper/internal/models"
)

var buildCmd = &cobra.Command{
	Use:   "build [url]",
	Short: "Build a scraper for a page",
	Long: `Builds a scraper for the given page, refining it against the live page
until every requested field extracts, then saves it to the repository.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

var (
	buildPrompt string
	buildKind   string
)

func init() {
	buildCmd.Flags().StringVar(&buildPrompt, "prompt", "", "Description of the fields to extract (required)")
	buildCmd.Flags().StringVar(&buildKind, "kind", string(models.ScraperKindContent), "Scraper kind: content or list")
	buildCmd.MarkFlagRequired("prompt")
}

func runBuild(cmd *cobra.Command, args []string) error {
	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	ctx := context.Background()
	defer application.Close(ctx)

	request := models.BuildRequest{
		URL:    args[0],
		Prompt: buildPrompt,
		Kind:   models.ScraperKind(buildKind),
	}

	session, err := application.Orchestrator.Run(ctx, request)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if session.Status != models.SessionSucceeded {
		printHistory(session)
		return fmt.Errorf("scraper generation failed after %d iteration(s): %s", session.Iteration, session.FailureReason)
	}

	fmt.Printf("Scraper built in %d iteration(s)\n", session.Iteration+1)
	printHistory(session)
	fmt.Println()
	fmt.Println(session.Artifact.Source)
	return nil
}

func printHistory(session *models.BuildSession) {
	for i, attempt := range session.History {
		status := "pass"
		detail := ""
		if attempt.Result.Status != models.ValidationPass {
			status = "fail"
			detail = " " + attempt.Result.Detail
			if attempt.Classification != nil {
				detail = fmt.Sprintf(" [%s -> %s]%s", attempt.Classification.Kind, attempt.Classification.Route, detail)
			}
		}
		fmt.Printf("  attempt %d: %s%s\n", i+1, status, detail)
	}
}
