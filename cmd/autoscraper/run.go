package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"autoscraper/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run [url]",
	Short: "Run a stored scraper against a URL",
	Long: `Looks up the stored scraper matching the URL's domain and runs it,
printing the extracted fields as JSON. With --pipeline the URL is treated
as a listing page and the domain's full list+content pipeline runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var (
	runPipelineFlag bool
	runLimit        int
)

func init() {
	runCmd.Flags().BoolVar(&runPipelineFlag, "pipeline", false, "Run the domain's list+content pipeline")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "Max listed URLs to extract in pipeline mode (0 = all)")
}

func runRun(cmd *cobra.Command, args []string) error {
	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	ctx := context.Background()
	defer application.Close(ctx)

	if runPipelineFlag {
		record, err := application.Repository.GetByURL(ctx, args[0])
		if err != nil {
			return fmt.Errorf("no stored scraper matches %s: %w", args[0], err)
		}
		run, err := application.Runner.RunPipeline(ctx, record.Domain, args[0], runLimit)
		if run != nil {
			printJSON(run)
		}
		return err
	}

	extraction, err := application.Runner.Run(ctx, args[0])
	if err != nil {
		return err
	}
	printJSON(extraction)
	if !extraction.Complete {
		return fmt.Errorf("extraction incomplete for %s", args[0])
	}
	return nil
}

func printJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logger.Warn().Err(err).Msg("Failed to encode output")
	}
}
