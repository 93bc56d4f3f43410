package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
)

// ChromedpSandbox runs generated scraper artifacts inside a headless Chrome
// page. The artifact is evaluated in the page context after navigation, so
// it sees the same DOM a real visitor would.
type ChromedpSandbox struct {
	config      common.SandboxConfig
	fetchConfig common.FetchConfig
	logger      arbor.ILogger
}

// NewChromedpSandbox creates a browser-backed artifact executor
func NewChromedpSandbox(config common.SandboxConfig, fetchConfig common.FetchConfig, logger arbor.ILogger) *ChromedpSandbox {
	return &ChromedpSandbox{
		config:      config,
		fetchConfig: fetchConfig,
		logger:      logger,
	}
}

func (s *ChromedpSandbox) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.UserAgent(s.fetchConfig.UserAgent),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)
	if s.config.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}
	if s.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if s.config.DisableGPU {
		opts = append(opts, chromedp.Flag("disable-gpu", true))
	}
	return opts
}

// Execute navigates to the URL, waits for the page to render, and evaluates
// the artifact in the page. A runtime failure inside the artifact comes back
// through the result's "__error" entry; an error return means the browser
// itself failed.
func (s *ChromedpSandbox) Execute(ctx context.Context, source string, url string) (map[string]interface{}, error) {
	execCtx, cancel := context.WithTimeout(ctx, s.config.ExecutionTimeout)
	defer cancel()

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(execCtx, s.allocatorOptions()...)
	defer allocatorCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	defer browserCancel()

	start := time.Now()
	s.logger.Debug().Str("url", url).Msg("Executing artifact in sandbox")

	var result map[string]interface{}
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(s.fetchConfig.JavaScriptWaitTime),
		chromedp.Evaluate(wrapArtifact(source), &result),
	)
	if err != nil {
		return nil, fmt.Errorf("sandbox execution failed for %s: %w", url, err)
	}
	if result == nil {
		return nil, fmt.Errorf("sandbox returned no result for %s", url)
	}

	s.logger.Debug().
		Str("url", url).
		Dur("duration", time.Since(start)).
		Int("keys", len(result)).
		Msg("Artifact execution completed")

	return result, nil
}
