package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/models"
)

// ChromedpFetcher renders pages in a headless Chrome instance so that
// JavaScript-driven sites produce complete HTML
type ChromedpFetcher struct {
	config common.FetchConfig
	logger arbor.ILogger
}

// NewChromedpFetcher creates a browser-rendering page fetcher
func NewChromedpFetcher(config common.FetchConfig, logger arbor.ILogger) *ChromedpFetcher {
	return &ChromedpFetcher{
		config: config,
		logger: logger,
	}
}

// allocatorOptions builds the Chrome launch flags. Stealth flags mirror what
// real browsers present so automation-hostile sites still render.
func (f *ChromedpFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	return append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.UserAgent(f.config.UserAgent),
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.WindowSize(1920, 1080),
	)
}

// Fetch navigates to the URL, waits for JavaScript to settle, and returns the
// rendered HTML
func (f *ChromedpFetcher) Fetch(ctx context.Context, url string) (*models.Page, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.config.RequestTimeout)
	defer cancel()

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(fetchCtx, f.allocatorOptions()...)
	defer allocatorCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	defer browserCancel()

	headers := network.Headers{
		"Accept-Language": "en-US,en;q=0.9",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	}

	f.logger.Debug().Str("url", url).Msg("Rendering page with headless Chrome")

	var html string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(url),
		chromedp.Sleep(f.config.JavaScriptWaitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", url, err)
	}

	if len(html) < 100 {
		return nil, fmt.Errorf("rendered HTML for %s is too short (%d chars), page may have failed to load", url, len(html))
	}

	f.logger.Debug().
		Str("url", url).
		Int("html_size", len(html)).
		Msg("Page rendered")

	return &models.Page{
		URL:       url,
		HTML:      html,
		Renderer:  "chromedp",
		FetchedAt: time.Now(),
	}, nil
}
