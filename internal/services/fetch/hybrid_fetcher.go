package fetch

import (
	"context"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/models"
)

// HybridFetcher tries a fast static fetch first and escalates to a headless
// browser when the response looks like a JavaScript-rendered shell
type HybridFetcher struct {
	static      *StaticFetcher
	browser     *ChromedpFetcher
	limiter     *RateLimiter
	minHTMLSize int
	alwaysJS    bool
	logger      arbor.ILogger
}

// NewHybridFetcher creates a fetcher combining static and browser strategies
func NewHybridFetcher(config common.FetchConfig, logger arbor.ILogger) *HybridFetcher {
	return &HybridFetcher{
		static:      NewStaticFetcher(config, logger),
		browser:     NewChromedpFetcher(config, logger),
		limiter:     NewRateLimiter(config.RequestsPerSecond, config.Burst),
		minHTMLSize: config.MinHTMLSize,
		alwaysJS:    config.EnableJavaScript,
		logger:      logger,
	}
}

// Fetch retrieves the page, preferring the static client unless JavaScript
// rendering is forced or the static body is too small to be the real page
func (f *HybridFetcher) Fetch(ctx context.Context, url string) (*models.Page, error) {
	if err := f.limiter.Wait(ctx, url); err != nil {
		return nil, err
	}

	if f.alwaysJS {
		return f.browser.Fetch(ctx, url)
	}

	page, err := f.static.Fetch(ctx, url)
	if err != nil {
		f.logger.Debug().Err(err).Str("url", url).Msg("Static fetch failed, falling back to browser")
		return f.browser.Fetch(ctx, url)
	}

	if len(page.HTML) < f.minHTMLSize {
		f.logger.Debug().
			Str("url", url).
			Int("size", len(page.HTML)).
			Int("min_size", f.minHTMLSize).
			Msg("Static HTML below threshold, re-fetching with browser")
		return f.browser.Fetch(ctx, url)
	}

	return page, nil
}
