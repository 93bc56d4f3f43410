package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/models"
)

// StaticFetcher retrieves pages over plain HTTP with Colly. Fast path for
// server-rendered sites; the hybrid fetcher falls through to the browser when
// the static response looks incomplete.
type StaticFetcher struct {
	collector *colly.Collector
	config    common.FetchConfig
	logger    arbor.ILogger
}

// NewStaticFetcher creates a Colly-backed page fetcher
func NewStaticFetcher(config common.FetchConfig, logger arbor.ILogger) *StaticFetcher {
	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(config.RequestTimeout)

	return &StaticFetcher{
		collector: c,
		config:    config,
		logger:    logger,
	}
}

// Fetch retrieves the URL without JavaScript rendering
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (*models.Page, error) {
	// Clone to avoid handler accumulation across fetches
	c := f.collector.Clone()

	var html []byte
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	})

	c.OnResponse(func(r *colly.Response) {
		html = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("static fetch of %s failed (status %d): %w", url, status, err)
	})

	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("static fetch of %s failed: %w", url, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(html) == 0 {
		return nil, fmt.Errorf("static fetch of %s returned an empty body", url)
	}

	f.logger.Debug().
		Str("url", url).
		Int("html_size", len(html)).
		Msg("Page fetched statically")

	return &models.Page{
		URL:       url,
		HTML:      string(html),
		Renderer:  "static",
		FetchedAt: time.Now(),
	}, nil
}
