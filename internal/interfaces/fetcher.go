package interfaces

import (
	"context"

	"autoscraper/internal/models"
)

// PageFetcher retrieves rendered HTML for a URL. Implementations block until
// the page is loaded or the fetch times out.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*models.Page, error)
}

// Sandbox executes a generated scraper artifact against a URL inside an
// isolated environment and returns the decoded result object. A runtime
// failure inside the artifact is reported through the result's "__error"
// entry; an error return means the sandbox itself failed (navigation,
// timeout, browser unavailable).
type Sandbox interface {
	Execute(ctx context.Context, source string, url string) (map[string]interface{}, error)
}
