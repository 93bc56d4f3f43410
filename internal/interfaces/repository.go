package interfaces

import (
	"context"
	"errors"
	"time"

	"autoscraper/internal/models"
)

var (
	// ErrScraperNotFound is returned when no record exists for a domain
	ErrScraperNotFound = errors.New("no scraper found for domain")

	// ErrIncompletePipeline is returned when a domain is missing either the
	// list or content half of a two-stage pipeline
	ErrIncompletePipeline = errors.New("incomplete scraper pipeline for domain")
)

// ScraperRepository is the persistent store of validated scraper artifacts,
// keyed by domain. Save is the only mutator; all reads are pure lookups.
type ScraperRepository interface {
	// Save upserts a record by (domain, kind). When a record of the opposite
	// kind exists for the same domain, both records' pipeline links are set.
	// Atomic per domain key; concurrent saves to different domains do not
	// interfere.
	Save(ctx context.Context, record *models.ScraperRecord) error

	// Get returns the record for a domain, preferring the content kind when
	// both exist. Fails with ErrScraperNotFound when absent.
	Get(ctx context.Context, domain string) (*models.ScraperRecord, error)

	// GetKind returns the record of a specific kind for a domain
	GetKind(ctx context.Context, domain string, kind models.ScraperKind) (*models.ScraperRecord, error)

	// GetByURL derives the domain from the URL's host and delegates to Get,
	// falling back to url_pattern matching across stored metadata
	GetByURL(ctx context.Context, url string) (*models.ScraperRecord, error)

	// GetPipeline returns the linked (list, content) pair for a domain.
	// Fails with ErrIncompletePipeline when either side is missing.
	GetPipeline(ctx context.Context, domain string) (list, content *models.ScraperRecord, err error)

	// List returns all records ordered by domain
	List(ctx context.Context) ([]*models.ScraperRecord, error)

	// TouchValidated refreshes a record's last_validated timestamp
	TouchValidated(ctx context.Context, domain string, kind models.ScraperKind, at time.Time) error
}
