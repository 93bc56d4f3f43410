package models

import (
	"strings"
	"time"
)

// ScraperRecord is the persisted repository entity: one validated scraper for
// a (domain, kind) pair. At most one content and one list record exist per
// domain; regeneration replaces the prior record wholesale.
type ScraperRecord struct {
	Domain     string      `json:"domain"`
	SiteName   string      `json:"site_name,omitempty"`
	Kind       ScraperKind `json:"scraper_kind"`
	Source     string      `json:"-"` // Stored as a separate blob next to the metadata
	Language   string      `json:"language"`
	URLPattern string      `json:"url_pattern"`
	ExampleURL string      `json:"example_url"`
	Fields     []string    `json:"fields"`
	Selectors  SelectorMap `json:"selectors"`

	// PipelineLink references the companion record of the other kind for the
	// same domain, set bidirectionally when both halves exist
	PipelineLink string `json:"pipeline_link,omitempty"`

	CreatedAt     time.Time `json:"created_at"`
	LastValidated time.Time `json:"last_validated"`
	Version       string    `json:"version"`
}

// RecordKey returns the storage key base for a (domain, kind) pair,
// e.g. "example_com_content"
func RecordKey(domain string, kind ScraperKind) string {
	replacer := strings.NewReplacer(".", "_", ":", "_")
	return replacer.Replace(domain) + "_" + string(kind)
}

// OppositeKind returns the companion kind in a two-stage pipeline
func OppositeKind(kind ScraperKind) ScraperKind {
	if kind == ScraperKindList {
		return ScraperKindContent
	}
	return ScraperKindList
}
