package models

// ScraperKind identifies what a scraper extracts
type ScraperKind string

const (
	// ScraperKindContent extracts named data fields from a single page
	ScraperKindContent ScraperKind = "content"
	// ScraperKindList extracts an ordered sequence of links from an index page
	ScraperKindList ScraperKind = "list"
)

// BuildRequest is the immutable input to one refinement loop session.
// Created once per CLI/API invocation and never mutated.
type BuildRequest struct {
	URL    string      `json:"url" validate:"required,url"`
	Prompt string      `json:"prompt" validate:"required"`
	Kind   ScraperKind `json:"kind" validate:"required,oneof=content list"`
}
