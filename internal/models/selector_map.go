package models

import "sort"

// ExtractionKind identifies how a field rule pulls data out of matched elements
type ExtractionKind string

const (
	ExtractionText      ExtractionKind = "text"      // Element text content
	ExtractionAttribute ExtractionKind = "attribute" // A named attribute (href, datetime, content)
	ExtractionURLList   ExtractionKind = "url_list"  // All matching hrefs, resolved to absolute URLs
)

// FieldRule describes where a single field lives on a page
type FieldRule struct {
	Selector  string         `json:"selector"`
	Attribute string         `json:"attribute,omitempty"`
	Kind      ExtractionKind `json:"kind"`
}

// SelectorMap is the analyst's structured description of where the requested
// fields live on a page. Superseded wholesale on each re-analysis; prior maps
// stay attached to the session history for debugging.
type SelectorMap struct {
	SiteName string               `json:"site_name,omitempty"`
	Fields   map[string]FieldRule `json:"fields"`
	Notes    string               `json:"notes,omitempty"`
}

// FieldNames returns the mapped field names in stable (sorted) order
func (m *SelectorMap) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScraperArtifact is generated source text implementing the extraction logic
// described by a SelectorMap. Immutable once validated; failed artifacts are
// discarded, never persisted.
type ScraperArtifact struct {
	Source   string      `json:"source"`
	Language string      `json:"language"` // Always "javascript" for browser-executed artifacts
	Map      SelectorMap `json:"selector_map"`
}
