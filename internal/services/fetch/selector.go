package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"autoscraper/internal/models"
)

const maxSampleLength = 200

// SelectorReport describes what a CSS selector matched in a document
type SelectorReport struct {
	Selector   string   `json:"selector"`
	Attribute  string   `json:"attribute,omitempty"`
	MatchCount int      `json:"match_count"`
	Samples    []string `json:"samples,omitempty"`
}

// Matched reports whether the selector found at least one element
func (r *SelectorReport) Matched() bool {
	return r.MatchCount > 0
}

// TestSelector runs a CSS selector against HTML and reports the match count
// and sample extracted values, so selectors can be verified before a selector
// map is handed to the coder
func TestSelector(html, selector, attribute string) (*SelectorReport, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	report := &SelectorReport{
		Selector:  selector,
		Attribute: attribute,
	}

	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		report.MatchCount++
		if len(report.Samples) >= 3 {
			return
		}

		var value string
		if attribute != "" {
			value, _ = s.Attr(attribute)
		} else {
			value = strings.TrimSpace(s.Text())
		}
		report.Samples = append(report.Samples, truncate(value, maxSampleLength))
	})

	return report, nil
}

// VerifySelectorMap tests every field rule in a selector map against HTML
// and returns the per-field reports keyed by field name
func VerifySelectorMap(html string, selectorMap *models.SelectorMap) (map[string]*SelectorReport, error) {
	reports := make(map[string]*SelectorReport, len(selectorMap.Fields))
	for name, rule := range selectorMap.Fields {
		report, err := TestSelector(html, rule.Selector, rule.Attribute)
		if err != nil {
			return nil, fmt.Errorf("failed to verify selector for field %s: %w", name, err)
		}
		reports[name] = report
	}
	return reports, nil
}

// FormatSelectorReports renders verification results as a compact text block
// suitable for inclusion in specialist feedback
func FormatSelectorReports(reports map[string]*SelectorReport, selectorMap *models.SelectorMap) string {
	var b strings.Builder
	for _, name := range selectorMap.FieldNames() {
		report, ok := reports[name]
		if !ok {
			continue
		}
		if report.Matched() {
			sample := ""
			if len(report.Samples) > 0 {
				sample = report.Samples[0]
			}
			fmt.Fprintf(&b, "%s: %d match(es), sample: %q\n", name, report.MatchCount, sample)
		} else {
			fmt.Fprintf(&b, "%s: NO MATCH for selector %q\n", name, report.Selector)
		}
	}
	return b.String()
}
