package specialists

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/interfaces"
	"autoscraper/internal/models"
	"autoscraper/internal/services/fetch"
	"autoscraper/internal/services/llm"
)

// Analyst inspects a target page and produces a SelectorMap. The page is
// fetched once; the model sees a structure report and a markdown digest
// instead of raw HTML to keep prompts small.
type Analyst struct {
	generator llm.Generator
	fetcher   interfaces.PageFetcher
	model     string
	logger    arbor.ILogger
}

// NewAnalyst creates the analyst role
func NewAnalyst(generator llm.Generator, fetcher interfaces.PageFetcher, model string, logger arbor.ILogger) *Analyst {
	return &Analyst{
		generator: generator,
		fetcher:   fetcher,
		model:     model,
		logger:    logger,
	}
}

// Analyze fetches the page, asks the model for a selector map, and verifies
// the returned selectors against the fetched HTML
func (a *Analyst) Analyze(ctx context.Context, task interfaces.AnalystTask) (*models.SelectorMap, error) {
	page, err := a.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		return nil, fmt.Errorf("analyst failed to fetch %s: %w", task.URL, err)
	}

	structure, err := fetch.AnalyzeStructure(page.HTML, task.URL)
	if err != nil {
		return nil, fmt.Errorf("analyst failed to analyze page structure: %w", err)
	}
	digest := fetch.MarkdownDigest(page.HTML, task.URL)

	userMessage, err := a.buildUserMessage(task, structure, digest)
	if err != nil {
		return nil, err
	}

	response, err := a.generator.GenerateContent(ctx, &llm.ContentRequest{
		Messages:          []llm.Message{{Role: "user", Content: userMessage}},
		Model:             a.model,
		SystemInstruction: analystInstruction,
		OutputSchema:      selectorMapSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("analyst generation failed: %w", err)
	}

	selectorMap, err := parseSelectorMap(response.Text, task.Kind)
	if err != nil {
		return nil, err
	}

	a.verify(page.HTML, selectorMap)

	a.logger.Info().
		Str("url", task.URL).
		Str("kind", string(task.Kind)).
		Int("fields", len(selectorMap.Fields)).
		Msg("Analyst produced selector map")

	return selectorMap, nil
}

func (a *Analyst) buildUserMessage(task interfaces.AnalystTask, structure, digest string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Target URL: %s\n", task.URL)
	fmt.Fprintf(&b, "Scraper kind: %s\n", task.Kind)
	fmt.Fprintf(&b, "Extraction requirements: %s\n\n", task.Prompt)

	if task.PriorMap != nil {
		priorJSON, err := json.MarshalIndent(task.PriorMap, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode prior selector map: %w", err)
		}
		fmt.Fprintf(&b, "A previous selector map FAILED validation. Produce a corrected map.\nPrevious map:\n%s\n\n", priorJSON)
	}
	if task.Feedback != "" {
		fmt.Fprintf(&b, "Validation feedback:\n%s\n\n", task.Feedback)
	}

	fmt.Fprintf(&b, "%s\n\nPAGE CONTENT (markdown digest):\n%s\n", structure, digest)
	return b.String(), nil
}

// verify tests each selector against the fetched HTML and records the result
// in the map's notes so the coder and the session history see what matched
func (a *Analyst) verify(html string, selectorMap *models.SelectorMap) {
	reports, err := fetch.VerifySelectorMap(html, selectorMap)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Selector verification failed")
		return
	}

	summary := fetch.FormatSelectorReports(reports, selectorMap)
	if summary == "" {
		return
	}
	if selectorMap.Notes != "" {
		selectorMap.Notes += "\n"
	}
	selectorMap.Notes += "Verification:\n" + strings.TrimRight(summary, "\n")

	for name, report := range reports {
		if !report.Matched() {
			a.logger.Warn().
				Str("field", name).
				Str("selector", report.Selector).
				Msg("Selector matched nothing on the example page")
		}
	}
}

// parseSelectorMap flexibly parses the analyst response. Structured output
// returns fields as an array of named rules; free-form responses use the
// map shape directly.
func parseSelectorMap(text string, kind models.ScraperKind) (*models.SelectorMap, error) {
	payload := extractJSONObject(text)

	var selectorMap models.SelectorMap
	if err := json.Unmarshal([]byte(payload), &selectorMap); err != nil || len(selectorMap.Fields) == 0 {
		var listForm struct {
			SiteName string `json:"site_name"`
			Fields   []struct {
				Name      string                `json:"name"`
				Selector  string                `json:"selector"`
				Attribute string                `json:"attribute"`
				Kind      models.ExtractionKind `json:"kind"`
			} `json:"fields"`
			Notes string `json:"notes"`
		}
		if listErr := json.Unmarshal([]byte(payload), &listForm); listErr != nil || len(listForm.Fields) == 0 {
			if err != nil {
				return nil, fmt.Errorf("analyst returned invalid selector map JSON: %w", err)
			}
			return nil, fmt.Errorf("analyst returned a selector map with no fields")
		}
		selectorMap = models.SelectorMap{
			SiteName: listForm.SiteName,
			Fields:   make(map[string]models.FieldRule, len(listForm.Fields)),
			Notes:    listForm.Notes,
		}
		for _, f := range listForm.Fields {
			selectorMap.Fields[f.Name] = models.FieldRule{
				Selector:  f.Selector,
				Attribute: f.Attribute,
				Kind:      f.Kind,
			}
		}
	}

	if kind == models.ScraperKindList {
		hasURLList := false
		for _, rule := range selectorMap.Fields {
			if rule.Kind == models.ExtractionURLList {
				hasURLList = true
				break
			}
		}
		if !hasURLList {
			return nil, fmt.Errorf("analyst returned a list selector map without a url_list field")
		}
	}

	return &selectorMap, nil
}

// selectorMapSchema constrains structured output. Field names are dynamic,
// so fields is an array of named rules rather than a keyed object; the
// parser folds it back into a map.
func selectorMapSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"site_name": map[string]interface{}{"type": "string"},
			"fields": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":      map[string]interface{}{"type": "string"},
						"selector":  map[string]interface{}{"type": "string"},
						"attribute": map[string]interface{}{"type": "string"},
						"kind": map[string]interface{}{
							"type": "string",
							"enum": []interface{}{"text", "attribute", "url_list"},
						},
					},
					"required": []interface{}{"name", "selector", "kind"},
				},
			},
			"notes": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"fields"},
	}
}
