package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/interfaces"
	"autoscraper/internal/models"
)

// Extraction is the outcome of running one stored scraper against one URL
type Extraction struct {
	URL      string             `json:"url"`
	Domain   string             `json:"domain"`
	Kind     models.ScraperKind `json:"kind"`
	Fields   map[string]*string `json:"fields,omitempty"`
	URLs     []string           `json:"urls,omitempty"`
	Complete bool               `json:"complete"` // All expected fields extracted
	Error    string             `json:"error,omitempty"`
	RanAt    time.Time          `json:"ran_at"`
}

// PipelineRun is the outcome of driving a stored list+content pipeline. The
// run succeeds when at least one listed URL extracts fully; per-URL failures
// are reported individually.
type PipelineRun struct {
	Domain   string       `json:"domain"`
	ListURL  string       `json:"list_url"`
	Listed   []string     `json:"listed"`
	Articles []Extraction `json:"articles"`
	Complete int          `json:"complete"` // Count of fully extracted articles
}

// Succeeded reports whether the pipeline produced at least one full
// extraction
func (p *PipelineRun) Succeeded() bool {
	return p.Complete > 0
}

// Runner executes stored scrapers from the repository
type Runner struct {
	repository interfaces.ScraperRepository
	sandbox    interfaces.Sandbox
	logger     arbor.ILogger
}

// New creates a runner over the repository and sandbox
func New(repository interfaces.ScraperRepository, sandbox interfaces.Sandbox, logger arbor.ILogger) *Runner {
	return &Runner{
		repository: repository,
		sandbox:    sandbox,
		logger:     logger,
	}
}

// Run resolves the scraper for the URL and executes it
func (r *Runner) Run(ctx context.Context, url string) (*Extraction, error) {
	record, err := r.repository.GetByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	return r.runRecord(ctx, record, url), nil
}

// RunRecord executes a specific stored record against a URL
func (r *Runner) RunRecord(ctx context.Context, record *models.ScraperRecord, url string) *Extraction {
	return r.runRecord(ctx, record, url)
}

func (r *Runner) runRecord(ctx context.Context, record *models.ScraperRecord, url string) *Extraction {
	extraction := &Extraction{
		URL:    url,
		Domain: record.Domain,
		Kind:   record.Kind,
		RanAt:  time.Now(),
	}

	raw, err := r.sandbox.Execute(ctx, record.Source, url)
	if err != nil {
		extraction.Error = err.Error()
		return extraction
	}
	if errText, ok := raw["__error"].(string); ok && errText != "" {
		extraction.Error = errText
		return extraction
	}

	switch record.Kind {
	case models.ScraperKindList:
		if items, ok := raw["urls"].([]interface{}); ok {
			for _, item := range items {
				if urlText, ok := item.(string); ok && urlText != "" {
					extraction.URLs = append(extraction.URLs, urlText)
				}
			}
		}
		extraction.Complete = len(extraction.URLs) > 0
		if !extraction.Complete {
			extraction.Error = "scraper extracted no URLs"
		}

	default:
		extraction.Fields = make(map[string]*string, len(record.Fields))
		extraction.Complete = true
		for _, name := range record.Fields {
			value, ok := raw[name]
			if !ok || value == nil {
				extraction.Fields[name] = nil
				extraction.Complete = false
				continue
			}
			text := fmt.Sprintf("%v", value)
			if text == "" {
				extraction.Fields[name] = nil
				extraction.Complete = false
				continue
			}
			extraction.Fields[name] = &text
		}
	}

	return extraction
}

// RunPipeline drives the stored two-stage pipeline for a domain: the list
// scraper collects article URLs from listURL (the stored example URL when
// empty), then the content scraper runs against each
func (r *Runner) RunPipeline(ctx context.Context, domain, listURL string, limit int) (*PipelineRun, error) {
	listRecord, contentRecord, err := r.repository.GetPipeline(ctx, domain)
	if err != nil {
		return nil, err
	}

	if listURL == "" {
		listURL = listRecord.ExampleURL
	}

	run := &PipelineRun{Domain: domain, ListURL: listURL}

	listed := r.runRecord(ctx, listRecord, listURL)
	if listed.Error != "" {
		return run, fmt.Errorf("list scraper failed on %s: %s", listURL, listed.Error)
	}
	run.Listed = listed.URLs

	urls := listed.URLs
	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}

	for _, articleURL := range urls {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		article := r.runRecord(ctx, contentRecord, articleURL)
		run.Articles = append(run.Articles, *article)
		if article.Complete {
			run.Complete++
		} else {
			r.logger.Warn().
				Str("url", articleURL).
				Str("error", article.Error).
				Msg("Article extraction incomplete")
		}
	}

	if !run.Succeeded() {
		return run, fmt.Errorf("pipeline for %s extracted no complete articles from %d URLs", domain, len(urls))
	}

	r.logger.Info().
		Str("domain", domain).
		Int("listed", len(run.Listed)).
		Int("complete", run.Complete).
		Msg("Pipeline run completed")

	return run, nil
}
