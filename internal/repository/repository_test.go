package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/interfaces"
	"autoscraper/internal/models"
	"autoscraper/internal/storage/memory"
)

func newTestRepo() *ScraperRepo {
	return New(memory.NewStore(), arbor.NewLogger())
}

func contentRecord(domain string) *models.ScraperRecord {
	return &models.ScraperRecord{
		Domain:     domain,
		SiteName:   "Example News",
		Kind:       models.ScraperKindContent,
		Source:     `(() => ({"title": "x"}))()`,
		Language:   "javascript",
		URLPattern: `https?://` + domain + `/.*`,
		ExampleURL: "https://" + domain + "/articles/1",
		Fields:     []string{"title"},
		Selectors: models.SelectorMap{
			Fields: map[string]models.FieldRule{
				"title": {Selector: "h1", Kind: models.ExtractionText},
			},
		},
		CreatedAt:     time.Now(),
		LastValidated: time.Now(),
	}
}

func listRecord(domain string) *models.ScraperRecord {
	record := contentRecord(domain)
	record.Kind = models.ScraperKindList
	record.Source = `(() => ({"urls": []}))()`
	record.Fields = []string{"urls"}
	return record
}

func TestSaveAndGet(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, contentRecord("example.com")))

	record, err := repo.Get(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", record.Domain)
	assert.Equal(t, models.ScraperKindContent, record.Kind)
	assert.Equal(t, `(() => ({"title": "x"}))()`, record.Source)
	assert.Equal(t, "1", record.Version)
}

func TestGetMissingDomain(t *testing.T) {
	repo := newTestRepo()

	_, err := repo.Get(context.Background(), "nonexistent.com")
	assert.ErrorIs(t, err, interfaces.ErrScraperNotFound)
}

func TestSaveUpsertBumpsVersion(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	first := contentRecord("example.com")
	require.NoError(t, repo.Save(ctx, first))

	second := contentRecord("example.com")
	second.Source = `(() => ({"title": "y"}))()`
	require.NoError(t, repo.Save(ctx, second))

	record, err := repo.Get(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "2", record.Version)
	assert.Equal(t, `(() => ({"title": "y"}))()`, record.Source)

	// Only one content record per domain survives
	records, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGetPrefersContentKind(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, listRecord("example.com")))
	require.NoError(t, repo.Save(ctx, contentRecord("example.com")))

	record, err := repo.Get(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ScraperKindContent, record.Kind)
}

func TestPipelineLinking(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, listRecord("example.com")))

	// First half stored alone carries no link
	list, err := repo.GetKind(ctx, "example.com", models.ScraperKindList)
	require.NoError(t, err)
	assert.Empty(t, list.PipelineLink)

	require.NoError(t, repo.Save(ctx, contentRecord("example.com")))

	// Both halves are linked bidirectionally once the companion lands
	list, err = repo.GetKind(ctx, "example.com", models.ScraperKindList)
	require.NoError(t, err)
	assert.Equal(t, "example_com_content", list.PipelineLink)

	content, err := repo.GetKind(ctx, "example.com", models.ScraperKindContent)
	require.NoError(t, err)
	assert.Equal(t, "example_com_list", content.PipelineLink)
}

func TestSave_ConcurrentDomains(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	domains := []string{"alpha.com", "beta.org", "gamma.net", "delta.io"}

	var wg sync.WaitGroup
	errs := make(chan error, len(domains)*2)
	for _, domain := range domains {
		wg.Add(1)
		go func(domain string) {
			defer wg.Done()
			errs <- repo.Save(ctx, contentRecord(domain))
		}(domain)
		wg.Add(1)
		go func(domain string) {
			defer wg.Done()
			errs <- repo.Save(ctx, listRecord(domain))
		}(domain)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Every domain ends up with both halves stored and linked
	for _, domain := range domains {
		list, content, err := repo.GetPipeline(ctx, domain)
		require.NoError(t, err)
		assert.Equal(t, models.RecordKey(domain, models.ScraperKindContent), list.PipelineLink)
		assert.Equal(t, models.RecordKey(domain, models.ScraperKindList), content.PipelineLink)
	}

	records, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, len(domains)*2)
}

func TestGetPipeline(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, listRecord("example.com")))

	_, _, err := repo.GetPipeline(ctx, "example.com")
	assert.ErrorIs(t, err, interfaces.ErrIncompletePipeline)

	require.NoError(t, repo.Save(ctx, contentRecord("example.com")))

	list, content, err := repo.GetPipeline(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ScraperKindList, list.Kind)
	assert.Equal(t, models.ScraperKindContent, content.Kind)
	assert.NotEmpty(t, list.Source)
	assert.NotEmpty(t, content.Source)
}

func TestGetByURL_HostMatch(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, contentRecord("example.com")))

	record, err := repo.GetByURL(ctx, "https://example.com/articles/99")
	require.NoError(t, err)
	assert.Equal(t, "example.com", record.Domain)
}

func TestGetByURL_PatternFallback(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	record := contentRecord("example.com")
	record.URLPattern = `https?://(www\.)?example\.com/.*`
	require.NoError(t, repo.Save(ctx, record))

	// Host www.example.com has no record; pattern matching finds it
	found, err := repo.GetByURL(ctx, "https://www.example.com/articles/5")
	require.NoError(t, err)
	assert.Equal(t, "example.com", found.Domain)
}

func TestGetByURL_PatternAnchoredAtStart(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, contentRecord("example.com")))

	// A foreign URL embedding the stored domain must not resolve to it
	_, err := repo.GetByURL(ctx, "https://tracker.io/redirect?to=https://example.com/articles/1")
	assert.ErrorIs(t, err, interfaces.ErrScraperNotFound)
}

func TestGetByURL_NoMatch(t *testing.T) {
	repo := newTestRepo()

	_, err := repo.GetByURL(context.Background(), "https://unknown.org/page")
	assert.ErrorIs(t, err, interfaces.ErrScraperNotFound)
}

func TestListOrderedByDomain(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, contentRecord("zeta.org")))
	require.NoError(t, repo.Save(ctx, contentRecord("alpha.net")))
	require.NoError(t, repo.Save(ctx, listRecord("alpha.net")))

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "alpha.net", records[0].Domain)
	assert.Equal(t, models.ScraperKindContent, records[0].Kind)
	assert.Equal(t, "alpha.net", records[1].Domain)
	assert.Equal(t, models.ScraperKindList, records[1].Kind)
	assert.Equal(t, "zeta.org", records[2].Domain)
}

func TestTouchValidated(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	record := contentRecord("example.com")
	record.LastValidated = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, record))

	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchValidated(ctx, "example.com", models.ScraperKindContent, at))

	stored, err := repo.Get(ctx, "example.com")
	require.NoError(t, err)
	assert.True(t, stored.LastValidated.Equal(at))

	err = repo.TouchValidated(ctx, "missing.com", models.ScraperKindContent, at)
	assert.ErrorIs(t, err, interfaces.ErrScraperNotFound)
}

func TestSaveRejectsIncompleteRecords(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	assert.Error(t, repo.Save(ctx, &models.ScraperRecord{Kind: models.ScraperKindContent, Source: "x"}))
	assert.Error(t, repo.Save(ctx, &models.ScraperRecord{Domain: "example.com", Kind: models.ScraperKindContent}))
}
