package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/models"
	"autoscraper/internal/repository"
	"autoscraper/internal/storage/memory"
)

// scriptedSandbox returns canned results per URL
type scriptedSandbox struct {
	results map[string]map[string]interface{}
	err     error
}

func (s *scriptedSandbox) Execute(_ context.Context, _ string, url string) (map[string]interface{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	result, ok := s.results[url]
	if !ok {
		return map[string]interface{}{"__error": "no scripted result for " + url}, nil
	}
	return result, nil
}

func seedPipeline(t *testing.T) *repository.ScraperRepo {
	t.Helper()
	repo := repository.New(memory.NewStore(), arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.ScraperRecord{
		Domain:     "news.example.com",
		Kind:       models.ScraperKindList,
		Source:     `(() => ({"urls": []}))()`,
		Language:   "javascript",
		ExampleURL: "https://news.example.com/latest",
		Fields:     []string{"urls"},
		CreatedAt:  time.Now(),
	}))
	require.NoError(t, repo.Save(ctx, &models.ScraperRecord{
		Domain:     "news.example.com",
		Kind:       models.ScraperKindContent,
		Source:     `(() => ({"title": null}))()`,
		Language:   "javascript",
		ExampleURL: "https://news.example.com/a",
		Fields:     []string{"title", "body"},
		CreatedAt:  time.Now(),
	}))
	return repo
}

func TestRun_ContentExtraction(t *testing.T) {
	repo := seedPipeline(t)
	sandbox := &scriptedSandbox{results: map[string]map[string]interface{}{
		"https://news.example.com/a": {"title": "Headline", "body": "Text"},
	}}
	runner := New(repo, sandbox, arbor.NewLogger())

	extraction, err := runner.Run(context.Background(), "https://news.example.com/a")
	require.NoError(t, err)

	assert.True(t, extraction.Complete)
	assert.Equal(t, models.ScraperKindContent, extraction.Kind)
	require.NotNil(t, extraction.Fields["title"])
	assert.Equal(t, "Headline", *extraction.Fields["title"])
}

func TestRun_IncompleteExtraction(t *testing.T) {
	repo := seedPipeline(t)
	sandbox := &scriptedSandbox{results: map[string]map[string]interface{}{
		"https://news.example.com/a": {"title": "Headline", "body": nil},
	}}
	runner := New(repo, sandbox, arbor.NewLogger())

	extraction, err := runner.Run(context.Background(), "https://news.example.com/a")
	require.NoError(t, err)

	assert.False(t, extraction.Complete)
	assert.Nil(t, extraction.Fields["body"])
}

func TestRun_UnknownDomain(t *testing.T) {
	repo := seedPipeline(t)
	runner := New(repo, &scriptedSandbox{}, arbor.NewLogger())

	_, err := runner.Run(context.Background(), "https://other.org/page")
	require.Error(t, err)
}

func TestRun_RuntimeErrorReported(t *testing.T) {
	repo := seedPipeline(t)
	sandbox := &scriptedSandbox{results: map[string]map[string]interface{}{
		"https://news.example.com/a": {"__error": "TypeError: boom"},
	}}
	runner := New(repo, sandbox, arbor.NewLogger())

	extraction, err := runner.Run(context.Background(), "https://news.example.com/a")
	require.NoError(t, err)
	assert.False(t, extraction.Complete)
	assert.Contains(t, extraction.Error, "TypeError")
}

func TestRunPipeline_PartialSuccess(t *testing.T) {
	repo := seedPipeline(t)
	sandbox := &scriptedSandbox{results: map[string]map[string]interface{}{
		"https://news.example.com/latest": {
			"urls": []interface{}{"https://news.example.com/a", "https://news.example.com/b"},
		},
		"https://news.example.com/a": {"title": "A", "body": "Body A"},
		"https://news.example.com/b": {"title": "B", "body": nil},
	}}
	runner := New(repo, sandbox, arbor.NewLogger())

	run, err := runner.RunPipeline(context.Background(), "news.example.com", "", 0)
	require.NoError(t, err)

	// One full extraction is a successful run; the failure stays visible
	assert.True(t, run.Succeeded())
	assert.Equal(t, 1, run.Complete)
	require.Len(t, run.Articles, 2)
	assert.True(t, run.Articles[0].Complete)
	assert.False(t, run.Articles[1].Complete)
	assert.Equal(t, "https://news.example.com/latest", run.ListURL)
}

func TestRunPipeline_AllArticlesFail(t *testing.T) {
	repo := seedPipeline(t)
	sandbox := &scriptedSandbox{results: map[string]map[string]interface{}{
		"https://news.example.com/latest": {
			"urls": []interface{}{"https://news.example.com/a"},
		},
		"https://news.example.com/a": {"title": nil, "body": nil},
	}}
	runner := New(repo, sandbox, arbor.NewLogger())

	run, err := runner.RunPipeline(context.Background(), "news.example.com", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no complete articles")
	assert.False(t, run.Succeeded())
}

func TestRunPipeline_Limit(t *testing.T) {
	repo := seedPipeline(t)
	sandbox := &scriptedSandbox{results: map[string]map[string]interface{}{
		"https://news.example.com/latest": {
			"urls": []interface{}{
				"https://news.example.com/a",
				"https://news.example.com/b",
				"https://news.example.com/c",
			},
		},
		"https://news.example.com/a": {"title": "A", "body": "Body"},
	}}
	runner := New(repo, sandbox, arbor.NewLogger())

	run, err := runner.RunPipeline(context.Background(), "news.example.com", "", 1)
	require.NoError(t, err)
	assert.Len(t, run.Articles, 1)
	assert.Len(t, run.Listed, 3)
}

func TestRunPipeline_SandboxFailure(t *testing.T) {
	repo := seedPipeline(t)
	runner := New(repo, &scriptedSandbox{err: errors.New("browser crashed")}, arbor.NewLogger())

	_, err := runner.RunPipeline(context.Background(), "news.example.com", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list scraper failed")
}

func TestRunPipeline_MissingHalf(t *testing.T) {
	repo := repository.New(memory.NewStore(), arbor.NewLogger())
	require.NoError(t, repo.Save(context.Background(), &models.ScraperRecord{
		Domain:   "solo.example.com",
		Kind:     models.ScraperKindContent,
		Source:   "(() => ({}))()",
		Language: "javascript",
	}))
	runner := New(repo, &scriptedSandbox{}, arbor.NewLogger())

	_, err := runner.RunPipeline(context.Background(), "solo.example.com", "", 0)
	require.Error(t, err)
}
