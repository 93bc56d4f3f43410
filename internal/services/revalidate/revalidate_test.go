package revalidate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/models"
	"autoscraper/internal/repository"
	"autoscraper/internal/services/runner"
	"autoscraper/internal/storage/memory"
)

type scriptedSandbox struct {
	results map[string]map[string]interface{}
}

func (s *scriptedSandbox) Execute(_ context.Context, _ string, url string) (map[string]interface{}, error) {
	result, ok := s.results[url]
	if !ok {
		return map[string]interface{}{"__error": "no scripted result for " + url}, nil
	}
	return result, nil
}

func seedRecord(t *testing.T, repo *repository.ScraperRepo, domain string, validated time.Time) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), &models.ScraperRecord{
		Domain:        domain,
		Kind:          models.ScraperKindContent,
		Source:        `(() => ({"title": "x"}))()`,
		Language:      "javascript",
		ExampleURL:    "https://" + domain + "/example",
		Fields:        []string{"title"},
		CreatedAt:     validated,
		LastValidated: validated,
	}))
}

func TestRunOnce(t *testing.T) {
	repo := repository.New(memory.NewStore(), arbor.NewLogger())
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedRecord(t, repo, "good.example.com", old)
	seedRecord(t, repo, "broken.example.com", old)

	sandbox := &scriptedSandbox{results: map[string]map[string]interface{}{
		"https://good.example.com/example":   {"title": "Still works"},
		"https://broken.example.com/example": {"title": nil},
	}}
	service := NewService(repo, runner.New(repo, sandbox, arbor.NewLogger()), common.RevalidationConfig{Enabled: true}, arbor.NewLogger())

	summary, err := service.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)

	// Passing scraper got its timestamp refreshed; the broken one did not
	good, err := repo.Get(context.Background(), "good.example.com")
	require.NoError(t, err)
	assert.True(t, good.LastValidated.After(old))

	broken, err := repo.Get(context.Background(), "broken.example.com")
	require.NoError(t, err)
	assert.True(t, broken.LastValidated.Equal(old))
}

func TestRunOnce_LimitChecksOldestFirst(t *testing.T) {
	repo := repository.New(memory.NewStore(), arbor.NewLogger())
	seedRecord(t, repo, "older.example.com", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	seedRecord(t, repo, "newer.example.com", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	sandbox := &scriptedSandbox{results: map[string]map[string]interface{}{
		"https://older.example.com/example": {"title": "ok"},
		"https://newer.example.com/example": {"title": "ok"},
	}}
	service := NewService(repo, runner.New(repo, sandbox, arbor.NewLogger()), common.RevalidationConfig{Enabled: true, Limit: 1}, arbor.NewLogger())

	summary, err := service.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Checked)

	older, err := repo.Get(context.Background(), "older.example.com")
	require.NoError(t, err)
	assert.True(t, older.LastValidated.Year() >= 2026 && older.LastValidated.Month() > time.January)

	newer, err := repo.Get(context.Background(), "newer.example.com")
	require.NoError(t, err)
	assert.Equal(t, time.June, newer.LastValidated.Month())
}

func TestStart_DisabledIsNoOp(t *testing.T) {
	repo := repository.New(memory.NewStore(), arbor.NewLogger())
	service := NewService(repo, runner.New(repo, &scriptedSandbox{}, arbor.NewLogger()), common.RevalidationConfig{Enabled: false}, arbor.NewLogger())

	require.NoError(t, service.Start())
}

func TestStart_InvalidSchedule(t *testing.T) {
	repo := repository.New(memory.NewStore(), arbor.NewLogger())
	service := NewService(repo, runner.New(repo, &scriptedSandbox{}, arbor.NewLogger()), common.RevalidationConfig{Enabled: true, Schedule: "not a schedule"}, arbor.NewLogger())

	assert.Error(t, service.Start())
}
