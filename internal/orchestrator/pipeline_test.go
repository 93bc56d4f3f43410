package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/models"
)

func listPass(urls ...string) *models.ValidationResult {
	return &models.ValidationResult{Status: models.ValidationPass, URLs: urls}
}

func TestPipelineBuild_Success(t *testing.T) {
	gateway := &fakeGateway{validations: []*models.ValidationResult{
		listPass("https://news.example.com/a", "https://news.example.com/b"),
	}}
	repo := &fakeRepository{}
	builder := NewPipelineBuilder(gateway, repo, testConfig(), arbor.NewLogger())

	result, err := builder.Build(context.Background(), PipelineRequest{
		ListURL: "https://news.example.com/latest",
		Prompt:  "extract title and body",
	})
	require.NoError(t, err)

	assert.Equal(t, models.SessionSucceeded, result.ListSession.Status)
	assert.Equal(t, models.SessionSucceeded, result.ContentSession.Status)
	// Content scraper was built against the first listed URL
	assert.Equal(t, "https://news.example.com/a", result.ContentSession.Request.URL)
	assert.Equal(t, "https://news.example.com/a", result.CrossValidated)

	require.Len(t, repo.saved, 2)
	assert.Equal(t, models.ScraperKindList, repo.saved[0].Kind)
	assert.Equal(t, models.ScraperKindContent, repo.saved[1].Kind)
	assert.Equal(t, repo.saved[0].Domain, repo.saved[1].Domain)
}

func TestPipelineBuild_ExternalSampleTriggersCrossValidation(t *testing.T) {
	gateway := &fakeGateway{validations: []*models.ValidationResult{
		listPass("https://news.example.com/a"),
	}}
	repo := &fakeRepository{}
	builder := NewPipelineBuilder(gateway, repo, testConfig(), arbor.NewLogger())

	result, err := builder.Build(context.Background(), PipelineRequest{
		ListURL:   "https://news.example.com/latest",
		Prompt:    "extract title",
		SampleURL: "https://news.example.com/hand-picked",
	})
	require.NoError(t, err)

	// list validate + content validate + cross-validation against a listed URL
	assert.Len(t, gateway.validateCalls, 3)
	assert.Equal(t, "https://news.example.com/a", gateway.validateCalls[2].URL)
	assert.Equal(t, "https://news.example.com/a", result.CrossValidated)
}

func TestPipelineBuild_CrossValidationFailure(t *testing.T) {
	gateway := &fakeGateway{validations: []*models.ValidationResult{
		listPass("https://news.example.com/a"),
		{Status: models.ValidationPass}, // content session's own validation
		{Status: models.ValidationFail, Detail: "fields came back empty: title"},
	}}
	repo := &fakeRepository{}
	builder := NewPipelineBuilder(gateway, repo, testConfig(), arbor.NewLogger())

	_, err := builder.Build(context.Background(), PipelineRequest{
		ListURL:   "https://news.example.com/latest",
		Prompt:    "extract title",
		SampleURL: "https://news.example.com/hand-picked",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not extract listed URL")
	assert.Empty(t, repo.saved)
}

func TestPipelineBuild_ListFailureStopsPipeline(t *testing.T) {
	gateway := &fakeGateway{validations: []*models.ValidationResult{
		{Status: models.ValidationFail, RawError: "unclassifiable"},
	}}
	repo := &fakeRepository{}
	builder := NewPipelineBuilder(gateway, repo, testConfig(), arbor.NewLogger())

	result, err := builder.Build(context.Background(), PipelineRequest{
		ListURL: "https://news.example.com/latest",
		Prompt:  "extract title",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list scraper build failed")
	assert.NotNil(t, result.ListSession)
	assert.Nil(t, result.ContentSession)
	assert.Empty(t, repo.saved)
}

func TestPipelineBuild_EmptyListIsFailure(t *testing.T) {
	// A pass with no URLs cannot happen through the validator, but the
	// builder still guards against it
	gateway := &fakeGateway{validations: []*models.ValidationResult{listPass()}}
	builder := NewPipelineBuilder(gateway, &fakeRepository{}, testConfig(), arbor.NewLogger())

	_, err := builder.Build(context.Background(), PipelineRequest{
		ListURL: "https://news.example.com/latest",
		Prompt:  "extract title",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no URLs")
}
