package orchestrator

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
	"autoscraper/internal/models"
)

// PipelineRequest describes a two-stage build: a list scraper for the
// listing page plus a content scraper for the articles it links to
type PipelineRequest struct {
	ListURL string `json:"list_url" validate:"required,url"`
	// Prompt describes the content fields to extract from each article
	Prompt string `json:"prompt" validate:"required"`
	// SampleURL optionally names the article the content scraper is built
	// against; defaults to the first URL the list scraper extracts
	SampleURL string `json:"sample_url,omitempty" validate:"omitempty,url"`
}

// PipelineResult carries both sessions plus the cross-validation outcome
type PipelineResult struct {
	ListSession    *models.BuildSession `json:"list_session"`
	ContentSession *models.BuildSession `json:"content_session,omitempty"`
	// CrossValidated is the listed URL the content scraper successfully
	// extracted during the build
	CrossValidated string `json:"cross_validated,omitempty"`
}

const listPrompt = "Extract all article/post URLs from this listing page"

// PipelineBuilder runs both halves of a two-stage pipeline and persists them
// together. Persistence happens only after both sessions succeed and the
// content scraper has proven itself on a URL the list scraper produced.
type PipelineBuilder struct {
	orchestrator *Orchestrator
	gateway      interfaces.SpecialistGateway
	repository   interfaces.ScraperRepository
	logger       arbor.ILogger
}

// NewPipelineBuilder creates a pipeline builder. The inner orchestrator must
// not hold a repository; the builder saves both records itself.
func NewPipelineBuilder(gateway interfaces.SpecialistGateway, repository interfaces.ScraperRepository, cfg *common.Config, logger arbor.ILogger) *PipelineBuilder {
	return &PipelineBuilder{
		orchestrator: New(gateway, nil, cfg, logger),
		gateway:      gateway,
		repository:   repository,
		logger:       logger,
	}
}

// Build executes the two-stage pipeline. The returned result always carries
// whatever sessions ran, so partial failures come back with the full trail.
func (b *PipelineBuilder) Build(ctx context.Context, request PipelineRequest) (*PipelineResult, error) {
	result := &PipelineResult{}

	listSession, err := b.orchestrator.Run(ctx, models.BuildRequest{
		URL:    request.ListURL,
		Prompt: listPrompt,
		Kind:   models.ScraperKindList,
	})
	result.ListSession = listSession
	if err != nil {
		return result, fmt.Errorf("list scraper build failed: %w", err)
	}

	listedURLs := lastURLs(listSession)
	if len(listedURLs) == 0 {
		return result, fmt.Errorf("list scraper validated but produced no URLs")
	}

	sampleURL := request.SampleURL
	if sampleURL == "" {
		sampleURL = listedURLs[0]
	}

	contentSession, err := b.orchestrator.Run(ctx, models.BuildRequest{
		URL:    sampleURL,
		Prompt: request.Prompt,
		Kind:   models.ScraperKindContent,
	})
	result.ContentSession = contentSession
	if err != nil {
		return result, fmt.Errorf("content scraper build failed: %w", err)
	}

	crossValidated, err := b.crossValidate(ctx, contentSession, sampleURL, listedURLs)
	if err != nil {
		return result, err
	}
	result.CrossValidated = crossValidated

	if err := b.save(ctx, listSession, contentSession); err != nil {
		return result, err
	}

	b.logger.Info().
		Str("list_url", request.ListURL).
		Str("sample_url", sampleURL).
		Int("listed_urls", len(listedURLs)).
		Msg("Pipeline build completed")

	return result, nil
}

// crossValidate proves the content scraper works on a URL the list scraper
// produced. When the sample article already came from the list output the
// content session's own validation covers it.
func (b *PipelineBuilder) crossValidate(ctx context.Context, contentSession *models.BuildSession, sampleURL string, listedURLs []string) (string, error) {
	for _, url := range listedURLs {
		if url == sampleURL {
			return sampleURL, nil
		}
	}

	validation, err := b.gateway.Validate(ctx, interfaces.ValidatorTask{
		URL:      listedURLs[0],
		Kind:     models.ScraperKindContent,
		Artifact: *contentSession.Artifact,
	})
	if err != nil {
		return "", fmt.Errorf("pipeline cross-validation failed: %w", err)
	}
	if validation.Status != models.ValidationPass {
		return "", fmt.Errorf("content scraper does not extract listed URL %s: %s", listedURLs[0], validation.Detail)
	}
	return listedURLs[0], nil
}

// save persists both halves; the repository links them bidirectionally.
// A failure on the second save reports the partial state explicitly.
func (b *PipelineBuilder) save(ctx context.Context, listSession, contentSession *models.BuildSession) error {
	listRecord, err := RecordFromSession(listSession)
	if err != nil {
		return err
	}
	contentRecord, err := RecordFromSession(contentSession)
	if err != nil {
		return err
	}

	if listRecord.Domain != contentRecord.Domain {
		b.logger.Warn().
			Str("list_domain", listRecord.Domain).
			Str("content_domain", contentRecord.Domain).
			Msg("Pipeline halves span different domains; records will not be linked")
	}

	if err := b.repository.Save(ctx, listRecord); err != nil {
		return fmt.Errorf("failed to save list scraper: %w", err)
	}
	if err := b.repository.Save(ctx, contentRecord); err != nil {
		return fmt.Errorf("list scraper saved but content scraper save failed, pipeline incomplete for %s: %w", contentRecord.Domain, err)
	}
	return nil
}

// lastURLs returns the URL list from the session's final (passing) attempt
func lastURLs(session *models.BuildSession) []string {
	if len(session.History) == 0 {
		return nil
	}
	return session.History[len(session.History)-1].Result.URLs
}
