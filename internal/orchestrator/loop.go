package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
	"autoscraper/internal/models"
)

// loopState is an explicit step in the refinement loop
type loopState int

const (
	stateAnalyze loopState = iota
	stateCode
	stateValidate
)

// Orchestrator drives one build request through the analyze/code/validate
// refinement loop, routing failures to the responsible specialist until the
// artifact validates or the iteration budget runs out
type Orchestrator struct {
	gateway       interfaces.SpecialistGateway
	repository    interfaces.ScraperRepository
	maxIterations int
	logger        arbor.ILogger
}

// New creates an orchestrator. The repository may be nil when the caller
// handles persistence itself (pipeline builds save both halves together).
func New(gateway interfaces.SpecialistGateway, repository interfaces.ScraperRepository, cfg *common.Config, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		gateway:       gateway,
		repository:    repository,
		maxIterations: cfg.Orchestrator.MaxIterations,
		logger:        logger,
	}
}

// Run executes one build session to a terminal status. The returned session
// is non-nil whenever the loop started, so callers get the audit trail even
// for failed builds; the error is non-nil only for failed sessions.
func (o *Orchestrator) Run(ctx context.Context, request models.BuildRequest) (*models.BuildSession, error) {
	session := &models.BuildSession{
		ID:        common.NewSessionID(),
		Request:   request,
		Status:    models.SessionInProgress,
		StartedAt: time.Now(),
	}

	o.logger.Info().
		Str("session_id", session.ID).
		Str("url", request.URL).
		Str("kind", string(request.Kind)).
		Msg("Build session started")

	var feedback string
	state := stateAnalyze

	for {
		if err := ctx.Err(); err != nil {
			return o.fail(session, fmt.Sprintf("session canceled: %v", err))
		}

		switch state {
		case stateAnalyze:
			task := interfaces.AnalystTask{
				URL:      request.URL,
				Prompt:   request.Prompt,
				Kind:     request.Kind,
				Feedback: feedback,
			}
			if feedback != "" {
				task.PriorMap = session.SelectorMap
			}
			selectorMap, err := o.gateway.Analyze(ctx, task)
			if err != nil {
				return o.fail(session, fmt.Sprintf("analyst unavailable: %v", err))
			}
			session.SelectorMap = selectorMap
			state = stateCode

		case stateCode:
			task := interfaces.CoderTask{
				URL:      request.URL,
				Kind:     request.Kind,
				Map:      *session.SelectorMap,
				Feedback: feedback,
			}
			if feedback != "" && session.Artifact != nil {
				task.PriorSource = session.Artifact.Source
			}
			artifact, err := o.gateway.GenerateCode(ctx, task)
			if err != nil {
				return o.fail(session, fmt.Sprintf("coder unavailable: %v", err))
			}
			session.Artifact = artifact
			state = stateValidate

		case stateValidate:
			result, err := o.gateway.Validate(ctx, interfaces.ValidatorTask{
				URL:      request.URL,
				Kind:     request.Kind,
				Artifact: *session.Artifact,
			})
			if err != nil {
				return o.fail(session, fmt.Sprintf("validator unavailable: %v", err))
			}

			if result.Status == models.ValidationPass {
				session.RecordAttempt(*result, nil)
				return o.succeed(ctx, session)
			}

			session.Iteration++
			classification := Classify(result)
			session.RecordAttempt(*result, &classification)

			o.logger.Warn().
				Str("session_id", session.ID).
				Int("iteration", session.Iteration).
				Str("kind", string(classification.Kind)).
				Str("route", string(classification.Route)).
				Msg("Validation failed")

			if classification.Route == models.RouteTerminal {
				return o.fail(session, fmt.Sprintf("unroutable failure: %s", classification.Reason))
			}
			// MaxIterations bounds retries, so a session may see one
			// more validation than the budget before going terminal
			if session.Iteration > o.maxIterations {
				return o.fail(session, fmt.Sprintf("iteration budget exhausted after %d attempts (last: %s)", session.Iteration, classification.Kind))
			}

			feedback = validationFeedback(result)
			if classification.Route == models.RouteAnalyst {
				state = stateAnalyze
			} else {
				state = stateCode
			}
		}
	}
}

func (o *Orchestrator) succeed(ctx context.Context, session *models.BuildSession) (*models.BuildSession, error) {
	session.Status = models.SessionSucceeded
	now := time.Now()
	session.FinishedAt = &now

	if o.repository != nil {
		record, err := RecordFromSession(session)
		if err != nil {
			return session, err
		}
		if err := o.repository.Save(ctx, record); err != nil {
			return session, fmt.Errorf("validated scraper could not be saved: %w", err)
		}
		o.logger.Info().
			Str("session_id", session.ID).
			Str("domain", record.Domain).
			Str("kind", string(record.Kind)).
			Msg("Scraper saved to repository")
	}

	o.logger.Info().
		Str("session_id", session.ID).
		Int("iterations", session.Iteration).
		Msg("Build session succeeded")

	return session, nil
}

func (o *Orchestrator) fail(session *models.BuildSession, reason string) (*models.BuildSession, error) {
	session.Status = models.SessionFailed
	session.FailureReason = reason
	now := time.Now()
	session.FinishedAt = &now

	o.logger.Error().
		Str("session_id", session.ID).
		Int("iterations", session.Iteration).
		Str("reason", reason).
		Msg("Build session failed")

	return session, fmt.Errorf("build failed for %s: %s", session.Request.URL, reason)
}

// validationFeedback renders the failing result as specialist feedback
func validationFeedback(result *models.ValidationResult) string {
	if result.RawError != "" {
		return result.RawError
	}
	return result.Detail
}

// RecordFromSession converts a succeeded session into a repository record
func RecordFromSession(session *models.BuildSession) (*models.ScraperRecord, error) {
	if session.Status != models.SessionSucceeded || session.Artifact == nil {
		return nil, fmt.Errorf("session %s is not a succeeded build", session.ID)
	}

	domain, err := common.DomainFromURL(session.Request.URL)
	if err != nil {
		return nil, fmt.Errorf("cannot derive domain for record: %w", err)
	}

	return &models.ScraperRecord{
		Domain:        domain,
		SiteName:      session.Artifact.Map.SiteName,
		Kind:          session.Request.Kind,
		Source:        session.Artifact.Source,
		Language:      session.Artifact.Language,
		URLPattern:    common.URLPattern(session.Request.URL),
		ExampleURL:    session.Request.URL,
		Fields:        session.Artifact.Map.FieldNames(),
		Selectors:     session.Artifact.Map,
		CreatedAt:     session.StartedAt,
		LastValidated: time.Now(),
		Version:       "1",
	}, nil
}
