package specialists

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
	"autoscraper/internal/models"
	"autoscraper/internal/services/llm"
)

// Service is the production SpecialistGateway. It owns the three roles,
// bounds each invocation with the configured timeout, and wraps
// infrastructure failures in GatewayError so the orchestrator can tell them
// apart from validation outcomes.
type Service struct {
	analyst   *Analyst
	coder     *Coder
	validator *Validator
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewService wires the specialist roles from configuration
func NewService(cfg *common.Config, generator llm.Generator, fetcher interfaces.PageFetcher, sandbox interfaces.Sandbox, logger arbor.ILogger) *Service {
	return &Service{
		analyst:   NewAnalyst(generator, fetcher, cfg.LLM.AnalystModel, logger),
		coder:     NewCoder(generator, cfg.LLM.CoderModel, logger),
		validator: NewValidator(sandbox, logger),
		timeout:   cfg.Orchestrator.SpecialistTimeout,
		logger:    logger,
	}
}

func (s *Service) Analyze(ctx context.Context, task interfaces.AnalystTask) (*models.SelectorMap, error) {
	invokeCtx, cancel := s.invokeContext(ctx)
	defer cancel()

	selectorMap, err := s.analyst.Analyze(invokeCtx, task)
	if err != nil {
		return nil, s.wrap("analyst", invokeCtx, err)
	}
	return selectorMap, nil
}

func (s *Service) GenerateCode(ctx context.Context, task interfaces.CoderTask) (*models.ScraperArtifact, error) {
	invokeCtx, cancel := s.invokeContext(ctx)
	defer cancel()

	artifact, err := s.coder.GenerateCode(invokeCtx, task)
	if err != nil {
		return nil, s.wrap("coder", invokeCtx, err)
	}
	return artifact, nil
}

func (s *Service) Validate(ctx context.Context, task interfaces.ValidatorTask) (*models.ValidationResult, error) {
	invokeCtx, cancel := s.invokeContext(ctx)
	defer cancel()

	result, err := s.validator.Validate(invokeCtx, task)
	if err != nil {
		return nil, s.wrap("validator", invokeCtx, err)
	}
	return result, nil
}

func (s *Service) invokeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// wrap converts specialist failures into GatewayError. Timeouts and
// unreachable services are infrastructure failures; the orchestrator treats
// them as fatal to the session rather than classifying them.
func (s *Service) wrap(role string, ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	s.logger.Error().Err(err).Str("role", role).Msg("Specialist invocation failed")
	return &interfaces.GatewayError{Role: role, Err: err}
}
