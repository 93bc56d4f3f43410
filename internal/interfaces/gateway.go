package interfaces

import (
	"context"
	"fmt"

	"autoscraper/internal/models"
)

// AnalystTask is the payload for an analyst invocation. PriorMap and Feedback
// are set on re-entry so the analyst can correct failed selectors instead of
// starting over.
type AnalystTask struct {
	URL      string
	Prompt   string
	Kind     models.ScraperKind
	PriorMap *models.SelectorMap
	Feedback string
}

// CoderTask is the payload for a coder invocation. PriorSource and Feedback
// are set when a coding error routes the session back here.
type CoderTask struct {
	URL         string
	Kind        models.ScraperKind
	Map         models.SelectorMap
	PriorSource string
	Feedback    string
}

// ValidatorTask is the payload for a validator invocation
type ValidatorTask struct {
	URL      string
	Kind     models.ScraperKind
	Artifact models.ScraperArtifact
}

// SpecialistGateway is the uniform interface the orchestrator uses to invoke
// the three specialist roles. Prompt construction and model selection are the
// gateway's internal concern; the orchestrator depends only on these
// signatures.
type SpecialistGateway interface {
	// Analyze inspects the target page and returns a fresh SelectorMap
	Analyze(ctx context.Context, task AnalystTask) (*models.SelectorMap, error)

	// GenerateCode produces a ScraperArtifact implementing the SelectorMap
	GenerateCode(ctx context.Context, task CoderTask) (*models.ScraperArtifact, error)

	// Validate executes the artifact against the target URL and checks that
	// the requested fields are present and non-trivially populated
	Validate(ctx context.Context, task ValidatorTask) (*models.ValidationResult, error)
}

// GatewayError wraps a specialist infrastructure failure (unreachable service,
// timeout). Fatal to the session; never retried inside the refinement loop.
type GatewayError struct {
	Role string
	Err  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("specialist %s unavailable: %v", e.Role, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
