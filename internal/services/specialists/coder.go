package specialists

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/interfaces"
	"autoscraper/internal/models"
	"autoscraper/internal/services/llm"
)

// Coder turns a SelectorMap into an executable JavaScript artifact
type Coder struct {
	generator llm.Generator
	model     string
	logger    arbor.ILogger
}

// NewCoder creates the coder role
func NewCoder(generator llm.Generator, model string, logger arbor.ILogger) *Coder {
	return &Coder{
		generator: generator,
		model:     model,
		logger:    logger,
	}
}

// GenerateCode asks the model for a scraper implementing the selector map
func (c *Coder) GenerateCode(ctx context.Context, task interfaces.CoderTask) (*models.ScraperArtifact, error) {
	userMessage, err := c.buildUserMessage(task)
	if err != nil {
		return nil, err
	}

	response, err := c.generator.GenerateContent(ctx, &llm.ContentRequest{
		Messages:          []llm.Message{{Role: "user", Content: userMessage}},
		Model:             c.model,
		SystemInstruction: coderInstruction,
	})
	if err != nil {
		return nil, fmt.Errorf("coder generation failed: %w", err)
	}

	source := cleanMarkdownFences(response.Text)
	if err := checkArtifactSource(source); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("url", task.URL).
		Str("kind", string(task.Kind)).
		Int("source_bytes", len(source)).
		Msg("Coder produced artifact")

	return &models.ScraperArtifact{
		Source:   source,
		Language: "javascript",
		Map:      task.Map,
	}, nil
}

func (c *Coder) buildUserMessage(task interfaces.CoderTask) (string, error) {
	mapJSON, err := json.MarshalIndent(task.Map, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode selector map: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Target URL: %s\n", task.URL)
	fmt.Fprintf(&b, "Scraper kind: %s\n\n", task.Kind)
	fmt.Fprintf(&b, "Selector Map:\n%s\n", mapJSON)

	if task.PriorSource != "" {
		fmt.Fprintf(&b, "\nThe previous artifact FAILED at runtime. Fix the failure and return the corrected source.\nPrevious artifact:\n%s\n", task.PriorSource)
	}
	if task.Feedback != "" {
		fmt.Fprintf(&b, "\nRuntime error:\n%s\n", task.Feedback)
	}

	return b.String(), nil
}

// checkArtifactSource rejects responses that are clearly not an executable
// expression before they ever reach the sandbox
func checkArtifactSource(source string) error {
	if source == "" {
		return fmt.Errorf("coder returned empty source")
	}
	if !strings.Contains(source, "document.querySelector") {
		return fmt.Errorf("coder returned source without DOM queries")
	}
	return nil
}
