package specialists

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/interfaces"
	"autoscraper/internal/models"
)

// Validator executes an artifact in the sandbox and judges the result
// against the selector map's expectations
type Validator struct {
	sandbox interfaces.Sandbox
	logger  arbor.ILogger
}

// NewValidator creates the validator role
func NewValidator(sandbox interfaces.Sandbox, logger arbor.ILogger) *Validator {
	return &Validator{
		sandbox: sandbox,
		logger:  logger,
	}
}

// Validate runs the artifact against the URL. A sandbox infrastructure
// failure returns an error; everything the artifact itself did wrong comes
// back inside the ValidationResult.
func (v *Validator) Validate(ctx context.Context, task interfaces.ValidatorTask) (*models.ValidationResult, error) {
	raw, err := v.sandbox.Execute(ctx, task.Artifact.Source, task.URL)
	if err != nil {
		return nil, err
	}

	if errText, ok := raw["__error"].(string); ok && errText != "" {
		v.logger.Warn().Str("url", task.URL).Str("error", firstLine(errText)).Msg("Artifact failed at runtime")
		return &models.ValidationResult{
			Status:   models.ValidationFail,
			RawError: errText,
			Detail:   "artifact raised a runtime error: " + firstLine(errText),
		}, nil
	}

	switch task.Kind {
	case models.ScraperKindList:
		return v.judgeList(raw, task), nil
	default:
		return v.judgeContent(raw, task), nil
	}
}

// judgeContent requires every mapped field to be present and non-empty
func (v *Validator) judgeContent(raw map[string]interface{}, task interfaces.ValidatorTask) *models.ValidationResult {
	expected := task.Artifact.Map.FieldNames()
	result := &models.ValidationResult{
		Status:    models.ValidationPass,
		Extracted: make(map[string]*string, len(expected)),
	}

	for _, name := range expected {
		value, ok := raw[name]
		if !ok || value == nil {
			result.Extracted[name] = nil
			continue
		}
		text := strings.TrimSpace(fmt.Sprintf("%v", value))
		if text == "" {
			result.Extracted[name] = nil
			continue
		}
		result.Extracted[name] = &text
	}

	if missing := result.MissingFields(expected); len(missing) > 0 {
		result.Status = models.ValidationFail
		result.Detail = fmt.Sprintf("fields came back empty: %s", strings.Join(missing, ", "))
	}

	v.logger.Info().
		Str("url", task.URL).
		Str("status", string(result.Status)).
		Int("fields", len(expected)).
		Msg("Content validation completed")

	return result
}

// judgeList requires a non-empty, well-formed URL list
func (v *Validator) judgeList(raw map[string]interface{}, task interfaces.ValidatorTask) *models.ValidationResult {
	result := &models.ValidationResult{Status: models.ValidationPass}

	items, ok := raw["urls"].([]interface{})
	if !ok {
		result.Status = models.ValidationFail
		result.Detail = "artifact result has no urls array"
		return result
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		urlText, ok := item.(string)
		if !ok {
			continue
		}
		urlText = strings.TrimSpace(urlText)
		if !strings.HasPrefix(urlText, "http://") && !strings.HasPrefix(urlText, "https://") {
			continue
		}
		if _, dup := seen[urlText]; dup {
			continue
		}
		seen[urlText] = struct{}{}
		result.URLs = append(result.URLs, urlText)
	}

	if len(result.URLs) == 0 {
		result.Status = models.ValidationFail
		result.Detail = "artifact extracted no usable URLs"
	}

	v.logger.Info().
		Str("url", task.URL).
		Str("status", string(result.Status)).
		Int("urls", len(result.URLs)).
		Msg("List validation completed")

	return result
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
