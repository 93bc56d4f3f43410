package orchestrator

import (
	"fmt"
	"strings"

	"autoscraper/internal/models"
)

// classificationRule maps a failing validation result to an error kind and a
// route target. Rules are evaluated in order; first match wins.
type classificationRule struct {
	name    string
	kind    models.ErrorKind
	route   models.RouteTarget
	matches func(result *models.ValidationResult) bool
	reason  func(result *models.ValidationResult) string
}

// runtimeErrorSignatures are substrings that identify a broken artifact
// regardless of whether the selectors themselves are correct
var runtimeErrorSignatures = []string{
	"TypeError",
	"ReferenceError",
	"SyntaxError",
	"RangeError",
	"is not a function",
	"is not defined",
	"Cannot read propert",
	"Cannot access",
	"null is not an object",
	"undefined is not an object",
	"Unexpected token",
	"did not evaluate to an object",
}

// classificationRules defines all rules in priority order (first match wins)
var classificationRules = []classificationRule{
	{
		name:  "runtime-error",
		kind:  models.ErrorKindCoding,
		route: models.RouteCoder,
		matches: func(r *models.ValidationResult) bool {
			if r.RawError == "" {
				return false
			}
			for _, sig := range runtimeErrorSignatures {
				if strings.Contains(r.RawError, sig) {
					return true
				}
			}
			return false
		},
		reason: func(r *models.ValidationResult) string {
			return "artifact raised a recognized runtime error"
		},
	},
	{
		name:  "empty-extraction",
		kind:  models.ErrorKindSelector,
		route: models.RouteAnalyst,
		matches: func(r *models.ValidationResult) bool {
			if r.RawError != "" {
				return false
			}
			for _, value := range r.Extracted {
				if value == nil || *value == "" {
					return true
				}
			}
			// A list artifact that ran cleanly but found nothing points at
			// the selector, not the code
			return len(r.Extracted) == 0 && len(r.URLs) == 0
		},
		reason: func(r *models.ValidationResult) string {
			if len(r.Extracted) > 0 {
				return "artifact executed cleanly but some fields extracted nothing"
			}
			return "artifact executed cleanly but extracted nothing"
		},
	},
}

// Classify maps a failing ValidationResult to exactly one classification.
// Results that match no rule are UNKNOWN and terminate the session rather
// than guessing a route.
func Classify(result *models.ValidationResult) models.ErrorClassification {
	for _, rule := range classificationRules {
		if rule.matches(result) {
			return models.ErrorClassification{
				Kind:   rule.kind,
				Route:  rule.route,
				Rule:   rule.name,
				Reason: rule.reason(result),
			}
		}
	}

	return models.ErrorClassification{
		Kind:   models.ErrorKindUnknown,
		Route:  models.RouteTerminal,
		Reason: fmt.Sprintf("no classification rule matched (raw_error=%q, detail=%q)", firstLine(result.RawError), result.Detail),
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
