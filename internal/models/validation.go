package models

// ValidationStatus is the outcome of executing an artifact against a URL
type ValidationStatus string

const (
	ValidationPass ValidationStatus = "pass"
	ValidationFail ValidationStatus = "fail"
)

// ValidationResult captures one execution of a ScraperArtifact against the
// target URL. Produced fresh each iteration.
type ValidationResult struct {
	Status ValidationStatus `json:"status"`
	// Extracted maps field name to extracted value; a nil entry means the
	// field's selector matched nothing
	Extracted map[string]*string `json:"extracted,omitempty"`
	// URLs holds the ordered link list for list-kind scrapers
	URLs []string `json:"urls,omitempty"`
	// RawError is the runtime error text from the sandbox, empty when the
	// artifact executed cleanly
	RawError string `json:"raw_error,omitempty"`
	// Detail is the human-readable diagnostic fed back to specialists
	Detail string `json:"detail,omitempty"`
}

// MissingFields returns the names of expected fields that came back nil or
// empty, in the order given
func (r *ValidationResult) MissingFields(expected []string) []string {
	var missing []string
	for _, name := range expected {
		value, ok := r.Extracted[name]
		if !ok || value == nil || *value == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// ErrorKind is the closed set of failure classifications
type ErrorKind string

const (
	ErrorKindCoding   ErrorKind = "CODING_ERROR"   // Generated code is broken regardless of selector correctness
	ErrorKindSelector ErrorKind = "SELECTOR_ERROR" // Code ran but extraction rules found nothing
	ErrorKindUnknown  ErrorKind = "UNKNOWN"        // Unrecognized failure shape, no safe routing
)

// RouteTarget is the specialist a classified failure is routed to
type RouteTarget string

const (
	RouteCoder    RouteTarget = "coder"
	RouteAnalyst  RouteTarget = "analyst"
	RouteTerminal RouteTarget = "terminal"
)

// ErrorClassification is derived from a failing ValidationResult. Every fail
// result maps to exactly one classification.
type ErrorClassification struct {
	Kind   ErrorKind   `json:"kind"`
	Route  RouteTarget `json:"route_to"`
	Rule   string      `json:"rule,omitempty"`   // Name of the classification rule that matched
	Reason string      `json:"reason,omitempty"` // Short explanation for the session history
}
