package models

import "time"

// SessionStatus is the lifecycle state of a build session
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionSucceeded  SessionStatus = "succeeded"
	SessionFailed     SessionStatus = "failed"
)

// ValidationAttempt pairs one validation outcome with its classification.
// Attempts are appended, never rewritten, so a terminal failure returns the
// full diagnostic trail rather than just the last error.
type ValidationAttempt struct {
	Iteration      int                  `json:"iteration"`
	Result         ValidationResult     `json:"result"`
	Classification *ErrorClassification `json:"classification,omitempty"` // nil on pass
	At             time.Time            `json:"at"`
}

// BuildSession is the mutable session record owned exclusively by the
// refinement loop: created at session start, mutated once per iteration,
// returned to the caller at terminal status.
type BuildSession struct {
	ID        string        `json:"id"`
	Request   BuildRequest  `json:"request"`
	Iteration int           `json:"iteration"` // Count of validation failures so far
	Status    SessionStatus `json:"status"`

	// Current working state; superseded, not mutated, on re-invocation
	SelectorMap *SelectorMap     `json:"selector_map,omitempty"`
	Artifact    *ScraperArtifact `json:"artifact,omitempty"`

	// Append-only audit trail
	History []ValidationAttempt `json:"history"`

	// FailureReason describes why a failed session terminated
	// (budget exhausted, unroutable error, gateway failure)
	FailureReason string `json:"failure_reason,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RecordAttempt appends a validation attempt to the session history
func (s *BuildSession) RecordAttempt(result ValidationResult, classification *ErrorClassification) {
	s.History = append(s.History, ValidationAttempt{
		Iteration:      s.Iteration,
		Result:         result,
		Classification: classification,
		At:             time.Now(),
	})
}
