package models

import "time"

// ErrorType classifies why an analysis could not be produced normally.
type ErrorType string

const (
	ErrorRateLimit     ErrorType = "RATE_LIMIT"
	ErrorValidation    ErrorType = "VALIDATION"
	ErrorUpstreamOther ErrorType = "UPSTREAM_OTHER"
	ErrorPersistence   ErrorType = "PERSISTENCE"
)

// AnalysisResult is a tactical assessment for a single subject, either
// produced by the upstream model or synthesized locally.
type AnalysisResult struct {
	StatusSummary   string    `json:"status_summary"`
	HealthRisk      string    `json:"health_risk"`
	ImmediateAction string    `json:"immediate_action"`
	IsError         bool      `json:"is_error,omitempty"`
	ErrorType       ErrorType `json:"error_type,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Degraded reports whether r was synthesized instead of fetched.
func (r AnalysisResult) Degraded() bool {
	return r.IsError
}

// Briefing is the whole-roster summary text.
type Briefing struct {
	Text string `json:"text"`
}
