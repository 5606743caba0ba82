// Package fallback synthesizes degraded results when the upstream model is
// unavailable, so callers always get a well-formed answer.
package fallback

import (
	"time"

	"github.com/sustactical/squadlink/pkg/models"
)

// Briefing is returned in place of a squad briefing on any upstream failure.
const Briefing = "Operational uplink saturated. Squad monitoring continues on secondary protocols."

const (
	quotaSummary  = "AI quota temporarily exhausted. Using local heuristics."
	quotaRiskHigh = "High (Biometric Alert)"
	quotaRiskBase = "Baseline (Quota Restricted)"
	quotaAction   = "Continue standard monitoring protocols."

	genericSummary = "Analyzing data..."
	genericRisk    = "Unknown"
	genericAction  = "Monitor closely."
)

// Analysis builds the degraded analysis for s after a failure of kind errType.
// Only RATE_LIMIT is reported back to the caller as an error type.
func Analysis(s models.Subject, errType models.ErrorType, now time.Time) models.AnalysisResult {
	if errType == models.ErrorRateLimit {
		risk := quotaRiskBase
		if s.Status == models.StatusDistress {
			risk = quotaRiskHigh
		}
		return models.AnalysisResult{
			StatusSummary:   quotaSummary,
			HealthRisk:      risk,
			ImmediateAction: quotaAction,
			IsError:         true,
			ErrorType:       models.ErrorRateLimit,
			GeneratedAt:     now,
		}
	}
	return models.AnalysisResult{
		StatusSummary:   genericSummary,
		HealthRisk:      genericRisk,
		ImmediateAction: genericAction,
		IsError:         true,
		GeneratedAt:     now,
	}
}
