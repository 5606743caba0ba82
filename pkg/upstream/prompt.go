package upstream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sustactical/squadlink/pkg/models"
)

// AnalysisFields are the keys every analysis response must contain.
var AnalysisFields = []string{"status_summary", "health_risk", "immediate_action"}

// SystemPrompt frames the model for providers that take a separate system message.
func SystemPrompt() string {
	return `You are a tactical medical and readiness advisor for a command center. Reply with one valid JSON object only (no markdown, no commentary) containing exactly the string fields "status_summary", "health_risk" and "immediate_action".`
}

// AnalysisPrompt builds the per-subject analysis request.
func AnalysisPrompt(s models.Subject) string {
	return fmt.Sprintf(`Analyze the following tactical data for Soldier %s %s (%s).
Health Vitals: HR %g bpm, Temp %g°C, SpO2 %g%%, Hydration %g%%.
Environment: Temp %g°C, Radiation %guSv/h, Toxic Gas %gppm.
Location: Alt %gm.
Current status: %s.

Provide a brief tactical recommendation for the command center in a JSON format with 'status_summary', 'health_risk', and 'immediate_action'.`,
		s.Rank, s.Name, s.ID,
		s.Vitals.HeartRate, s.Vitals.Temperature, s.Vitals.SpO2, s.Vitals.Hydration,
		s.Environment.ExternalTemp, s.Environment.Radiation, s.Environment.ToxicGas,
		s.Location.Alt,
		s.Status,
	)
}

// BriefingPrompt builds the whole-roster briefing request.
func BriefingPrompt(subjects []models.Subject) string {
	parts := make([]string, 0, len(subjects))
	for _, s := range subjects {
		parts = append(parts, fmt.Sprintf("%s %s: %s", s.Rank, s.Name, s.Status))
	}
	return fmt.Sprintf("Generate a short tactical briefing for the Unit Commander based on this squad status: %s. Keep it under 60 words. Focus on readiness.",
		strings.Join(parts, "; "))
}

// ParseAnalysis decodes the model's JSON answer. All three fields must be present.
func ParseAnalysis(text string) (models.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.AnalysisResult{}, ErrEmptyResponse
	}
	// Some models wrap JSON in a fenced block despite instructions.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var raw map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for _, f := range AnalysisFields {
		v, ok := raw[f].(string)
		if !ok || strings.TrimSpace(v) == "" {
			return models.AnalysisResult{}, fmt.Errorf("%w: missing %q", ErrMalformedResponse, f)
		}
	}
	return models.AnalysisResult{
		StatusSummary:   raw["status_summary"].(string),
		HealthRisk:      raw["health_risk"].(string),
		ImmediateAction: raw["immediate_action"].(string),
	}, nil
}
