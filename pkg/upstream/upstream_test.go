package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustactical/squadlink/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.ErrorType
	}{
		{"nil", nil, ""},
		{"status 429", &Error{Provider: "x", StatusCode: 429, Err: errors.New("quota")}, models.ErrorRateLimit},
		{"wrapped 429", fmt.Errorf("call: %w", &Error{StatusCode: 429, Err: errors.New("q")}), models.ErrorRateLimit},
		{"status 500", &Error{StatusCode: 500, Err: errors.New("429 in text")}, models.ErrorUpstreamOther},
		{"text 429", errors.New("got 429 Too Many Requests"), models.ErrorRateLimit},
		{"text resource exhausted", errors.New("RESOURCE_EXHAUSTED: quota"), models.ErrorRateLimit},
		{"plain", errors.New("connection reset"), models.ErrorUpstreamOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestStatusCode(t *testing.T) {
	code, ok := StatusCode(fmt.Errorf("x: %w", &Error{StatusCode: http.StatusBadGateway}))
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, code)

	_, ok = StatusCode(errors.New("nope"))
	assert.False(t, ok)
}

func TestParseAnalysis(t *testing.T) {
	res, err := ParseAnalysis(`{"status_summary":"Stable","health_risk":"Low","immediate_action":"Hydrate"}`)
	require.NoError(t, err)
	assert.Equal(t, "Stable", res.StatusSummary)
	assert.Equal(t, "Low", res.HealthRisk)
	assert.Equal(t, "Hydrate", res.ImmediateAction)
	assert.False(t, res.IsError)

	res, err = ParseAnalysis("```json\n{\"status_summary\":\"A\",\"health_risk\":\"B\",\"immediate_action\":\"C\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "C", res.ImmediateAction)
}

func TestParseAnalysisRejectsBadInput(t *testing.T) {
	_, err := ParseAnalysis("")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = ParseAnalysis("not json")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ParseAnalysis(`{"status_summary":"A","health_risk":"B"}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ParseAnalysis(`{"status_summary":"A","health_risk":"B","immediate_action":7}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPrompts(t *testing.T) {
	s := models.Subject{
		ID: "ARMY-842", Rank: "Subedar", Name: "Amit Kumar", Status: models.StatusActive,
		Vitals:      models.Vitals{HeartRate: 82, Temperature: 37.1, SpO2: 97, Hydration: 80},
		Environment: models.Environment{ExternalTemp: 12, Radiation: 0.08, ToxicGas: 1},
		Location:    models.Location{Alt: 3505},
	}
	p := AnalysisPrompt(s)
	assert.Contains(t, p, "Subedar Amit Kumar (ARMY-842)")
	assert.Contains(t, p, "HR 82 bpm")
	assert.Contains(t, p, "Alt 3505m")
	assert.Contains(t, p, "status_summary")

	b := BriefingPrompt([]models.Subject{s, {Rank: "Cadet", Name: "Priya Sharma", Status: models.StatusDistress}})
	assert.Contains(t, b, "Subedar Amit Kumar: ACTIVE; Cadet Priya Sharma: DISTRESS")
	assert.Contains(t, b, "under 60 words")
}
