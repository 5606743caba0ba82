package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustactical/squadlink/pkg/analysis"
	"github.com/sustactical/squadlink/pkg/cache"
	"github.com/sustactical/squadlink/pkg/clock"
	"github.com/sustactical/squadlink/pkg/models"
	"github.com/sustactical/squadlink/pkg/retry"
	"github.com/sustactical/squadlink/pkg/roster"
	"github.com/sustactical/squadlink/pkg/upstream"
)

type stubUpstream struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (s *stubUpstream) Analyze(context.Context, models.Subject) (models.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return models.AnalysisResult{}, s.err
	}
	return models.AnalysisResult{StatusSummary: "Nominal", HealthRisk: "Low", ImmediateAction: "Continue"}, nil
}

func (s *stubUpstream) Brief(context.Context, []models.Subject) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "All units ready.", nil
}

func (s *stubUpstream) Model() string { return "stub" }

func noSleep(context.Context, time.Duration) error { return nil }

func newTestServer(t *testing.T, up *stubUpstream) *Server {
	t.Helper()
	svc := analysis.New(analysis.Deps{
		Upstream: up,
		Store:    cache.NewMemory(),
		Clock:    clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Retry:    retry.Policy{MaxRetries: 2, InitialDelay: time.Second, Sleep: noSleep},
	})
	t.Cleanup(svc.Wait)
	r := roster.New(roster.Seed(), nil, nil, nil)
	return New(Options{}, svc, r)
}

const subjectJSON = `{"id":"ARMY-842","rank":"Subedar","name":"Amit Kumar","status":"ACTIVE",
"location":{"lat":34.23,"lng":77.56,"alt":3510},
"vitals":{"heartRate":95,"temperature":37.2,"spO2":96,"hydration":78},
"environment":{"externalTemp":-4,"o2Level":20.9,"radiation":0.15,"toxicGas":5}}`

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestAnalyzeMissThenHit(t *testing.T) {
	up := &stubUpstream{}
	s := newTestServer(t, up)

	w := do(t, s, http.MethodPost, "/api/analyze-soldier", subjectJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "miss", w.Header().Get(CacheHeader))

	var res models.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "Nominal", res.StatusSummary)
	assert.False(t, res.IsError)
	assert.NotContains(t, w.Body.String(), "is_error")

	w = do(t, s, http.MethodPost, "/api/analyze-soldier", subjectJSON)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get(CacheHeader))

	w = do(t, s, http.MethodPost, "/api/analyze-soldier?force=true", subjectJSON)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "miss", w.Header().Get(CacheHeader))
	assert.Equal(t, 2, up.calls)
}

func TestAnalyzeRateLimitedReturnsDegraded200(t *testing.T) {
	up := &stubUpstream{err: &upstream.Error{Provider: "stub", StatusCode: http.StatusTooManyRequests, Err: errors.New("quota")}}
	s := newTestServer(t, up)

	w := do(t, s, http.MethodPost, "/api/analyze-soldier", subjectJSON)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["is_error"])
	assert.Equal(t, "RATE_LIMIT", body["error_type"])
	assert.Equal(t, "Baseline (Quota Restricted)", body["health_risk"])
	assert.Equal(t, 3, up.calls)
}

func TestAnalyzeBadRequests(t *testing.T) {
	s := newTestServer(t, &stubUpstream{})

	tests := map[string]string{
		"not json":         `{{{`,
		"array":            `[]`,
		"missing location": `{"id":"A","rank":"R","name":"N","status":"ACTIVE","vitals":{},"environment":{}}`,
		"null vitals":      `{"id":"A","rank":"R","name":"N","status":"ACTIVE","vitals":null,"environment":{},"location":{}}`,
		"bad status":       `{"id":"A","rank":"R","name":"N","status":"LOST","vitals":{},"environment":{},"location":{}}`,
		"empty id":         `{"id":"","rank":"R","name":"N","status":"ACTIVE","vitals":{},"environment":{},"location":{}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/analyze-soldier", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"type":"squadlink_error"`)
		})
	}
}

func TestBriefing(t *testing.T) {
	s := newTestServer(t, &stubUpstream{})

	w := do(t, s, http.MethodPost, "/api/briefing", `{"subjects":[`+subjectJSON+`]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"All units ready."}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/briefing", `{"soldiers":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBriefingFallback(t *testing.T) {
	s := newTestServer(t, &stubUpstream{err: errors.New("connection reset")})

	w := do(t, s, http.MethodPost, "/api/briefing", `{"subjects":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Operational uplink saturated")
}

func TestBriefingRequiresArray(t *testing.T) {
	s := newTestServer(t, &stubUpstream{})
	for _, body := range []string{`{}`, `{"subjects":"ARMY-842"}`, `{"subjects":null}`, `nope`} {
		w := do(t, s, http.MethodPost, "/api/briefing", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestLogsEmpty(t *testing.T) {
	s := newTestServer(t, &stubUpstream{})
	w := do(t, s, http.MethodGet, "/api/logs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"logs":[]}`, w.Body.String())
}

func TestRosterAndAlerts(t *testing.T) {
	s := newTestServer(t, &stubUpstream{})

	w := do(t, s, http.MethodGet, "/api/roster", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Soldiers []struct {
			ID     string            `json:"id"`
			Hazard roster.Assessment `json:"hazard"`
		} `json:"soldiers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Soldiers, 4)
	assert.Equal(t, "ARMY-701", body.Soldiers[0].ID)
	assert.NotEmpty(t, body.Soldiers[0].Hazard.Level)

	w = do(t, s, http.MethodGet, "/api/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"alerts":[]}`, w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, &stubUpstream{})

	w := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	_ = do(t, s, http.MethodPost, "/api/analyze-soldier", subjectJSON)
	w = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.EqualValues(t, 3, m["requests_total"])
	a, ok := m["analysis"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, a["upstream_calls"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &stubUpstream{})
	req := httptest.NewRequest(http.MethodOptions, "/api/briefing", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListenAndServeShutsDown(t *testing.T) {
	svc := analysis.New(analysis.Deps{Upstream: &stubUpstream{}, Store: cache.NewMemory()})
	s := New(Options{Listen: "127.0.0.1:0"}, svc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
