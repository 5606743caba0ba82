package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sustactical/squadlink/pkg/analysis"
	"github.com/sustactical/squadlink/pkg/models"
	"github.com/sustactical/squadlink/pkg/roster"
)

const maxBodyBytes = 1 << 20

var requiredSubjectFields = []string{"id", "rank", "name", "vitals", "environment", "location"}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid soldier payload: body must be a JSON object")
		return
	}
	for _, f := range requiredSubjectFields {
		if v, ok := raw[f]; !ok || string(v) == "null" {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid soldier payload: %s is required", f))
			return
		}
	}
	subject, err := decodeSubject(raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid soldier payload: "+err.Error())
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	res, cached, err := s.analyzer.Analyze(r.Context(), subject, force)
	if errors.Is(err, analysis.ErrInvalidSubject) {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("analyze failed", zap.String("soldier_id", subject.ID), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "server error")
		return
	}

	if cached {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeSubject(raw map[string]json.RawMessage) (models.Subject, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return models.Subject{}, err
	}
	var subject models.Subject
	if err := json.Unmarshal(b, &subject); err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

type briefingRequest struct {
	Subjects json.RawMessage `json:"subjects"`
	Soldiers json.RawMessage `json:"soldiers"`
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	var req briefingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid payload: subjects[] required")
		return
	}
	list := req.Subjects
	if len(list) == 0 {
		list = req.Soldiers
	}
	var subjects []models.Subject
	if len(list) == 0 || list[0] != '[' || json.Unmarshal(list, &subjects) != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid payload: subjects[] required")
		return
	}

	writeJSON(w, http.StatusOK, models.Briefing{Text: s.analyzer.Briefing(r.Context(), subjects)})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.analyzer.Logs(r.Context())
	if err != nil {
		s.logger.Error("read analysis logs", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

type rosterEntry struct {
	models.Subject
	Hazard roster.Assessment `json:"hazard"`
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	out := []rosterEntry{}
	if s.roster != nil {
		for _, subj := range s.roster.Snapshot() {
			out = append(out, rosterEntry{Subject: subj, Hazard: roster.Assess(subj)})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"soldiers": out})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := []models.Alert{}
	if s.roster != nil {
		alerts = s.roster.Alerts()
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := map[string]string{"audit": "ok"}
	if err := s.analyzer.Ping(ctx); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
		checks["audit"] = err.Error()
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.metrics.snapshot()
	if st, err := s.analyzer.Stats(r.Context()); err == nil {
		m["analysis"] = st
	}
	writeJSON(w, http.StatusOK, m)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"type":"squadlink_error","code":%d}}`, message, code)
}
