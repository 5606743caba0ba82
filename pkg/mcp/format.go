package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/sustactical/squadlink/pkg/analysis"
	"github.com/sustactical/squadlink/pkg/models"
	"github.com/sustactical/squadlink/pkg/roster"
)

func formatRoster(subjects []models.Subject) string {
	if len(subjects) == 0 {
		return "No soldiers on the roster."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-24s %-9s %5s %5s %8s %s\n", "ID", "Name", "Status", "HR", "SpO2", "Battery", "Hazard")
	for _, s := range subjects {
		a := roster.Assess(s)
		fmt.Fprintf(&b, "%-10s %-24s %-9s %5.0f %5.0f %7.1f%% %s",
			s.ID, s.Rank+" "+s.Name, s.Status, s.Vitals.HeartRate, s.Vitals.SpO2, s.Power.BatteryLevel, a.Level)
		if len(a.Reasons) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(a.Reasons, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatAnalysis(s models.Subject, r models.AnalysisResult, cached bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s), %s\n", s.Rank, s.Name, s.ID, s.Status)
	fmt.Fprintf(&b, "Summary: %s\n", r.StatusSummary)
	fmt.Fprintf(&b, "Risk:    %s\n", r.HealthRisk)
	fmt.Fprintf(&b, "Action:  %s\n", r.ImmediateAction)
	switch {
	case r.ErrorType == models.ErrorRateLimit:
		b.WriteString("Note: upstream quota exhausted, local heuristics used.\n")
	case r.IsError:
		b.WriteString("Note: upstream unavailable, placeholder assessment.\n")
	case cached:
		b.WriteString("Note: served from cache.\n")
	}
	return b.String()
}

func formatLogs(logs []models.AnalysisLog) string {
	if len(logs) == 0 {
		return "No analyses logged."
	}
	var b strings.Builder
	for _, l := range logs {
		fmt.Fprintf(&b, "[%s] %s: %s | risk: %s | action: %s\n",
			l.CreatedAt.Format(time.RFC3339), l.SoldierID, l.StatusSummary, l.HealthRisk, l.ImmediateAction)
	}
	return b.String()
}

func formatAlerts(alerts []models.Alert) string {
	if len(alerts) == 0 {
		return "No alerts."
	}
	var b strings.Builder
	for _, a := range alerts {
		fmt.Fprintf(&b, "[%s] %s %s: %s\n",
			time.UnixMilli(a.Timestamp).UTC().Format(time.RFC3339), a.Severity, a.Type, a.Message)
	}
	return b.String()
}

func hitRate(c models.CacheStats) float64 {
	total := c.Hits + c.Misses
	if total == 0 {
		return 0
	}
	return float64(c.Hits) / float64(total) * 100
}

func formatStats(st analysis.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis cache: %d entries, %d hits, %d misses (%.1f%% hit rate)\n",
		st.Analysis.Entries, st.Analysis.Hits, st.Analysis.Misses, hitRate(st.Analysis))
	fmt.Fprintf(&b, "Briefing cache: %d entries, %d hits, %d misses (%.1f%% hit rate)\n",
		st.Briefing.Entries, st.Briefing.Hits, st.Briefing.Misses, hitRate(st.Briefing))
	fmt.Fprintf(&b, "Upstream calls: %d\nDegraded results: %d\nAudit failures: %d\n",
		st.UpstreamCalls, st.Degraded, st.AuditFailures)
	return b.String()
}
