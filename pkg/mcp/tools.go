package mcp

import (
	"context"
	"encoding/json"
)

type analyzeArgs struct {
	SoldierID string `json:"soldier_id"`
	Force     bool   `json:"force"`
}

type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

var toolHandlers = map[string]toolHandler{
	"squadlink_roster":   handleRoster,
	"squadlink_analyze":  handleAnalyze,
	"squadlink_briefing": handleBriefing,
	"squadlink_logs":     handleLogs,
	"squadlink_alerts":   handleAlerts,
	"squadlink_stats":    handleStats,
}

var noArgs = map[string]any{"type": "object", "properties": map[string]any{}}

var allTools = []ToolDefinition{
	{
		Name:        "squadlink_roster",
		Description: "List every monitored soldier with status, key vitals and hazard level.",
		InputSchema: noArgs,
	},
	{
		Name:        "squadlink_analyze",
		Description: "Get a tactical analysis (status summary, health risk, immediate action) for one soldier.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"soldier_id"},
			"properties": map[string]any{
				"soldier_id": map[string]any{
					"type":        "string",
					"description": "Roster id, e.g. ARMY-842",
				},
				"force": map[string]any{
					"type":        "boolean",
					"description": "Bypass the analysis cache (optional)",
				},
			},
		},
	},
	{
		Name:        "squadlink_briefing",
		Description: "Get a short readiness briefing for the whole squad.",
		InputSchema: noArgs,
	},
	{
		Name:        "squadlink_logs",
		Description: "Show the most recent logged analyses, newest first.",
		InputSchema: noArgs,
	},
	{
		Name:        "squadlink_alerts",
		Description: "Show recent distress and telemetry-loss alerts, newest first.",
		InputSchema: noArgs,
	},
	{
		Name:        "squadlink_stats",
		Description: "Show cache hit/miss counts, upstream calls and degraded results.",
		InputSchema: noArgs,
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{Content: []ContentBlock{{Type: "text", Text: text}}}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{Content: []ContentBlock{{Type: "text", Text: text}}, IsError: true}
}

func handleRoster(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	return textResult(formatRoster(s.roster.Snapshot()))
}

func handleAnalyze(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args analyzeArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.SoldierID == "" {
		return errorResult("soldier_id is required")
	}
	subject, ok := s.roster.Get(args.SoldierID)
	if !ok {
		return errorResult("unknown soldier: " + args.SoldierID)
	}
	res, cached, err := s.analyzer.Analyze(ctx, subject, args.Force)
	if err != nil {
		return errorResult("Error analyzing soldier: " + err.Error())
	}
	return textResult(formatAnalysis(subject, res, cached))
}

func handleBriefing(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	return textResult(s.analyzer.Briefing(ctx, s.roster.Snapshot()))
}

func handleLogs(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	logs, err := s.analyzer.Logs(ctx)
	if err != nil {
		return errorResult("Error fetching logs: " + err.Error())
	}
	return textResult(formatLogs(logs))
}

func handleAlerts(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	return textResult(formatAlerts(s.roster.Alerts()))
}

func handleStats(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	st, err := s.analyzer.Stats(ctx)
	if err != nil {
		return errorResult("Error fetching stats: " + err.Error())
	}
	return textResult(formatStats(st))
}
