// Package mcp exposes squad monitoring to LLM assistants as a Model Context
// Protocol server over stdio.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/sustactical/squadlink/pkg/analysis"
	"github.com/sustactical/squadlink/pkg/models"
)

// Analyzer is the subset of the analysis service the tools call.
type Analyzer interface {
	Analyze(ctx context.Context, s models.Subject, forceRefresh bool) (models.AnalysisResult, bool, error)
	Briefing(ctx context.Context, subjects []models.Subject) string
	Logs(ctx context.Context) ([]models.AnalysisLog, error)
	Stats(ctx context.Context) (analysis.Stats, error)
}

// Roster is the read side of the telemetry simulator.
type Roster interface {
	Snapshot() []models.Subject
	Get(id string) (models.Subject, bool)
	Alerts() []models.Alert
}

// Server answers one JSON-RPC message per line.
type Server struct {
	analyzer Analyzer
	roster   Roster
	version  string
	logger   *zap.Logger
}

func New(a Analyzer, r Roster, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{analyzer: a, roster: r, version: version, logger: logger}
}

// Run reads requests from r until EOF or ctx is cancelled, writing responses to w.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(w, Response{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: CodeParseError, Message: "parse error"},
			})
			continue
		}

		if resp := s.dispatch(ctx, &req); resp != nil {
			s.write(w, *resp)
		}
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: InitializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      ServerInfo{Name: "squadlink", Version: s.version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		}}
	case "notifications/initialized":
		return nil
	case "tools/list":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: ToolsListResult{Tools: allTools}}
	case "tools/call":
		return s.callTool(ctx, req)
	default:
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}
}

func (s *Server) callTool(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeInvalidParams, Message: "invalid params"},
		}
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: errorResult("unknown tool: " + params.Name)}
	}
	s.logger.Debug("mcp tool call", zap.String("tool", params.Name))
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: handler(ctx, s, params.Arguments)}
}

func (s *Server) write(w io.Writer, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("mcp marshal failed", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		s.logger.Error("mcp write failed", zap.Error(err))
	}
}
