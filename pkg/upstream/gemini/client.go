// Package gemini implements upstream.Client on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/sustactical/squadlink/pkg/models"
	"github.com/sustactical/squadlink/pkg/upstream"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-3-flash-preview"

// Config configures a Client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the Gemini API. One GenerateContent request per operation;
// retries are left to the caller.
type Client struct {
	client *genai.Client
	model  string
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"status_summary":   {Type: genai.TypeString},
		"health_risk":      {Type: genai.TypeString},
		"immediate_action": {Type: genai.TypeString},
	},
	Required: upstream.AnalysisFields,
}

// New creates a Gemini client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Model() string { return c.model }

// Analyze asks for a schema-constrained JSON assessment of s.
func (c *Client) Analyze(ctx context.Context, s models.Subject) (models.AnalysisResult, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(upstream.AnalysisPrompt(s)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema,
	})
	if err != nil {
		return models.AnalysisResult{}, wrapError(err)
	}
	return upstream.ParseAnalysis(resp.Text())
}

// Brief asks for a plain-text squad briefing. Thinking is disabled to keep latency low.
func (c *Client) Brief(ctx context.Context, subjects []models.Subject) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(upstream.BriefingPrompt(subjects)), &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
	if err != nil {
		return "", wrapError(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", upstream.ErrEmptyResponse
	}
	return text, nil
}

func wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &upstream.Error{Provider: "gemini", StatusCode: apiErr.Code, Err: err}
	}
	return fmt.Errorf("gemini: %w", err)
}
