// Package upstream defines the generative-language API used for tactical
// analysis and classifies the errors it returns.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sustactical/squadlink/pkg/models"
)

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("empty upstream response")

// ErrMalformedResponse is returned when the analysis JSON is missing or invalid.
var ErrMalformedResponse = errors.New("malformed upstream response")

// Client issues a single network call per request.
type Client interface {
	// Analyze returns a structured tactical assessment for one subject.
	Analyze(ctx context.Context, s models.Subject) (models.AnalysisResult, error)
	// Brief returns a short free-text readiness briefing for the whole roster.
	Brief(ctx context.Context, subjects []models.Subject) (string, error)
	// Model names the upstream model, recorded with each logged analysis.
	Model() string
}

// StatusCoder is implemented by errors that carry the upstream HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// Error wraps a provider error together with the HTTP status it failed with.
type Error struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int { return e.StatusCode }

// StatusCode extracts the upstream HTTP status from err, if any.
func StatusCode(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) && sc.HTTPStatus() > 0 {
		return sc.HTTPStatus(), true
	}
	return 0, false
}

// Classify maps an upstream failure onto the closed ErrorType set.
// A structured status code wins; message sniffing is only used when the
// error carries no status at all.
func Classify(err error) models.ErrorType {
	if err == nil {
		return ""
	}
	if code, ok := StatusCode(err); ok {
		if code == http.StatusTooManyRequests {
			return models.ErrorRateLimit
		}
		return models.ErrorUpstreamOther
	}
	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED") {
		return models.ErrorRateLimit
	}
	return models.ErrorUpstreamOther
}

// IsRateLimited reports whether err means the provider is refusing requests for now.
func IsRateLimited(err error) bool {
	return Classify(err) == models.ErrorRateLimit
}
