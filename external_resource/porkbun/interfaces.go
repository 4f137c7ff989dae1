package porkbun

import (
	"context"
	"fmt"

	"github.com/thinko/swinelink/internal/domain"
)

// Client defines the transport for the Porkbun JSON API.
type Client interface {
	// Post sends body to baseURL+path with the account credentials merged in.
	// It is called at most once per operation and never retries.
	Post(ctx context.Context, path string, body map[string]any) (*Response, error)
}

// Response is a successful (2xx) upstream reply.
type Response struct {
	StatusCode int
	Data       map[string]any
}

// Status returns the upstream "status" field, usually SUCCESS or ERROR.
func (r *Response) Status() string {
	if r == nil {
		return ""
	}
	s, _ := r.Data["status"].(string)
	return s
}

// APIError is returned for non-2xx replies and for requests that never got
// a reply. Data holds the upstream body when one was received.
type APIError struct {
	StatusCode int
	Data       map[string]any
	Err        error
}

func (e *APIError) Error() string {
	if msg, ok := e.Data["message"].(string); ok && msg != "" {
		if e.StatusCode > 0 {
			return fmt.Sprintf("porkbun: %s (HTTP %d)", msg, e.StatusCode)
		}
		return "porkbun: " + msg
	}
	if e.Err != nil {
		return "porkbun: request failed: " + e.Err.Error()
	}
	return fmt.Sprintf("porkbun: unexpected HTTP status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Is(target error) bool {
	return target == domain.ErrUpstream
}

// ResponseData returns the upstream body, or an ERROR body built from the
// failure when nothing came back.
func (e *APIError) ResponseData() map[string]any {
	if e.Data != nil {
		return e.Data
	}
	return map[string]any{
		"status":  "ERROR",
		"message": e.Error(),
	}
}
