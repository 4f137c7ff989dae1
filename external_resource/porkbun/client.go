package porkbun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultBaseURL is the production v3 JSON API.
	DefaultBaseURL = "https://api.porkbun.com/api/json/v3"
	defaultTimeout = 30 * time.Second
	maxBodySize    = 8 << 20
)

// Options configures the HTTP client.
type Options struct {
	APIKey    string
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
	Logger    hclog.Logger

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// httpClient implements Client over net/http.
type httpClient struct {
	apiKey    string
	secretKey string
	baseURL   string
	client    *http.Client
	logger    hclog.Logger
}

// Compile-time check that httpClient satisfies Client.
var _ Client = (*httpClient)(nil)

// NewClient creates a Porkbun API client.
func NewClient(opts Options) Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &httpClient{
		apiKey:    opts.APIKey,
		secretKey: opts.SecretKey,
		baseURL:   baseURL,
		client:    client,
		logger:    logger,
	}
}

// signedBody copies the caller's fields and then sets the credentials, so a
// caller can never override them.
func (c *httpClient) signedBody(body map[string]any) map[string]any {
	out := make(map[string]any, len(body)+2)
	for k, v := range body {
		out[k] = v
	}
	out["apikey"] = c.apiKey
	out["secretapikey"] = c.secretKey
	return out
}

// Post sends a signed JSON POST and decodes the JSON reply.
func (c *httpClient) Post(ctx context.Context, path string, body map[string]any) (*Response, error) {
	data, err := json.Marshal(c.signedBody(body))
	if err != nil {
		return nil, fmt.Errorf("porkbun: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("porkbun: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("request", "path", path)
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "path", path, "error", err)
		return nil, &APIError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("response", "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	payload := decodeObject(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Data: payload}
		if payload == nil {
			apiErr.Err = fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet(raw))
		}
		return nil, apiErr
	}

	if payload == nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %s", snippet(raw)),
		}
	}

	return &Response{StatusCode: resp.StatusCode, Data: payload}, nil
}

// decodeObject returns nil when raw is not a JSON object.
func decodeObject(raw []byte) map[string]any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "empty body"
	}
	return s
}
