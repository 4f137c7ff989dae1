package porkbun

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thinko/swinelink/internal/domain"
)

// capture records the last request the fake upstream saw.
type capture struct {
	path string
	body map[string]any
}

// newFakeServer replies with status and body and records what it received.
func newFakeServer(t *testing.T, status int, body any) (*httptest.Server, *capture) {
	t.Helper()
	got := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json content type, got %q", ct)
		}
		got.path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got.body); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if s, ok := body.(string); ok {
			_, _ = w.Write([]byte(s))
			return
		}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Fatalf("failed to encode test response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newTestClient(serverURL string) Client {
	return NewClient(Options{
		APIKey:    "pk1_test",
		SecretKey: "sk1_test",
		BaseURL:   serverURL,
	})
}

func TestPost_SignsBody(t *testing.T) {
	srv, got := newFakeServer(t, http.StatusOK, map[string]any{"status": "SUCCESS", "yourIp": "203.0.113.9"})
	c := newTestClient(srv.URL)

	resp, err := c.Post(context.Background(), "/dns/create/example.com", map[string]any{
		"name":    "www",
		"type":    "A",
		"content": "1.2.3.4",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got.path != "/dns/create/example.com" {
		t.Errorf("path = %q, want /dns/create/example.com", got.path)
	}
	wantBody := map[string]any{
		"apikey":       "pk1_test",
		"secretapikey": "sk1_test",
		"name":         "www",
		"type":         "A",
		"content":      "1.2.3.4",
	}
	if diff := cmp.Diff(wantBody, got.body); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
	if resp.Status() != "SUCCESS" {
		t.Errorf("Status() = %q, want SUCCESS", resp.Status())
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}

func TestPost_CredentialsCannotBeOverridden(t *testing.T) {
	srv, got := newFakeServer(t, http.StatusOK, map[string]any{"status": "SUCCESS"})
	c := newTestClient(srv.URL)

	_, err := c.Post(context.Background(), "/ping", map[string]any{
		"apikey":       "attacker",
		"secretapikey": "attacker",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.body["apikey"] != "pk1_test" || got.body["secretapikey"] != "sk1_test" {
		t.Errorf("credentials were overridden: %v", got.body)
	}
}

func TestPost_NilBody(t *testing.T) {
	srv, got := newFakeServer(t, http.StatusOK, map[string]any{"status": "SUCCESS"})
	c := newTestClient(srv.URL)

	if _, err := c.Post(context.Background(), "/ping", nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got.body) != 2 {
		t.Errorf("expected only credentials in body, got %v", got.body)
	}
}

func TestPost_UpstreamErrorCarriesBody(t *testing.T) {
	upstream := map[string]any{"status": "ERROR", "message": "Invalid API key. (002)"}
	srv, _ := newFakeServer(t, http.StatusBadRequest, upstream)
	c := newTestClient(srv.URL)

	_, err := c.Post(context.Background(), "/ping", nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if diff := cmp.Diff(upstream, apiErr.ResponseData()); diff != "" {
		t.Errorf("ResponseData mismatch (-want +got):\n%s", diff)
	}
	if apiErr.Error() != "porkbun: Invalid API key. (002) (HTTP 400)" {
		t.Errorf("unexpected message: %q", apiErr.Error())
	}
}

// The HTTP status decides success; a 2xx ERROR body is handed back as data.
func TestPost_ErrorBodyWithSuccessStatus(t *testing.T) {
	upstream := map[string]any{"status": "ERROR", "message": "Domain is not eligible."}
	srv, _ := newFakeServer(t, http.StatusOK, upstream)
	c := newTestClient(srv.URL)

	resp, err := c.Post(context.Background(), "/domain/checkDomain/example.com", nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if diff := cmp.Diff(upstream, resp.Data); diff != "" {
		t.Errorf("Data mismatch (-want +got):\n%s", diff)
	}
}

func TestPost_NonJSONError(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusBadGateway, "<html>bad gateway</html>")
	c := newTestClient(srv.URL)

	_, err := c.Post(context.Background(), "/ping", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Data != nil {
		t.Errorf("expected no upstream body, got %v", apiErr.Data)
	}
	data := apiErr.ResponseData()
	if data["status"] != "ERROR" {
		t.Errorf("expected synthesized ERROR body, got %v", data)
	}
}

func TestPost_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	_, err := c.Post(context.Background(), "/ping", nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Err == nil {
		t.Fatalf("expected APIError wrapping the transport error, got %v", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Options{}).(*httpClient)
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
	if c.client.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", c.client.Timeout, defaultTimeout)
	}
}
