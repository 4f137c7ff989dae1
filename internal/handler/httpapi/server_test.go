package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinko/swinelink/external_resource/porkbun"
	"github.com/thinko/swinelink/internal/handler"
	"github.com/thinko/swinelink/internal/handler/tools"
	"github.com/thinko/swinelink/internal/repository"
	"github.com/thinko/swinelink/internal/usecase"
	"github.com/thinko/swinelink/pkg/storage"
)

var _ handler.Server = (*Server)(nil)

// newTestServer wires the full stack against a fake Porkbun upstream
func newTestServer(t *testing.T, keys *APIKeyStore, upstream http.HandlerFunc) *Server {
	t.Helper()
	if upstream == nil {
		upstream = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"SUCCESS","yourIp":"203.0.113.7"}`))
		}
	}
	fake := httptest.NewServer(upstream)
	t.Cleanup(fake.Close)

	client := porkbun.NewClient(porkbun.Options{APIKey: "pk1_test", SecretKey: "sk1_test", BaseURL: fake.URL})
	store := storage.NewStateStorage(filepath.Join(t.TempDir(), "state.json"), nil)
	uc := usecase.NewRegistrarUsecase(
		client,
		repository.NewCooldownRepository(store, nil, nil),
		repository.NewPricingRepository(client, store, nil, nil),
		nil,
	)
	if keys == nil {
		keys = NewAPIKeyStore("", nil, nil, nil)
	}
	s := NewServer(tools.NewRegistry(uc), keys, "0", nil)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6000000, time.UTC) }
	return s
}

func do(t *testing.T, s *Server, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "swinelink MCP server", body["service"])
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, float64(26), body["tools"])

	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestUnknownPath(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, _ := do(t, s, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToolsAndManifest(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodGet, "/mcp/tools", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := body["tools"].([]any)
	require.Len(t, list, 26)

	var check map[string]any
	for _, item := range list {
		if m := item.(map[string]any); m["id"] == "checkAvailability" {
			check = m
		}
	}
	require.NotNil(t, check)
	assert.Equal(t, "CheckDomainAvailability", check["name"])
	assert.Equal(t, []any{"domain"}, check["requiredParams"])

	rec, body = do(t, s, http.MethodGet, "/mcp/manifest", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "swinelink", body["name"])
	assert.NotEmpty(t, body["version"])
	assert.Len(t, body["tools"], 26)

	rec, _ = do(t, s, http.MethodPost, "/mcp/tools", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestInvoke(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodPost, "/mcp/invoke", `{"tool":"ping","arguments":{}}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ping", body["tool"])
	assert.Equal(t, "203.0.113.7", body["result"].(map[string]any)["yourIp"])
}

func TestInvoke_UnknownTool(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodPost, "/mcp/invoke", `{"tool":"transferDomain"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unknown tool: transferDomain", body["error"])
	assert.Contains(t, body["availableTools"], "ping")
}

func TestInvoke_InvalidJSON(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodPost, "/mcp/invoke", `{"tool":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "Invalid JSON")
}

func TestInvoke_ValidationError(t *testing.T) {
	s := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call to %s", r.URL.Path)
	})

	rec, body := do(t, s, http.MethodPost, "/mcp/invoke", `{"tool":"checkAvailability","arguments":{"domain":"-bad-.com"}}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "checkAvailability", body["tool"])
	assert.Contains(t, body["error"], "Domain")
	assert.Equal(t, "2026-01-02T03:04:05.006Z", body["timestamp"])
}

func TestInvoke_UpstreamError(t *testing.T) {
	s := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"ERROR","message":"Invalid API key. (002)"}`))
	})

	rec, body := do(t, s, http.MethodPost, "/mcp/invoke", `{"tool":"listDomains"}`, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, map[string]any{"status": "ERROR", "message": "Invalid API key. (002)"}, body["error"])
}

func TestInvoke_RateLimited(t *testing.T) {
	s := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"SUCCESS","response":{"avail":"yes"}}`))
	})
	invoke := `{"tool":"checkAvailability","arguments":{"domain":"example.com"}}`

	rec, _ := do(t, s, http.MethodPost, "/mcp/invoke", invoke, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, s, http.MethodPost, "/mcp/invoke", invoke, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "ERROR", errBody["status"])
	assert.Contains(t, errBody["message"], "Please wait")
}

func TestAuth(t *testing.T) {
	keys := NewAPIKeyStore("mgmt-secret", []string{"client-key"}, nil, nil)
	s := newTestServer(t, keys, nil)

	rec, _ := do(t, s, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health stays open")

	rec, body := do(t, s, http.MethodGet, "/mcp/tools", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing Authorization header", body["error"])

	rec, _ = do(t, s, http.MethodGet, "/mcp/tools", "", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/mcp/tools", nil)
	req.Header.Set("Authorization", "Basic client-key")
	raw := httptest.NewRecorder()
	s.Handler().ServeHTTP(raw, req)
	assert.Equal(t, http.StatusUnauthorized, raw.Code)

	rec, _ = do(t, s, http.MethodGet, "/mcp/tools", "", "client-key")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminKeys(t *testing.T) {
	persisted := storage.NewJSONStorage(t.TempDir())
	keys := NewAPIKeyStore("mgmt-secret", []string{"client-key"}, persisted, nil)
	s := newTestServer(t, keys, nil)

	rec, body := do(t, s, http.MethodGet, "/admin/keys", "", "client-key")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Management key required", body["error"])

	rec, body = do(t, s, http.MethodPost, "/admin/keys/generate", `{"name":"ci"}`, "mgmt-secret")
	require.Equal(t, http.StatusOK, rec.Code)
	generated := body["data"].(map[string]any)
	newKey := generated["key"].(string)
	assert.True(t, strings.HasPrefix(newKey, "sl_"))
	assert.Equal(t, "ci", generated["name"])

	rec, _ = do(t, s, http.MethodGet, "/mcp/tools", "", newKey)
	assert.Equal(t, http.StatusOK, rec.Code, "generated key is accepted")

	rec, body = do(t, s, http.MethodGet, "/admin/keys", "", "mgmt-secret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 2)

	rec, _ = do(t, s, http.MethodDelete, "/admin/keys?key="+newKey, "", "mgmt-secret")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/mcp/tools", "", newKey)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "revoked key is rejected")
}
