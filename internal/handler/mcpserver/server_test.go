package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

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

func newTestServer(t *testing.T, h http.HandlerFunc) *Server {
	t.Helper()
	upstream := httptest.NewServer(h)
	t.Cleanup(upstream.Close)

	client := porkbun.NewClient(porkbun.Options{APIKey: "pk1_test", SecretKey: "sk1_test", BaseURL: upstream.URL})
	store := storage.NewStateStorage(filepath.Join(t.TempDir(), "state.json"), nil)
	uc := usecase.NewRegistrarUsecase(
		client,
		repository.NewCooldownRepository(store, nil, nil),
		repository.NewPricingRepository(client, store, nil, nil),
		nil,
	)
	return NewServer(tools.NewRegistry(uc), nil)
}

func TestCall_Success(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"SUCCESS","yourIp":"203.0.113.7"}`))
	})

	text, isError := s.call(context.Background(), "ping", nil)
	require.False(t, isError, text)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, "203.0.113.7", got["yourIp"])
}

func TestCall_Errors(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"ERROR","message":"Invalid API key. (002)"}`))
	})

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
		want string
	}{
		{name: "upstream", tool: "listDomains", want: "API error: Invalid API key. (002)"},
		{name: "validation", tool: "checkAvailability", args: map[string]interface{}{"domain": "nodot"}, want: "Domain validation error: "},
		{name: "unknown tool", tool: "transferDomain", want: "transferDomain failed: unknown tool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isError := s.call(context.Background(), tt.tool, tt.args)
			assert.True(t, isError)
			assert.Contains(t, text, tt.want)
		})
	}
}
