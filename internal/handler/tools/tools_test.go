package tools

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinko/swinelink/external_resource/porkbun"
	"github.com/thinko/swinelink/internal/domain"
	"github.com/thinko/swinelink/internal/repository"
	"github.com/thinko/swinelink/internal/usecase"
	"github.com/thinko/swinelink/pkg/storage"
)

type call struct {
	path string
	body map[string]any
}

// recordingClient is a porkbun.Client that answers SUCCESS and records calls.
type recordingClient struct {
	calls []call
	err   error
}

func (c *recordingClient) Post(_ context.Context, path string, body map[string]any) (*porkbun.Response, error) {
	c.calls = append(c.calls, call{path: path, body: body})
	if c.err != nil {
		return nil, c.err
	}
	return &porkbun.Response{StatusCode: 200, Data: map[string]any{"status": "SUCCESS"}}, nil
}

func newRegistry(t *testing.T) (*Registry, *recordingClient) {
	t.Helper()
	client := &recordingClient{}
	store := storage.NewStateStorage(filepath.Join(t.TempDir(), "state.json"), nil)
	uc := usecase.NewRegistrarUsecase(
		client,
		repository.NewCooldownRepository(store, nil, nil),
		repository.NewPricingRepository(client, store, nil, nil),
		nil,
	)
	return NewRegistry(uc), client
}

func TestRegistry_CatalogueIsComplete(t *testing.T) {
	r, _ := newRegistry(t)

	want := []string{
		"checkAvailability", "createDnssecRecord", "createGlueRecord",
		"deleteDnssecRecord", "deleteGlueRecord",
		"dnsCreateRecord", "dnsDeleteRecord", "dnsDeleteRecordByNameType",
		"dnsListRecords", "dnsRetrieveRecord", "dnsRetrieveRecordByNameType",
		"dnsUpdateRecord", "dnsUpdateRecordByNameType",
		"getDnssecRecords", "getGlueRecords", "getNameservers", "getPricing",
		"listDomains", "ping", "registerDomain", "sslRetrieve",
		"updateGlueRecord", "updateNameservers",
		"urlForwardingCreate", "urlForwardingDelete", "urlForwardingList",
	}
	if diff := cmp.Diff(want, r.Names()); diff != "" {
		t.Errorf("tool names mismatch (-want +got):\n%s", diff)
	}

	for _, tool := range r.Tools() {
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.Equal(t, "object", tool.InputSchema["type"], tool.Name)
		assert.NotNil(t, tool.Handler, tool.Name)
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	r, client := newRegistry(t)
	_, err := r.Call(context.Background(), "transferDomain", nil)
	assert.True(t, errors.Is(err, domain.ErrUnknownTool))
	assert.Empty(t, client.calls)
}

func TestRegistry_DNSCreateRecord(t *testing.T) {
	r, client := newRegistry(t)

	_, err := r.Call(context.Background(), "dnsCreateRecord", map[string]any{
		"domain": "example.com",
		"record": map[string]any{"name": "www", "type": "a", "content": "1.2.3.4", "ttl": float64(600)},
	})
	require.NoError(t, err)
	require.Len(t, client.calls, 1)
	assert.Equal(t, "/dns/create/example.com", client.calls[0].path)
	assert.Equal(t, map[string]any{
		"name":    "www",
		"type":    "A",
		"content": "1.2.3.4",
		"ttl":     float64(600),
	}, client.calls[0].body)
}

func TestRegistry_DNSRecordPassedThrough(t *testing.T) {
	r, client := newRegistry(t)

	_, err := r.Call(context.Background(), "dnsCreateRecord", map[string]any{
		"domain": "example.com",
		"record": map[string]any{
			"type":    "MX",
			"content": "  mail.example.com  ",
			"prio":    float64(0),
			"ttl":     float64(600),
			"extra":   "x",
		},
	})
	require.NoError(t, err)
	_, err = r.Call(context.Background(), "dnsUpdateRecordByNameType", map[string]any{
		"domain": "example.com",
		"type":   "TXT",
		"record": map[string]any{"content": " v=spf1  include:example.net -all "},
	})
	require.NoError(t, err)

	want := []call{
		{path: "/dns/create/example.com", body: map[string]any{
			"name":    "",
			"type":    "MX",
			"content": "  mail.example.com  ",
			"prio":    float64(0),
			"ttl":     float64(600),
			"extra":   "x",
		}},
		{path: "/dns/editByNameType/example.com/TXT/", body: map[string]any{
			"name":    "",
			"content": " v=spf1  include:example.net -all ",
		}},
	}
	if diff := cmp.Diff(want, client.calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_BlankContentRejected(t *testing.T) {
	r, client := newRegistry(t)
	_, err := r.Call(context.Background(), "dnsCreateRecord", map[string]any{
		"domain": "example.com",
		"record": map[string]any{"type": "TXT", "content": "   "},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Empty(t, client.calls)
}

func TestRegistry_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args map[string]any
	}{
		{name: "missing domain", tool: "dnsListRecords", args: map[string]any{}},
		{name: "missing record", tool: "dnsCreateRecord", args: map[string]any{"domain": "example.com"}},
		{name: "bad record type", tool: "dnsCreateRecord", args: map[string]any{
			"domain": "example.com", "record": map[string]any{"type": "BOGUS", "content": "x"},
		}},
		{name: "fractional ttl", tool: "dnsCreateRecord", args: map[string]any{
			"domain": "example.com", "record": map[string]any{"type": "A", "content": "x", "ttl": 1.5},
		}},
		{name: "missing id", tool: "dnsDeleteRecord", args: map[string]any{"domain": "example.com"}},
		{name: "nameservers not strings", tool: "updateNameservers", args: map[string]any{
			"domain": "example.com", "nameservers": []any{1, 2},
		}},
		{name: "bad forward type", tool: "urlForwardingCreate", args: map[string]any{
			"domain": "example.com", "record": map[string]any{"location": "https://x.test", "type": "sideways"},
		}},
		{name: "dnssec without key tag", tool: "createDnssecRecord", args: map[string]any{
			"domain": "example.com", "record": map[string]any{"alg": "13"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, client := newRegistry(t)
			_, err := r.Call(context.Background(), tt.tool, tt.args)
			assert.True(t, errors.Is(err, domain.ErrInvalidArgument), "got %v", err)
			assert.Empty(t, client.calls)
		})
	}
}

func TestRegistry_ForwardDefaults(t *testing.T) {
	r, client := newRegistry(t)

	_, err := r.Call(context.Background(), "urlForwardingCreate", map[string]any{
		"domain": "example.com",
		"record": map[string]any{"location": "https://example.net", "wildcard": true},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"subdomain":   "",
		"location":    "https://example.net",
		"type":        "temporary",
		"includePath": "yes",
		"wildcard":    "yes",
	}, client.calls[0].body)
}

func TestRegistry_DNSSECAliases(t *testing.T) {
	r, client := newRegistry(t)

	_, err := r.Call(context.Background(), "createDnssecRecord", map[string]any{
		"domain": "example.com",
		"record": map[string]any{"tag": float64(64087), "alg": float64(13), "flags": float64(257), "key": "AwEAAa=="},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"keyTag":        "64087",
		"alg":           "13",
		"keyDataFlags":  "257",
		"keyDataPubKey": "AwEAAa==",
	}, client.calls[0].body)
}

func TestRegistry_NameserversFromString(t *testing.T) {
	r, client := newRegistry(t)

	_, err := r.Call(context.Background(), "updateNameservers", map[string]any{
		"domain":      "example.com",
		"nameservers": "ns1.example.com, ns2.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ns1.example.com", "ns2.example.com"}, client.calls[0].body["ns"])
}

func TestRegistry_IDNDomain(t *testing.T) {
	r, client := newRegistry(t)

	_, err := r.Call(context.Background(), "dnsListRecords", map[string]any{"domain": "bücher.de"})
	require.NoError(t, err)
	assert.Equal(t, "/dns/retrieve/xn--bcher-kva.de", client.calls[0].path)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation",
			err:  &domain.InvalidDomainError{Reason: "Domain must be a non-empty string"},
			want: "Domain validation error: Domain validation failed: Domain must be a non-empty string",
		},
		{
			name: "upstream",
			err:  &porkbun.APIError{StatusCode: 400, Data: map[string]any{"status": "ERROR", "message": "Invalid API key. (002)"}},
			want: "API error: Invalid API key. (002)",
		},
		{
			name: "rate limit",
			err:  &domain.RateLimitError{TimeLeft: 4},
			want: "API error: Please wait 4 seconds before checking another domain.",
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: "ping failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage("ping", tt.err))
		})
	}
}
