package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpi/internal/config"
)

func fakeLookup(records map[string][]string) LookupTXTFunc {
	return func(ctx context.Context, name string) ([]string, error) {
		values, ok := records[name]
		if !ok {
			return nil, errors.New("no such host")
		}
		return values, nil
	}
}

func TestParseTXTRecord(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		wantVersion string
		wantURL     string
		wantErr     error
	}{
		{
			name:        "version and url",
			value:       "v=mcp1 url=https://api.example.com/mcpi/discover",
			wantVersion: "mcp1",
			wantURL:     "https://api.example.com/mcpi/discover",
		},
		{
			name:        "url only defaults version",
			value:       "url=https://api.example.com/mcpi/discover",
			wantVersion: "mcp1",
			wantURL:     "https://api.example.com/mcpi/discover",
		},
		{
			name:        "quoted record",
			value:       `"v=mcp2 url=http://localhost:3001/mcpi/discover"`,
			wantVersion: "mcp2",
			wantURL:     "http://localhost:3001/mcpi/discover",
		},
		{
			name:    "missing url",
			value:   "v=mcp1",
			wantErr: ErrMalformedRecord,
		},
		{
			name:    "unrelated record",
			value:   "google-site-verification=abc123",
			wantErr: ErrMalformedRecord,
		},
		{
			name:    "unsupported scheme",
			value:   "v=mcp1 url=ftp://example.com/mcpi",
			wantErr: ErrInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := ParseTXTRecord(tt.value)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, record.Version)
			assert.Equal(t, tt.wantURL, record.DiscoveryURL)
		})
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		name         string
		discoveryURL string
		want         string
	}{
		{
			name:         "https becomes wss",
			discoveryURL: "https://api.example.com/mcpi/discover",
			want:         "wss://api.example.com/mcpi",
		},
		{
			name:         "http becomes ws",
			discoveryURL: "http://localhost:3001/mcpi/discover",
			want:         "ws://localhost:3001/mcpi",
		},
		{
			name:         "already ws scheme",
			discoveryURL: "ws://localhost:3001/mcpi",
			want:         "ws://localhost:3001/mcpi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &Record{Version: "mcp1", DiscoveryURL: tt.discoveryURL}
			got, err := record.WebSocketURL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	resolver := NewResolver(WithLookupTXT(fakeLookup(map[string][]string{
		"_mcp.example.com": {
			"google-site-verification=abc123",
			"v=mcp1 url=https://api.example.com/mcpi/discover",
		},
	})))

	record, err := resolver.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "mcp1", record.Version)
	assert.Equal(t, "https://api.example.com/mcpi/discover", record.DiscoveryURL)
}

func TestResolveNoRecord(t *testing.T) {
	resolver := NewResolver(WithLookupTXT(fakeLookup(nil)))

	_, err := resolver.Resolve(context.Background(), "nothing.example.com")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestResolveAllMalformed(t *testing.T) {
	resolver := NewResolver(WithLookupTXT(fakeLookup(map[string][]string{
		"_mcp.example.com": {"v=mcp1", "spf1 include:_spf.example.com"},
	})))

	_, err := resolver.Resolve(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestFetchDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mcpi/discover", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"provider": {"name": "EcoShop", "domain": "ecoshop.example", "description": "Sustainable goods"},
			"mode": "active",
			"capabilities": [
				{"name": "product_search", "description": "Search products", "category": "commerce", "operations": ["SEARCH", "GET", "LIST"]}
			],
			"referrals": [
				{"name": "EcoShip", "domain": "ecoship.example", "relationship": "shipping_partner"}
			]
		}`))
	}))
	defer srv.Close()

	resolver := NewResolver(WithHTTPClient(srv.Client()))
	doc, err := resolver.FetchDocument(context.Background(), srv.URL+"/mcpi/discover")
	require.NoError(t, err)

	assert.Equal(t, "EcoShop", doc.Provider.Name)
	assert.Equal(t, "active", doc.Mode)
	require.Len(t, doc.Capabilities, 1)
	assert.Equal(t, "product_search", doc.Capabilities[0].Name)
	assert.Equal(t, []string{"SEARCH", "GET", "LIST"}, doc.Capabilities[0].Operations)
	assert.Equal(t, []config.Referral{
		{Name: "EcoShip", Domain: "ecoship.example", Relationship: "shipping_partner"},
	}, doc.Referrals)
}

func TestFetchDocumentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	resolver := NewResolver(WithHTTPClient(srv.Client()))
	_, err := resolver.FetchDocument(context.Background(), srv.URL+"/mcpi/discover")
	assert.ErrorIs(t, err, ErrUnreachable)
}
