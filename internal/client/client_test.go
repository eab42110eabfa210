package client

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpi/internal/config"
	"mcpi/internal/plugin"
	"mcpi/internal/protocol"
	"mcpi/internal/server"
)

func startTestServer(t *testing.T) string {
	t.Helper()

	dataDir := t.TempDir()
	dataset := `[
		{"id": "eco-1001", "name": "Bamboo Water Bottle", "price": 24.99},
		{"id": "eco-1002", "name": "Hemp Tote Bag", "price": 12.50}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "products.json"), []byte(dataset), 0o644))

	cfg := config.GetDefaultConfig()
	cfg.Server.DataDir = dataDir
	cfg.Provider = config.Provider{
		Name:        "EcoShop",
		Domain:      "ecoshop.example",
		Description: "Sustainable goods retailer",
	}
	cfg.Capabilities = []config.CapabilityConfig{
		{
			Name:        "product_search",
			Description: "Search the product catalog",
			Category:    "commerce",
			Type:        config.PluginTypeData,
			Operations:  []string{"SEARCH", "GET", "LIST"},
			DataFile:    "products.json",
			SearchField: "name",
		},
	}
	require.NoError(t, config.Validate(&cfg))

	registry, err := plugin.Load(&cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(server.NewServer(cfg, registry, "test").Handler())
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/mcpi"
}

func TestClientSession(t *testing.T) {
	url := startTestServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, url)
	require.NoError(t, err)
	defer c.Close()

	init, err := c.Initialize(ctx, "test-agent", "0.0.1")
	require.NoError(t, err)
	assert.Equal(t, protocol.Version, init.ProtocolVersion)
	assert.Equal(t, "EcoShop", c.ServerInfo().Name)

	require.NoError(t, c.Ping(ctx))

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "product_search", tools[0].Name)

	text, err := c.CallTool(ctx, "product_search", "SEARCH", map[string]any{"query": "bamboo"})
	require.NoError(t, err)
	var searchResult struct {
		Results []map[string]any `json:"results"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &searchResult))
	assert.Equal(t, 1, searchResult.Count)
	assert.Equal(t, "Bamboo Water Bottle", searchResult.Results[0]["name"])

	resources, err := c.ListResources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "mcpi://ecoshop.example/resources/product_search/data.json", resources[0].URI)

	contents, err := c.ReadResource(ctx, resources[0].URI)
	require.NoError(t, err)
	assert.Contains(t, contents, "eco-1001")
}

func TestClientToolCallBeforeInitialize(t *testing.T) {
	url := startTestServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, url)
	require.NoError(t, err)
	defer c.Close()

	err = c.Ping(ctx)
	require.Error(t, err)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, protocol.CodeInvalidState, rpcErr.Code)
}

func TestClientUnknownTool(t *testing.T) {
	url := startTestServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, url)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Initialize(ctx, "test-agent", "0.0.1")
	require.NoError(t, err)

	_, err = c.CallTool(ctx, "no_such_tool", "LIST", nil)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, protocol.CodeNotFound, rpcErr.Code)
}
