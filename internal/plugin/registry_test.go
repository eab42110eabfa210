package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpi/internal/config"
)

func registryConfig(t *testing.T) config.ServerConfig {
	t.Helper()
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "products.json"), []byte(productsJSON), 0o644))

	cfg := config.GetDefaultConfig()
	cfg.Server.DataDir = dataDir
	cfg.Provider = config.Provider{Name: "EcoShop", Domain: "ecoshop.example"}
	cfg.Capabilities = []config.CapabilityConfig{
		{
			Name:        "product_search",
			Type:        config.PluginTypeData,
			Operations:  []string{"SEARCH", "GET", "LIST"},
			DataFile:    "products.json",
			SearchField: "name",
		},
		{
			Name:       "weather_forecast",
			Type:       config.PluginTypeWeather,
			Operations: []string{"GET", "LIST"},
		},
		{
			Name:       "hello",
			Type:       config.PluginTypeHello,
			Operations: []string{"HELLO"},
		},
	}
	return cfg
}

func TestRegistryLoad(t *testing.T) {
	cfg := registryConfig(t)
	r, err := Load(&cfg)
	require.NoError(t, err)

	plugins := r.List()
	require.Len(t, plugins, 3)
	// List preserves configuration order.
	assert.Equal(t, "product_search", plugins[0].Metadata().Name)
	assert.Equal(t, "weather_forecast", plugins[1].Metadata().Name)
	assert.Equal(t, "hello", plugins[2].Metadata().Name)

	_, ok := r.Get("product_search")
	assert.True(t, ok)
	_, ok = r.Get("no_such_plugin")
	assert.False(t, ok)
}

func TestRegistryExecute(t *testing.T) {
	cfg := registryConfig(t)
	r, err := Load(&cfg)
	require.NoError(t, err)

	result, err := r.Execute("product_search", "GET", map[string]any{"id": "eco-1001"})
	require.NoError(t, err)
	assert.Equal(t, "Bamboo Water Bottle", result.(Record)["name"])

	_, err = r.Execute("no_such_plugin", "LIST", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryLoadMissingDataset(t *testing.T) {
	cfg := registryConfig(t)
	cfg.Capabilities[0].DataFile = "missing.json"

	_, err := Load(&cfg)
	require.Error(t, err)
	var startupErr *config.StartupError
	require.ErrorAs(t, err, &startupErr)
	assert.Equal(t, config.ReasonMissingFile, startupErr.Reason)
}

func TestRegistryLoadMalformedDataset(t *testing.T) {
	cfg := registryConfig(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(cfg.Server.DataDir, "broken.json"), []byte(`{not json`), 0o644))
	cfg.Capabilities[0].DataFile = "broken.json"

	_, err := Load(&cfg)
	require.Error(t, err)
	var startupErr *config.StartupError
	require.ErrorAs(t, err, &startupErr)
	assert.Equal(t, config.ReasonMalformedData, startupErr.Reason)
	assert.Equal(t, "product_search", startupErr.Capability)
}

func TestRegistryLoadUnknownType(t *testing.T) {
	cfg := registryConfig(t)
	cfg.Capabilities = append(cfg.Capabilities, config.CapabilityConfig{
		Name: "mystery",
		Type: "graphql",
	})

	_, err := Load(&cfg)
	require.Error(t, err)
	var startupErr *config.StartupError
	require.ErrorAs(t, err, &startupErr)
	assert.Equal(t, config.ReasonInvalidCapability, startupErr.Reason)
}
