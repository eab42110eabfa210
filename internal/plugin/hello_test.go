package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpi/internal/config"
)

func newTestHelloPlugin(t *testing.T, hello config.HelloConfig) *HelloPlugin {
	t.Helper()
	p, err := NewHelloPlugin(config.CapabilityConfig{
		Name:        "hello",
		Description: "Introduction protocol",
		Category:    "meta",
		Operations:  []string{"HELLO"},
	}, config.Provider{
		Name:        "EcoShop",
		Domain:      "ecoshop.example",
		Description: "Sustainable goods retailer",
	}, hello)
	require.NoError(t, err)
	return p
}

func defaultHelloConfig() config.HelloConfig {
	return config.HelloConfig{
		Default: config.HelloEntry{
			Introduction: "Hello! I'm the AI assistant for {{.Provider.Name}}.",
			Metadata: map[string]any{
				"capabilities":  []string{"product_search", "hello"},
				"primary_focus": []string{"sustainable products"},
				"founded":       2019,
			},
		},
		Contexts: map[string]config.HelloContext{
			"shopping": {
				Introduction:          "Welcome to {{.Provider.Name | upper}}! Looking for something?",
				HighlightCapabilities: []string{"product_search"},
			},
		},
	}
}

func helloText(t *testing.T, result any) string {
	t.Helper()
	content := result.(map[string]any)["content"].([]map[string]any)
	require.Len(t, content, 1)
	return content[0]["text"].(string)
}

func helloMetadata(result any) map[string]any {
	return result.(map[string]any)["metadata"].(map[string]any)
}

func TestHelloDefaultIntroduction(t *testing.T) {
	p := newTestHelloPlugin(t, defaultHelloConfig())

	result, err := p.Execute("HELLO", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello! I'm the AI assistant for EcoShop.", helloText(t, result))
}

func TestHelloContextOverride(t *testing.T) {
	p := newTestHelloPlugin(t, defaultHelloConfig())

	result, err := p.Execute("HELLO", map[string]any{"context": "shopping"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to ECOSHOP! Looking for something?", helloText(t, result))
	assert.Equal(t, []string{"product_search"}, helloMetadata(result)["highlight_capabilities"])
}

func TestHelloUnknownContextFallsBack(t *testing.T) {
	p := newTestHelloPlugin(t, defaultHelloConfig())

	withUnknown, err := p.Execute("HELLO", map[string]any{"context": "skydiving"})
	require.NoError(t, err)
	without, err := p.Execute("HELLO", nil)
	require.NoError(t, err)

	assert.Equal(t, helloText(t, without), helloText(t, withUnknown))
}

func TestHelloDetailLevels(t *testing.T) {
	p := newTestHelloPlugin(t, defaultHelloConfig())

	basic, err := p.Execute("HELLO", map[string]any{"detail_level": "basic"})
	require.NoError(t, err)
	basicMeta := helloMetadata(basic)
	assert.Len(t, basicMeta, 1)
	assert.Equal(t, map[string]any{"name": "EcoShop", "domain": "ecoshop.example"}, basicMeta["provider"])

	standard, err := p.Execute("HELLO", nil)
	require.NoError(t, err)
	standardMeta := helloMetadata(standard)
	assert.Equal(t, []string{"product_search", "hello"}, standardMeta["capabilities"])
	assert.Equal(t, []string{"sustainable products"}, standardMeta["topics"])
	assert.NotContains(t, standardMeta, "founded")

	detailed, err := p.Execute("HELLO", map[string]any{"detail_level": "detailed"})
	require.NoError(t, err)
	detailedMeta := helloMetadata(detailed)
	assert.Equal(t, 2019, detailedMeta["founded"])
}

func TestHelloUnknownDetailLevelBehavesAsStandard(t *testing.T) {
	p := newTestHelloPlugin(t, defaultHelloConfig())

	odd, err := p.Execute("HELLO", map[string]any{"detail_level": "extreme"})
	require.NoError(t, err)
	standard, err := p.Execute("HELLO", map[string]any{"detail_level": "standard"})
	require.NoError(t, err)

	assert.Equal(t, helloMetadata(standard), helloMetadata(odd))
}

func TestHelloRejectsOtherOperations(t *testing.T) {
	p := newTestHelloPlugin(t, defaultHelloConfig())

	_, err := p.Execute("SEARCH", nil)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestHelloBrokenTemplateFailsConstruction(t *testing.T) {
	_, err := NewHelloPlugin(config.CapabilityConfig{
		Name:       "hello",
		Operations: []string{"HELLO"},
	}, config.Provider{Name: "EcoShop", Domain: "ecoshop.example"}, config.HelloConfig{
		Default: config.HelloEntry{Introduction: "Hello {{.Provider.Name"},
	})
	assert.Error(t, err)
}

func TestHelloReadResource(t *testing.T) {
	p := newTestHelloPlugin(t, defaultHelloConfig())

	text, err := p.ReadResource("hello_config.json")
	require.NoError(t, err)
	assert.Contains(t, text, "shopping")

	_, err = p.ReadResource("other.json")
	assert.ErrorIs(t, err, ErrNotFound)
}
