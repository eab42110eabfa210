package config

import "time"

// PluginType selects which plugin variant a capability is bound to.
type PluginType string

const (
	// PluginTypeData is the generic SEARCH/GET/LIST engine over a JSON dataset.
	PluginTypeData PluginType = "data"
	// PluginTypeWeather generates simulated forecasts per call.
	PluginTypeWeather PluginType = "weather"
	// PluginTypeHello serves the context-aware introduction protocol.
	PluginTypeHello PluginType = "hello"
)

// ServerConfig is the top-level configuration structure for an MCPI server.
type ServerConfig struct {
	Server       ListenConfig       `yaml:"server"`
	Provider     Provider           `yaml:"provider"`
	Referrals    []Referral         `yaml:"referrals,omitempty"`
	Capabilities []CapabilityConfig `yaml:"capabilities"`
	Hello        HelloConfig        `yaml:"hello,omitempty"`
}

// ListenConfig defines where the server listens and which paths it serves.
type ListenConfig struct {
	Host          string        `yaml:"host,omitempty"`          // Host to bind to (default: localhost)
	Port          int           `yaml:"port,omitempty"`          // Port for all endpoints (default: 3001)
	SessionPath   string        `yaml:"sessionPath,omitempty"`   // WebSocket session endpoint (default: /mcpi)
	DiscoveryPath string        `yaml:"discoveryPath,omitempty"` // REST discovery endpoint (default: /mcpi/discover)
	IdleTimeout   time.Duration `yaml:"idleTimeout,omitempty"`   // Close sessions with no traffic for this long (default: 5m)
	DataDir       string        `yaml:"dataDir,omitempty"`       // Directory holding capability datasets (default: data)
}

// Provider identifies the organization behind this server. It is served
// verbatim in the discovery document.
type Provider struct {
	Name        string         `yaml:"name" json:"name"`
	Domain      string         `yaml:"domain" json:"domain"`
	Description string         `yaml:"description" json:"description"`
	Branding    map[string]any `yaml:"branding,omitempty" json:"branding,omitempty"`
}

// Referral points agents at related providers. The list is ordered and
// served as-is in the discovery document.
type Referral struct {
	Name         string `yaml:"name" json:"name"`
	Domain       string `yaml:"domain" json:"domain"`
	Relationship string `yaml:"relationship" json:"relationship"`
}

// CapabilityConfig describes one named capability and how to build its plugin.
type CapabilityConfig struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Category    string     `yaml:"category"`
	Type        PluginType `yaml:"type,omitempty"`        // Plugin variant (default: data)
	Operations  []string   `yaml:"operations,omitempty"`  // Allowed operations (default per variant)
	DataFile    string     `yaml:"dataFile,omitempty"`    // Dataset file relative to dataDir (data plugins only)
	SearchField string     `yaml:"searchField,omitempty"` // Default field for SEARCH (default: name)
}

// HelloConfig holds the default introduction plus named context overrides
// for the HELLO operation.
type HelloConfig struct {
	Default  HelloEntry              `yaml:"default" json:"default"`
	Contexts map[string]HelloContext `yaml:"contexts,omitempty" json:"contexts,omitempty"`
}

// HelloEntry is the baseline introduction. Introduction is a text/template
// body; the provider is available to it as {{.Provider}}.
type HelloEntry struct {
	Introduction string         `yaml:"introduction" json:"introduction"`
	Metadata     map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// HelloContext overrides the introduction for a named requester context and
// lists the capabilities worth highlighting for it.
type HelloContext struct {
	Introduction          string   `yaml:"introduction,omitempty" json:"introduction,omitempty"`
	HighlightCapabilities []string `yaml:"highlightCapabilities,omitempty" json:"highlightCapabilities,omitempty"`
}

// GetDefaultConfig returns the built-in defaults applied before the config
// file is unmarshalled over them.
func GetDefaultConfig() ServerConfig {
	return ServerConfig{
		Server: ListenConfig{
			Host:          "localhost",
			Port:          3001,
			SessionPath:   "/mcpi",
			DiscoveryPath: "/mcpi/discover",
			IdleTimeout:   5 * time.Minute,
			DataDir:       "data",
		},
		Hello: HelloConfig{
			Default: HelloEntry{
				Introduction: "Hello! I'm the AI assistant for {{.Provider.Name}}. How can I assist you today?",
			},
		},
	}
}
