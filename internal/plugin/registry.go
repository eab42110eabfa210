package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"mcpi/internal/config"
	"mcpi/pkg/logging"
)

// Registry is the immutable mapping from capability name to plugin instance.
// It is built once at startup and never mutated afterwards, so Get and List
// are safe under unsynchronized concurrent reads.
type Registry struct {
	plugins map[string]Plugin
	order   []string
}

// Load constructs a plugin for every configured capability, parsing each
// data capability's dataset fully into memory. It fails fast on the first
// capability that cannot be built; the server must not start in a
// partially-valid state.
func Load(cfg *config.ServerConfig) (*Registry, error) {
	r := &Registry{plugins: make(map[string]Plugin, len(cfg.Capabilities))}

	for _, cap := range cfg.Capabilities {
		var (
			p   Plugin
			err error
		)
		switch cap.Type {
		case config.PluginTypeData:
			p, err = loadDataPlugin(cfg.Server.DataDir, cap)
		case config.PluginTypeWeather:
			p = NewWeatherPlugin(cap)
		case config.PluginTypeHello:
			p, err = NewHelloPlugin(cap, cfg.Provider, cfg.Hello)
			if err != nil {
				err = config.NewStartupError(cap.Name, config.ReasonMalformedData, err)
			}
		default:
			err = config.NewStartupError(cap.Name, config.ReasonInvalidCapability,
				fmt.Errorf("unknown plugin type %q", cap.Type))
		}
		if err != nil {
			return nil, err
		}

		r.plugins[cap.Name] = p
		r.order = append(r.order, cap.Name)
		logging.Info("Registry", "Registered %s plugin %q with operations %v", cap.Type, cap.Name, cap.Operations)
	}

	return r, nil
}

func loadDataPlugin(dataDir string, cap config.CapabilityConfig) (Plugin, error) {
	path := filepath.Join(dataDir, cap.DataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, config.NewStartupError(cap.Name, config.ReasonMissingFile,
			fmt.Errorf("reading dataset %s: %w", path, err))
	}
	dataset, err := ParseDataset(data)
	if err != nil {
		return nil, config.NewStartupError(cap.Name, config.ReasonMalformedData,
			fmt.Errorf("dataset %s: %w", path, err))
	}
	return NewDataPlugin(cap, dataset, string(data)), nil
}

// Get returns the plugin bound to name. It performs no I/O.
func (r *Registry) Get(name string) (Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// List returns all plugins in configuration order.
func (r *Registry) List() []Plugin {
	plugins := make([]Plugin, 0, len(r.order))
	for _, name := range r.order {
		plugins = append(plugins, r.plugins[name])
	}
	return plugins
}

// Execute dispatches one operation. An unknown capability name is reported
// distinctly from plugin-level failures so the protocol layer can answer
// with an "unknown tool" error.
func (r *Registry) Execute(name, operation string, params map[string]any) (any, error) {
	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown tool %q", ErrNotFound, name)
	}
	return p.Execute(operation, params)
}
