package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// allowedOperations maps each plugin variant to the operation names it
// understands. A capability listing anything outside this set is rejected at
// startup rather than surfacing as runtime UnsupportedOperation errors.
var allowedOperations = map[PluginType]map[string]bool{
	PluginTypeData:    {"SEARCH": true, "GET": true, "LIST": true},
	PluginTypeWeather: {"GET": true, "LIST": true},
	PluginTypeHello:   {"HELLO": true},
}

// defaultOperations is applied when a capability omits its operation list.
var defaultOperations = map[PluginType][]string{
	PluginTypeData:    {"SEARCH", "GET", "LIST"},
	PluginTypeWeather: {"GET", "LIST"},
	PluginTypeHello:   {"HELLO"},
}

// Validate normalizes defaults and checks every capability definition. It
// guarantees that each referenced dataset file exists before the plugin
// registry is asked to load it, so the registry only has to deal with
// parse failures.
func Validate(cfg *ServerConfig) error {
	if cfg.Provider.Name == "" || cfg.Provider.Domain == "" {
		return NewStartupError("", ReasonInvalidCapability,
			fmt.Errorf("provider name and domain are required"))
	}
	if len(cfg.Capabilities) == 0 {
		return NewStartupError("", ReasonInvalidCapability,
			fmt.Errorf("at least one capability must be configured"))
	}

	seen := make(map[string]bool, len(cfg.Capabilities))
	for i := range cfg.Capabilities {
		cap := &cfg.Capabilities[i]
		if cap.Name == "" {
			return NewStartupError("", ReasonInvalidCapability,
				fmt.Errorf("capability %d has no name", i))
		}
		if seen[cap.Name] {
			return NewStartupError(cap.Name, ReasonInvalidCapability,
				fmt.Errorf("duplicate capability name"))
		}
		seen[cap.Name] = true

		if cap.Type == "" {
			cap.Type = PluginTypeData
		}
		allowed, ok := allowedOperations[cap.Type]
		if !ok {
			return NewStartupError(cap.Name, ReasonInvalidCapability,
				fmt.Errorf("unknown plugin type %q", cap.Type))
		}
		if len(cap.Operations) == 0 {
			cap.Operations = append([]string(nil), defaultOperations[cap.Type]...)
		}
		for _, op := range cap.Operations {
			if !allowed[op] {
				return NewStartupError(cap.Name, ReasonInvalidCapability,
					fmt.Errorf("operation %q is not understood by %s plugins", op, cap.Type))
			}
		}

		if cap.Type == PluginTypeData {
			if cap.DataFile == "" {
				return NewStartupError(cap.Name, ReasonInvalidCapability,
					fmt.Errorf("data capability requires a dataFile"))
			}
			if cap.SearchField == "" {
				cap.SearchField = "name"
			}
			path := filepath.Join(cfg.Server.DataDir, cap.DataFile)
			if _, err := os.Stat(path); err != nil {
				return NewStartupError(cap.Name, ReasonMissingFile,
					fmt.Errorf("dataset %s: %w", path, err))
			}
		}
	}

	for ctx, override := range cfg.Hello.Contexts {
		for _, name := range override.HighlightCapabilities {
			if !seen[name] {
				return NewStartupError(name, ReasonInvalidCapability,
					fmt.Errorf("hello context %q highlights unknown capability", ctx))
			}
		}
	}

	return nil
}
