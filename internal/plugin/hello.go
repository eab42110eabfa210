package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"mcpi/internal/config"
	"mcpi/pkg/logging"

	"github.com/Masterminds/sprig/v3"
	"github.com/mark3labs/mcp-go/mcp"
)

// HelloPlugin serves the HELLO operation: a context-aware introduction of the
// provider to a connecting agent. Introduction texts are text/template bodies
// rendered with the provider available as {{.Provider}}; all templates are
// parsed at construction so a broken one fails startup instead of a call.
type HelloPlugin struct {
	name        string
	description string
	category    string
	operations  map[string]bool
	opOrder     []string

	provider config.Provider
	hello    config.HelloConfig

	defaultTmpl  *template.Template
	contextTmpls map[string]*template.Template
}

// helloTemplateData is what introduction templates render against.
type helloTemplateData struct {
	Provider config.Provider
	Context  string
}

// NewHelloPlugin parses the configured introduction templates and binds the
// plugin to the provider identity.
func NewHelloPlugin(cap config.CapabilityConfig, provider config.Provider, hello config.HelloConfig) (*HelloPlugin, error) {
	funcs := sprig.FuncMap()

	defaultTmpl, err := template.New("default").Funcs(funcs).Parse(hello.Default.Introduction)
	if err != nil {
		return nil, fmt.Errorf("default introduction template: %w", err)
	}

	contextTmpls := make(map[string]*template.Template, len(hello.Contexts))
	for name, override := range hello.Contexts {
		if override.Introduction == "" {
			continue
		}
		tmpl, err := template.New(name).Funcs(funcs).Parse(override.Introduction)
		if err != nil {
			return nil, fmt.Errorf("introduction template for context %q: %w", name, err)
		}
		contextTmpls[name] = tmpl
	}

	return &HelloPlugin{
		name:         cap.Name,
		description:  cap.Description,
		category:     cap.Category,
		operations:   operationSet(cap.Operations),
		opOrder:      cap.Operations,
		provider:     provider,
		hello:        hello,
		defaultTmpl:  defaultTmpl,
		contextTmpls: contextTmpls,
	}, nil
}

func (p *HelloPlugin) Metadata() Metadata {
	return Metadata{
		Name:        p.name,
		Description: p.description,
		Category:    p.category,
		Operations:  p.opOrder,
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"operation": map[string]any{
					"type":        "string",
					"enum":        p.opOrder,
					"description": "Get an introduction from the provider's AI assistant",
				},
				"context": map[string]any{
					"type":        "string",
					"description": "Optional context about the requester's intent (e.g. shopping, support)",
				},
				"detail_level": map[string]any{
					"type":        "string",
					"enum":        []string{"basic", "standard", "detailed"},
					"description": "Amount of detail to include in the response",
				},
			},
			Required: []string{"operation"},
		},
	}
}

func (p *HelloPlugin) Execute(operation string, params map[string]any) (any, error) {
	if !p.operations[operation] || operation != "HELLO" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, operation)
	}

	context := stringParam(params, "context")
	detailLevel := stringParam(params, "detail_level")
	if detailLevel == "" {
		detailLevel = "standard"
	}
	logging.Debug("HelloPlugin", "HELLO context=%q detail=%q", context, detailLevel)

	tmpl := p.defaultTmpl
	metadata := cloneMetadata(p.hello.Default.Metadata)

	// A matching named context overrides the introduction and highlights
	// its capabilities; an unknown context silently falls back to defaults.
	if context != "" {
		if override, ok := p.hello.Contexts[context]; ok {
			if t, ok := p.contextTmpls[context]; ok {
				tmpl = t
			}
			if len(override.HighlightCapabilities) > 0 {
				metadata["highlight_capabilities"] = override.HighlightCapabilities
			}
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, helloTemplateData{Provider: p.provider, Context: context}); err != nil {
		return nil, fmt.Errorf("%w: rendering introduction: %v", ErrInternal, err)
	}

	return map[string]any{
		"content":  []map[string]any{{"type": "text", "text": buf.String()}},
		"metadata": p.shapeMetadata(metadata, detailLevel),
	}, nil
}

// shapeMetadata filters the metadata object by detail level: basic keeps
// only the provider identity, standard adds capability names and primary
// topics, detailed passes everything through. Unrecognized levels behave as
// standard.
func (p *HelloPlugin) shapeMetadata(metadata map[string]any, detailLevel string) map[string]any {
	switch detailLevel {
	case "basic":
		return map[string]any{"provider": p.providerIdentity(metadata)}
	case "detailed":
		return metadata
	default:
		shaped := map[string]any{
			"provider":     p.providerIdentity(metadata),
			"capabilities": []any{},
			"topics":       []any{},
		}
		if caps, ok := metadata["capabilities"]; ok {
			shaped["capabilities"] = caps
		}
		if topics, ok := metadata["primary_focus"]; ok {
			shaped["topics"] = topics
		}
		if highlights, ok := metadata["highlight_capabilities"]; ok {
			shaped["highlight_capabilities"] = highlights
		}
		return shaped
	}
}

// providerIdentity prefers the configured metadata's provider object and
// falls back to the server's own provider identity.
func (p *HelloPlugin) providerIdentity(metadata map[string]any) any {
	if prov, ok := metadata["provider"]; ok {
		return prov
	}
	return map[string]any{
		"name":   p.provider.Name,
		"domain": p.provider.Domain,
	}
}

func (p *HelloPlugin) Resources() []ResourceInfo {
	return []ResourceInfo{{
		Suffix:      "hello_config.json",
		Description: "Hello protocol configuration",
	}}
}

func (p *HelloPlugin) ReadResource(suffix string) (string, error) {
	if suffix != "hello_config.json" {
		return "", fmt.Errorf("%w: resource %q", ErrNotFound, suffix)
	}
	data, err := json.Marshal(map[string]any{
		"default":  p.hello.Default,
		"contexts": p.hello.Contexts,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return string(data), nil
}

func cloneMetadata(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
