package plugin

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"mcpi/internal/config"
	"mcpi/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// Record is one dataset entry: a mapping of field name to a heterogeneous
// value (string, number, bool or nested object), as decoded from JSON.
type Record map[string]any

// Dataset is an ordered, immutable snapshot of records loaded at startup.
type Dataset []Record

// DataPlugin is the generic data-driven engine. It serves SEARCH, GET and
// LIST over its dataset and behaves identically regardless of the dataset's
// content.
type DataPlugin struct {
	name        string
	description string
	category    string
	operations  map[string]bool
	opOrder     []string
	searchField string
	dataset     Dataset
	rawJSON     string
}

// NewDataPlugin binds a capability definition to its pre-loaded dataset.
func NewDataPlugin(cap config.CapabilityConfig, dataset Dataset, rawJSON string) *DataPlugin {
	return &DataPlugin{
		name:        cap.Name,
		description: cap.Description,
		category:    cap.Category,
		operations:  operationSet(cap.Operations),
		opOrder:     cap.Operations,
		searchField: cap.SearchField,
		dataset:     dataset,
		rawJSON:     rawJSON,
	}
}

func (p *DataPlugin) Metadata() Metadata {
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
					"description": "Operation to perform",
				},
				"query": map[string]any{
					"type":        "string",
					"description": "Search query (SEARCH); empty matches every record",
				},
				"field": map[string]any{
					"type":        "string",
					"description": fmt.Sprintf("Field to search (SEARCH, default: %s)", p.searchField),
				},
				"id": map[string]any{
					"type":        "string",
					"description": "Record ID (GET)",
				},
			},
			Required: []string{"operation"},
		},
	}
}

func (p *DataPlugin) Execute(operation string, params map[string]any) (any, error) {
	if !p.operations[operation] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, operation)
	}
	switch operation {
	case "SEARCH":
		return p.search(stringParam(params, "query"), stringParam(params, "field"))
	case "GET":
		return p.get(params)
	case "LIST":
		return p.list(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, operation)
	}
}

// search filters records whose field contains query as a case-insensitive
// substring, preserving dataset order. An empty query matches everything.
func (p *DataPlugin) search(query, field string) (any, error) {
	if field == "" {
		field = p.searchField
	}
	needle := strings.ToLower(query)

	results := make([]Record, 0, len(p.dataset))
	for _, rec := range p.dataset {
		if query == "" || strings.Contains(strings.ToLower(fieldString(rec, field)), needle) {
			results = append(results, rec)
		}
	}
	logging.Debug("DataPlugin", "%s: SEARCH %q on %q matched %d of %d records",
		p.name, query, field, len(results), len(p.dataset))

	return map[string]any{
		"results": results,
		"count":   len(results),
		"query":   query,
		"field":   field,
	}, nil
}

// get scans for the first record whose id field equals the given id exactly.
func (p *DataPlugin) get(params map[string]any) (any, error) {
	id := stringParam(params, "id")
	if id == "" {
		return nil, fmt.Errorf("%w: GET requires an id", ErrInvalidParams)
	}
	for _, rec := range p.dataset {
		if v, ok := rec["id"].(string); ok && v == id {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: no record with id %q", ErrNotFound, id)
}

func (p *DataPlugin) list() any {
	return map[string]any{
		"results": p.dataset,
		"count":   len(p.dataset),
	}
}

func (p *DataPlugin) Resources() []ResourceInfo {
	return []ResourceInfo{{
		Suffix:      "data.json",
		Description: p.description,
	}}
}

func (p *DataPlugin) ReadResource(suffix string) (string, error) {
	if suffix != "data.json" {
		return "", fmt.Errorf("%w: resource %q", ErrNotFound, suffix)
	}
	return p.rawJSON, nil
}

// fieldString projects a record field onto its searchable string form.
// Nested objects and arrays have no string projection and never match.
func fieldString(rec Record, field string) string {
	switch v := rec[field].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// ParseDataset decodes a JSON array of records. The raw text is retained so
// resources/read can serve the dataset verbatim.
func ParseDataset(data []byte) (Dataset, error) {
	var dataset Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("dataset is not a JSON array of objects: %w", err)
	}
	return dataset, nil
}
