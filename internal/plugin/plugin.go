package plugin

import (
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
)

// Execution failures are classified with these sentinels so the protocol
// layer can map them to stable JSON-RPC error codes. Wrap them with
// fmt.Errorf("%w: ...") to add detail.
var (
	// ErrUnsupportedOperation means the operation name is not understood or
	// not enabled for this capability.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrInvalidParams means a required argument is missing or has the wrong type.
	ErrInvalidParams = errors.New("invalid params")
	// ErrNotFound means the addressed record or resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInternal covers unexpected execution failures.
	ErrInternal = errors.New("internal plugin error")
)

// Metadata is the static description of a plugin, used to answer tools/list
// and resources/list without executing anything.
type Metadata struct {
	Name        string
	Description string
	Category    string
	Operations  []string
	InputSchema mcp.ToolInputSchema
}

// ResourceInfo names one resource a plugin exposes. The server composes the
// full mcpi:// URI from the provider domain, the plugin name and the suffix.
type ResourceInfo struct {
	Suffix      string
	Description string
}

// Plugin is the contract every capability variant implements.
//
// Execute must be CPU-bound: datasets are loaded before the server accepts
// connections and no variant performs I/O per call. Implementations must be
// safe for concurrent use; in practice they are stateless over immutable data.
type Plugin interface {
	// Metadata returns the static capability description.
	Metadata() Metadata

	// Execute runs one named operation. The returned value is
	// JSON-serializable and is wrapped by the caller into MCP content.
	// Failures wrap one of the sentinel errors above.
	Execute(operation string, params map[string]any) (any, error)

	// Resources lists the resources this plugin serves via resources/read.
	Resources() []ResourceInfo

	// ReadResource returns the JSON text of the resource with the given
	// suffix, or ErrNotFound.
	ReadResource(suffix string) (string, error)
}

// operationSet builds the lookup used by every variant to reject operation
// names outside its configured list.
func operationSet(ops []string) map[string]bool {
	set := make(map[string]bool, len(ops))
	for _, op := range ops {
		set[op] = true
	}
	return set
}

// stringParam extracts an optional string argument, tolerating absence.
func stringParam(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
