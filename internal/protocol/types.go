package protocol

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// Version is the MCPI protocol version this server speaks. Clients must
// request a version with the same major component.
const Version = "0.1.0"

// JSON-RPC 2.0 error codes, plus the application-defined codes this
// protocol adds.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// CodeInvalidState is returned for any method other than initialize
	// sent before the session is initialized.
	CodeInvalidState = -32001
	// CodeNotFound is returned for unknown tools, unknown resource URIs and
	// GET misses.
	CodeNotFound = -32002
)

// Request is a JSON-RPC 2.0 request envelope. The id is kept raw because
// clients may use strings or numbers; the server echoes it untouched and
// never depends on its monotonicity. A missing or null id marks a
// notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether this request expects no response.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

// Response is a JSON-RPC 2.0 response envelope. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// InitializeParams is the payload of the initialize method.
type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ClientInfo      mcp.Implementation `json:"clientInfo"`
	Capabilities    map[string]any     `json:"capabilities,omitempty"`
}

// InitializeResult answers a successful initialize.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      mcp.Implementation `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

// ServerCapabilities advertises what this server supports.
type ServerCapabilities struct {
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Tools     *ToolsCapability     `json:"tools,omitempty"`
}

// ResourcesCapability flags resource support.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

// ToolsCapability flags tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// CallToolParams is the payload of tools/call. Arguments carries the
// operation name alongside the operation's own parameters.
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ReadResourceParams is the payload of resources/read.
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// EmptyResult answers ping.
type EmptyResult struct{}
