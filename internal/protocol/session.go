package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"mcpi/internal/config"
	"mcpi/internal/plugin"
	"mcpi/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// State is the lifecycle phase of a session.
type State int

const (
	// StateConnected is the initial state after socket accept; only
	// initialize is accepted.
	StateConnected State = iota
	// StateInitialized is entered after a successful initialize.
	StateInitialized
	// StateClosed is terminal; no further messages are processed.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateInitialized:
		return "initialized"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the per-connection protocol state machine. It is owned
// exclusively by the connection's goroutine and must not be shared; the only
// shared structure it touches is the immutable plugin registry.
type Session struct {
	id         string
	registry   *plugin.Registry
	provider   config.Provider
	serverInfo mcp.Implementation

	state           State
	protocolVersion string
	clientInfo      mcp.Implementation
	requestCount    uint64
	lastActivity    time.Time

	now func() time.Time
}

// NewSession creates a session in the Connected state.
func NewSession(id string, registry *plugin.Registry, provider config.Provider, serverInfo mcp.Implementation) *Session {
	s := &Session{
		id:         id,
		registry:   registry,
		provider:   provider,
		serverInfo: serverInfo,
		state:      StateConnected,
		now:        time.Now,
	}
	s.lastActivity = s.now()
	return s
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// LastActivity returns when the session last processed a message. The
// server's idle reaper compares against it.
func (s *Session) LastActivity() time.Time { return s.lastActivity }

// RequestCount returns how many requests this session has processed.
func (s *Session) RequestCount() uint64 { return s.requestCount }

// Close transitions the session to its terminal state.
func (s *Session) Close() {
	if s.state != StateClosed {
		logging.Debug("Session", "%s: closed after %d requests", s.id, s.requestCount)
		s.state = StateClosed
	}
}

// HandleMessage processes one WebSocket text frame: a single JSON-RPC
// request or a batch array. It returns the serialized response frame, or nil
// when nothing should be sent (notifications only).
func (s *Session) HandleMessage(raw []byte) []byte {
	if s.state == StateClosed {
		return nil
	}
	s.lastActivity = s.now()

	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		return s.handleBatch(trimmed)
	case len(trimmed) > 0 && trimmed[0] == '{':
		resp := s.handleSingle(trimmed)
		if resp == nil {
			return nil
		}
		return marshalResponse(resp)
	default:
		return marshalResponse(errorResponse(nil, CodeParseError, "parse error: invalid JSON"))
	}
}

// handleBatch processes a JSON array frame. Responses keep request order;
// notifications contribute none. An all-notification batch yields nil.
func (s *Session) handleBatch(raw []byte) []byte {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return marshalResponse(errorResponse(nil, CodeParseError, "parse error: invalid batch"))
	}
	if len(entries) == 0 {
		return marshalResponse(errorResponse(nil, CodeInvalidRequest, "empty batch"))
	}

	responses := make([]*Response, 0, len(entries))
	for _, entry := range entries {
		if resp := s.handleSingle(entry); resp != nil {
			responses = append(responses, resp)
		}
	}
	if len(responses) == 0 {
		return nil
	}
	data, err := json.Marshal(responses)
	if err != nil {
		logging.Error("Session", err, "%s: failed to serialize batch response", s.id)
		return marshalResponse(errorResponse(nil, CodeInternalError, "internal server error"))
	}
	return data
}

// handleSingle dispatches one request and returns its response, or nil for
// notifications.
func (s *Session) handleSingle(raw []byte) *Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return errorResponse(nil, CodeParseError, fmt.Sprintf("parse error: %v", err))
	}

	s.requestCount++
	logging.Debug("Session", "%s: <- %s (state=%s)", s.id, req.Method, s.state)

	resp := s.dispatch(&req)
	if req.IsNotification() {
		return nil
	}
	return resp
}

func (s *Session) dispatch(req *Request) *Response {
	if req.Method == "initialize" {
		return s.handleInitialize(req)
	}
	if s.state != StateInitialized {
		return errorResponse(req.ID, CodeInvalidState,
			fmt.Sprintf("method %q requires an initialized session", req.Method))
	}

	switch req.Method {
	case "ping":
		return resultResponse(req.ID, EmptyResult{})
	case "tools/list":
		return s.handleListTools(req)
	case "tools/call":
		return s.handleCallTool(req)
	case "resources/list":
		return s.handleListResources(req)
	case "resources/read":
		return s.handleReadResource(req)
	default:
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

// handleInitialize negotiates the protocol version and transitions to
// Initialized. On any failure the session stays Connected so the client may
// retry.
func (s *Session) handleInitialize(req *Request) *Response {
	if s.state == StateInitialized {
		return errorResponse(req.ID, CodeInvalidState, "session already initialized")
	}

	var params InitializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("invalid initialize params: %v", err))
	}
	if !compatibleVersion(params.ProtocolVersion) {
		return errorResponse(req.ID, CodeInvalidParams,
			fmt.Sprintf("unsupported protocol version %q (server speaks %s)", params.ProtocolVersion, Version))
	}

	s.protocolVersion = params.ProtocolVersion
	s.clientInfo = params.ClientInfo
	s.state = StateInitialized
	logging.Info("Session", "%s: initialized by %s %s (protocol %s)",
		s.id, params.ClientInfo.Name, params.ClientInfo.Version, params.ProtocolVersion)

	return resultResponse(req.ID, InitializeResult{
		ProtocolVersion: Version,
		Capabilities: ServerCapabilities{
			Resources: &ResourcesCapability{Subscribe: true, ListChanged: true},
			Tools:     &ToolsCapability{ListChanged: true},
		},
		ServerInfo:   s.serverInfo,
		Instructions: fmt.Sprintf("Provider: %s", s.provider.Description),
	})
}

// compatibleVersion accepts an exact match or any version sharing the
// server's major component.
func compatibleVersion(requested string) bool {
	if requested == "" {
		return false
	}
	if requested == Version {
		return true
	}
	return majorComponent(requested) == majorComponent(Version)
}

func majorComponent(version string) string {
	if i := strings.IndexByte(version, '.'); i >= 0 {
		return version[:i]
	}
	return version
}

func (s *Session) handleListTools(req *Request) *Response {
	plugins := s.registry.List()
	tools := make([]mcp.Tool, 0, len(plugins))
	for _, p := range plugins {
		meta := p.Metadata()
		tools = append(tools, mcp.Tool{
			Name:        meta.Name,
			Description: meta.Description,
			InputSchema: meta.InputSchema,
		})
	}
	return resultResponse(req.ID, mcp.ListToolsResult{Tools: tools})
}

func (s *Session) handleListResources(req *Request) *Response {
	var resources []mcp.Resource
	for _, p := range s.registry.List() {
		meta := p.Metadata()
		for _, info := range p.Resources() {
			resources = append(resources, mcp.Resource{
				URI:         s.resourceURI(meta.Name, info.Suffix),
				Name:        meta.Name,
				Description: info.Description,
				MIMEType:    "application/json",
			})
		}
	}
	if resources == nil {
		resources = []mcp.Resource{}
	}
	return resultResponse(req.ID, mcp.ListResourcesResult{Resources: resources})
}

func (s *Session) handleCallTool(req *Request) *Response {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return errorResponse(req.ID, CodeInvalidParams, "invalid params for tools/call")
	}

	p, ok := s.registry.Get(params.Name)
	if !ok {
		return errorResponse(req.ID, CodeNotFound, fmt.Sprintf("unknown tool: %s", params.Name))
	}

	operation, _ := params.Arguments["operation"].(string)
	if operation == "" {
		return errorResponse(req.ID, CodeInvalidParams, "tools/call arguments require an operation")
	}

	result, err := p.Execute(operation, params.Arguments)
	if err != nil {
		return pluginErrorResponse(req.ID, err)
	}

	text, ok := result.(string)
	if !ok {
		encoded, err := json.Marshal(result)
		if err != nil {
			logging.Error("Session", err, "%s: failed to encode result from %s", s.id, params.Name)
			return errorResponse(req.ID, CodeInternalError, "failed to encode tool result")
		}
		text = string(encoded)
	}

	return resultResponse(req.ID, mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	})
}

func (s *Session) handleReadResource(req *Request) *Response {
	var params ReadResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.URI == "" {
		return errorResponse(req.ID, CodeInvalidParams, "invalid params for resources/read")
	}

	u, err := url.Parse(params.URI)
	if err != nil || u.Scheme != "mcpi" {
		return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("invalid resource URI: %s", params.URI))
	}
	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	if len(segments) < 3 || segments[0] != "resources" {
		return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("invalid resource path: %s", u.Path))
	}
	pluginName, suffix := segments[1], strings.Join(segments[2:], "/")

	p, ok := s.registry.Get(pluginName)
	if !ok {
		return errorResponse(req.ID, CodeNotFound, fmt.Sprintf("unknown resource provider: %s", pluginName))
	}
	text, err := p.ReadResource(suffix)
	if err != nil {
		return pluginErrorResponse(req.ID, err)
	}

	return resultResponse(req.ID, mcp.ReadResourceResult{
		Contents: []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      params.URI,
				MIMEType: "application/json",
				Text:     text,
			},
		},
	})
}

func (s *Session) resourceURI(pluginName, suffix string) string {
	return fmt.Sprintf("mcpi://%s/resources/%s/%s", s.provider.Domain, pluginName, suffix)
}

// pluginErrorResponse maps plugin sentinel errors onto JSON-RPC codes.
// Plugin failures are always recovered into a response; they never take the
// connection down.
func pluginErrorResponse(id json.RawMessage, err error) *Response {
	code := CodeInternalError
	switch {
	case errors.Is(err, plugin.ErrUnsupportedOperation), errors.Is(err, plugin.ErrInvalidParams):
		code = CodeInvalidParams
	case errors.Is(err, plugin.ErrNotFound):
		code = CodeNotFound
	}
	return errorResponse(id, code, err.Error())
}

func resultResponse(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: normalizeID(id), Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: normalizeID(id), Error: &Error{Code: code, Message: message}}
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func marshalResponse(resp *Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error("Session", err, "failed to serialize response")
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"internal server error"}}`)
	}
	return data
}
