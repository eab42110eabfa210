package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mark3labs/mcp-go/mcp"

	"mcpi/internal/protocol"
	"mcpi/pkg/logging"
)

// RPCError is a JSON-RPC error returned by the server.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Client is a connected MCPI session.
type Client struct {
	conn       *websocket.Conn
	nextID     int64
	serverInfo mcp.Implementation
}

// Dial opens a WebSocket connection to an MCPI session endpoint. The session
// is not usable until Initialize succeeds.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	logging.Debug("Client", "Connected to %s", url)
	return &Client{conn: conn}, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ServerInfo returns the server identity from Initialize. Zero before
// Initialize has succeeded.
func (c *Client) ServerInfo() mcp.Implementation { return c.serverInfo }

// Initialize performs the protocol handshake. It must be the first call on a
// new connection.
func (c *Client) Initialize(ctx context.Context, name, version string) (*protocol.InitializeResult, error) {
	var result protocol.InitializeResult
	err := c.call(ctx, "initialize", protocol.InitializeParams{
		ProtocolVersion: protocol.Version,
		ClientInfo:      mcp.Implementation{Name: name, Version: version},
	}, &result)
	if err != nil {
		return nil, err
	}
	c.serverInfo = result.ServerInfo
	return &result, nil
}

// Ping checks session liveness.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", struct{}{}, nil)
}

// ListTools returns the capabilities the server exposes as tools.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	var result struct {
		Tools []mcp.Tool `json:"tools"`
	}
	if err := c.call(ctx, "tools/list", struct{}{}, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// ListResources returns the resources the server exposes.
func (c *Client) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	var result struct {
		Resources []mcp.Resource `json:"resources"`
	}
	if err := c.call(ctx, "resources/list", struct{}{}, &result); err != nil {
		return nil, err
	}
	return result.Resources, nil
}

// CallTool invokes one operation on a named capability and returns the text
// of the first content block.
func (c *Client) CallTool(ctx context.Context, name, operation string, args map[string]any) (string, error) {
	arguments := map[string]any{"operation": operation}
	for k, v := range args {
		arguments[k] = v
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	err := c.call(ctx, "tools/call", protocol.CallToolParams{
		Name:      name,
		Arguments: arguments,
	}, &result)
	if err != nil {
		return "", err
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("tool %s returned no content", name)
	}
	return result.Content[0].Text, nil
}

// ReadResource fetches a resource by URI and returns its text contents.
func (c *Client) ReadResource(ctx context.Context, uri string) (string, error) {
	var result struct {
		Contents []struct {
			URI      string `json:"uri"`
			MIMEType string `json:"mimeType"`
			Text     string `json:"text"`
		} `json:"contents"`
	}
	err := c.call(ctx, "resources/read", protocol.ReadResourceParams{URI: uri}, &result)
	if err != nil {
		return "", err
	}
	if len(result.Contents) == 0 {
		return "", fmt.Errorf("resource %s returned no contents", uri)
	}
	return result.Contents[0].Text, nil
}

// call sends one request and blocks for its response.
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	c.nextID++
	id := c.nextID

	encodedParams, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding %s params: %w", method, err)
	}
	req := protocol.Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(fmt.Sprintf("%d", id)),
		Method:  method,
		Params:  encodedParams,
	}

	deadline := time.Now().Add(30 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	var resp struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  json.RawMessage `json:"result"`
		Error   *protocol.Error `json:"error"`
	}
	if err := c.conn.ReadJSON(&resp); err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}

	if resp.Error != nil {
		return &RPCError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("decoding %s result: %w", method, err)
		}
	}
	return nil
}
