// Package protocol implements the JSON-RPC 2.0 layer spoken over a
// WebSocket session: envelope parsing, the per-connection state machine
// (Connected -> Initialized -> Closed), method dispatch into the plugin
// registry, and the mapping from plugin failures to stable error codes.
//
// Each Session is owned exclusively by its connection's goroutine. Requests
// on one session are processed in arrival order and answered in that same
// order; sessions share nothing but the read-only plugin registry.
//
// The envelope and capability structs are defined here rather than borrowed
// from an SDK because the session has to drive a bare WebSocket transport;
// every payload inside the envelope (tools, resources, content) uses the
// mcp-go model.
package protocol
