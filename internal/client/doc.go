// Package client is a WebSocket MCPI client for agents and CLI tooling. It
// speaks the JSON-RPC session protocol: initialize first, then tool and
// resource calls over a single connection.
//
// A Client performs one request at a time; concurrent callers must
// serialize access themselves.
package client
