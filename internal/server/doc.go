// Package server runs the MCPI HTTP surface: the WebSocket session endpoint
// carrying JSON-RPC traffic, the REST discovery endpoint, and a small admin
// API for operational introspection.
//
// Each WebSocket connection gets its own protocol.Session and is serviced by
// a single goroutine that reads, dispatches and writes in order, so response
// ordering within a connection needs no extra synchronization. Sessions are
// independent; a failure on one connection never affects another.
package server
