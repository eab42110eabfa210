// Package discovery implements both halves of MCPI service discovery: the
// document a server publishes on its REST discovery endpoint, and the
// client-side resolver that finds that document for a domain via the
// _mcp.<domain> DNS TXT record and derives the WebSocket session URL from it.
//
// Resolver failures are ordinary error values the caller can branch on (no
// record, malformed record, invalid URL, unreachable endpoint); they never
// affect server-side state.
package discovery
