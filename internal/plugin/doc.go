// Package plugin implements the executable behavior behind each configured
// capability and the immutable registry that dispatches to it.
//
// All variants satisfy one flat contract: static metadata for
// tools/list and resources/list, and Execute for tools/call. Three leaf
// variants exist:
//
//   - DataPlugin: the generic SEARCH/GET/LIST engine over an in-memory JSON
//     dataset. Its behavior is identical regardless of which dataset backs
//     the capability.
//   - HelloPlugin: the HELLO introduction protocol with context overrides.
//   - WeatherPlugin: simulated forecasts generated per call.
//
// The registry is built once at startup from the validated configuration and
// is never mutated afterwards, so concurrent connection handlers read it
// without locking.
package plugin
