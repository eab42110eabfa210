// Package logging provides a thin wrapper around log/slog that tags every
// entry with the subsystem that emitted it. All packages in this repository
// log through it so that output from the protocol session, the plugin engine
// and the discovery resolver can be filtered apart.
package logging
