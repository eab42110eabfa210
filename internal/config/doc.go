// Package config defines the static capability model for an MCPI server and
// the loader that produces it: provider identity, referrals, capability
// definitions with their backing datasets, and the hello protocol
// configuration. Everything in this package is loaded once at startup and is
// immutable for the lifetime of the process; the rest of the server receives
// a fully validated, in-memory ServerConfig and never touches raw files
// itself.
package config
