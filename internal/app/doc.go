// Package app bootstraps and runs the MCPI server process.
//
// It follows a two-phase pattern:
//  1. Bootstrap: initialize logging, load and validate configuration, build
//     the plugin registry.
//  2. Run: serve until the context is cancelled or a termination signal
//     arrives, then shut down gracefully.
//
// The cmd package is a thin cobra layer over this package; all process
// wiring lives here so it can be exercised from tests.
package app
