package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mcpi application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcpi",
	Short: "Serve and discover AI-agent capabilities over the MCPI protocol",
	Long: `mcpi runs an MCPI server that publishes an organization's capabilities
for AI agents, and ships the client tooling to find and talk to such servers.

A provider configures named capabilities (datasets, forecasts, introductions)
in a YAML file; mcpi serves them over a WebSocket JSON-RPC session endpoint
plus a public REST discovery endpoint. Agents find a provider's endpoint via
the _mcp.<domain> DNS TXT record.`,
	// SilenceUsage prevents cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This is called from the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It is called by
// main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpi version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
