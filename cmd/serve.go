package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mcpi/internal/app"
)

// serveConfigPath specifies the YAML configuration file to load.
var serveConfigPath string

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveCmd starts the MCPI server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCPI server",
	Long: `Starts the MCPI server for the provider described in the configuration file.

The server exposes three surfaces on one listener:
  - the WebSocket session endpoint carrying JSON-RPC tool and resource calls
  - the public REST discovery endpoint describing the provider's capabilities
  - a small admin API under /api/admin for operational introspection

All capabilities are validated and their datasets fully loaded before the
listener opens; a missing or malformed dataset aborts startup.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := app.NewApplication(&app.Config{
		ConfigPath: serveConfigPath,
		Debug:      serveDebug,
		Version:    GetVersion(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "config.yaml", "Path to the server configuration file")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}
