package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mcpi/internal/discovery"
)

// discoverURL bypasses DNS and fetches the discovery document directly.
var discoverURL string

// discoverJSON prints the raw discovery document instead of tables.
var discoverJSON bool

// discoverTimeout bounds the whole discovery exchange.
var discoverTimeout time.Duration

// discoverCmd resolves and displays a provider's MCPI capabilities.
var discoverCmd = &cobra.Command{
	Use:   "discover <domain>",
	Short: "Discover a provider's MCPI capabilities",
	Long: `Looks up the _mcp.<domain> DNS TXT record, fetches the provider's
discovery document and prints its capabilities and referrals.

Use --url to skip DNS and fetch a discovery document directly, which is
handy against local servers without a published TXT record.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if discoverURL == "" && len(args) == 0 {
		return fmt.Errorf("provide a domain to discover, or --url for a direct endpoint")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	resolver := discovery.NewResolver()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Discovering MCPI service..."
	s.Start()

	endpoint := discoverURL
	var record *discovery.Record
	if endpoint == "" {
		var err error
		record, err = resolver.Resolve(ctx, args[0])
		if err != nil {
			s.Stop()
			return err
		}
		endpoint = record.DiscoveryURL
	}

	doc, err := resolver.FetchDocument(ctx, endpoint)
	s.Stop()
	if err != nil {
		return err
	}

	if discoverJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	}

	printProvider(doc, record, endpoint)
	printCapabilities(doc)
	printReferrals(doc)
	return nil
}

func printProvider(doc *discovery.Document, record *discovery.Record, endpoint string) {
	fmt.Printf("%s %s (%s)\n", text.FgHiCyan.Sprint("Provider:"), doc.Provider.Name, doc.Provider.Domain)
	if doc.Provider.Description != "" {
		fmt.Printf("%s %s\n", text.FgHiCyan.Sprint("About:"), doc.Provider.Description)
	}
	fmt.Printf("%s %s\n", text.FgHiCyan.Sprint("Mode:"), doc.Mode)
	fmt.Printf("%s %s\n", text.FgHiCyan.Sprint("Discovery:"), endpoint)
	if record != nil {
		if wsURL, err := record.WebSocketURL(); err == nil {
			fmt.Printf("%s %s (protocol %s)\n", text.FgHiCyan.Sprint("Session:"), wsURL, record.Version)
		}
	}
	fmt.Println()
}

func printCapabilities(doc *discovery.Document) {
	if len(doc.Capabilities) == 0 {
		fmt.Println(text.FgYellow.Sprint("No capabilities advertised."))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("CAPABILITY"),
		text.FgHiCyan.Sprint("CATEGORY"),
		text.FgHiCyan.Sprint("OPERATIONS"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
	})
	for _, capability := range doc.Capabilities {
		t.AppendRow(table.Row{
			capability.Name,
			capability.Category,
			strings.Join(capability.Operations, ", "),
			capability.Description,
		})
	}
	t.Render()
}

func printReferrals(doc *discovery.Document) {
	if len(doc.Referrals) == 0 {
		return
	}

	fmt.Println()
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("REFERRAL"),
		text.FgHiCyan.Sprint("DOMAIN"),
		text.FgHiCyan.Sprint("RELATIONSHIP"),
	})
	for _, referral := range doc.Referrals {
		t.AppendRow(table.Row{referral.Name, referral.Domain, referral.Relationship})
	}
	t.Render()
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringVar(&discoverURL, "url", "", "Fetch this discovery URL directly instead of resolving DNS")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "Print the raw discovery document as JSON")
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 15*time.Second, "Timeout for the discovery exchange")
}
