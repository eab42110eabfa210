package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mcpi/internal/client"
	"mcpi/internal/discovery"
	"mcpi/pkg/logging"
)

// agentURL connects to a WebSocket session endpoint directly, skipping DNS.
var agentURL string

// agentDebug enables debug logging for the session.
var agentDebug bool

// agentCmd opens an interactive MCPI session against a provider.
var agentCmd = &cobra.Command{
	Use:   "agent <domain>",
	Short: "Open an interactive MCPI session",
	Long: `Resolves a provider's session endpoint and opens an interactive
JSON-RPC session. Inside the session:

  tools                                list the provider's capabilities
  resources                            list readable resources
  call <tool> <OPERATION> [k=v ...]    invoke an operation
  read <uri>                           read a resource by URI
  ping                                 check session liveness
  help                                 show commands
  exit                                 close the session

Use --url to connect to a ws:// or wss:// endpoint directly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAgent,
}

func runAgent(cmd *cobra.Command, args []string) error {
	level := logging.LevelWarn
	if agentDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	if agentURL == "" && len(args) == 0 {
		return fmt.Errorf("provide a domain to connect to, or --url for a direct endpoint")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint := agentURL
	if endpoint == "" {
		resolved, err := resolveSessionURL(ctx, args[0])
		if err != nil {
			return err
		}
		endpoint = resolved
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" Connecting to %s...", endpoint)
	s.Start()

	c, err := client.Dial(ctx, endpoint)
	if err != nil {
		s.Stop()
		return err
	}
	defer c.Close()

	init, err := c.Initialize(ctx, "mcpi-agent", GetVersion())
	s.Stop()
	if err != nil {
		return fmt.Errorf("initialize failed: %w", err)
	}

	fmt.Printf("Connected to %s %s (protocol %s)\n",
		init.ServerInfo.Name, init.ServerInfo.Version, init.ProtocolVersion)
	if init.Instructions != "" {
		fmt.Println(init.Instructions)
	}
	fmt.Println("Type 'help' for available commands.")

	return runREPL(ctx, c)
}

func resolveSessionURL(ctx context.Context, domain string) (string, error) {
	resolveCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	record, err := discovery.NewResolver().Resolve(resolveCtx, domain)
	if err != nil {
		return "", err
	}
	return record.WebSocketURL()
}

func runREPL(ctx context.Context, c *client.Client) error {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("tools"),
		readline.PcItem("resources"),
		readline.PcItem("call"),
		readline.PcItem("read"),
		readline.PcItem("ping"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mcpi> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".mcpi_agent_history"),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println("Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		fields := strings.Fields(input)

		switch fields[0] {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return nil
		case "help":
			printREPLHelp()
		case "ping":
			if err := c.Ping(ctx); err != nil {
				printREPLError(err)
			} else {
				fmt.Println("pong")
			}
		case "tools":
			replListTools(ctx, c)
		case "resources":
			replListResources(ctx, c)
		case "call":
			replCallTool(ctx, c, fields[1:])
		case "read":
			replReadResource(ctx, c, fields[1:])
		default:
			fmt.Printf("Unknown command %q. Type 'help' for available commands.\n", fields[0])
		}
	}
}

func printREPLHelp() {
	fmt.Print(`Commands:
  tools                                list the provider's capabilities
  resources                            list readable resources
  call <tool> <OPERATION> [k=v ...]    invoke an operation, e.g.
                                         call product_search SEARCH query=bamboo
                                         call product_search GET id=eco-1001
                                         call hello HELLO detail_level=detailed
  read <uri>                           read a resource by URI
  ping                                 check session liveness
  exit                                 close the session
`)
}

func replListTools(ctx context.Context, c *client.Client) {
	tools, err := c.ListTools(ctx)
	if err != nil {
		printREPLError(err)
		return
	}
	for _, tool := range tools {
		fmt.Printf("  %s  %s\n", text.FgHiCyan.Sprint(tool.Name), tool.Description)
	}
}

func replListResources(ctx context.Context, c *client.Client) {
	resources, err := c.ListResources(ctx)
	if err != nil {
		printREPLError(err)
		return
	}
	for _, resource := range resources {
		fmt.Printf("  %s  %s\n", text.FgHiCyan.Sprint(resource.URI), resource.Description)
	}
}

func replCallTool(ctx context.Context, c *client.Client, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: call <tool> <OPERATION> [key=value ...]")
		return
	}
	params := make(map[string]any, len(args)-2)
	for _, pair := range args[2:] {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			fmt.Printf("Arguments must be key=value pairs, got %q\n", pair)
			return
		}
		params[key] = value
	}

	result, err := c.CallTool(ctx, args[0], strings.ToUpper(args[1]), params)
	if err != nil {
		printREPLError(err)
		return
	}
	fmt.Println(prettyJSON(result))
}

func replReadResource(ctx context.Context, c *client.Client, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: read <uri>")
		return
	}
	contents, err := c.ReadResource(ctx, args[0])
	if err != nil {
		printREPLError(err)
		return
	}
	fmt.Println(prettyJSON(contents))
}

// prettyJSON re-indents s when it is JSON, and returns it untouched otherwise.
func prettyJSON(s string) string {
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return s
	}
	pretty, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return s
	}
	return string(pretty)
}

func printREPLError(err error) {
	fmt.Println(text.FgRed.Sprint(err.Error()))
}

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.Flags().StringVar(&agentURL, "url", "", "Connect to this WebSocket session URL directly instead of resolving DNS")
	agentCmd.Flags().BoolVar(&agentDebug, "debug", false, "Enable debug logging")
}
