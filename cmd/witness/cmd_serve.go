package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"witness/internal/config"
	"witness/internal/logging"
	mcpserver "witness/internal/mcp"
)

var serveFlags struct {
	configPath string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the analysis as tools:
load_results, get_summary, fp_rate_by_bits, timing_by_bits,
evaluate_gates and render_report.

The server monitors for parent process death. When the MCP client
disconnects, the server self-terminates to prevent zombie processes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.configPath, "config", "", "Analysis profile path (default: "+config.DefaultPath+")")
}

func runServe(cmd *cobra.Command, _ []string) error {
	profile, err := config.Load(serveFlags.configPath)
	if err != nil {
		return err
	}

	srv := mcpserver.NewServer(profile)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting witness MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
