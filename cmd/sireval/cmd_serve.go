package main

import (
	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"sireval/internal/evalmcp"
	"sireval/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the evaluation tools
(run_evaluation, flatten_reference, list_runs), so agent frontends can
drive evaluations without shelling out to the CLI.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv := evalmcp.NewServer(version)
	logging.New("mcp").Info("starting sireval MCP server over stdio")
	return srv.MCPServer.Run(cmd.Context(), &sdkmcp.StdioTransport{})
}
