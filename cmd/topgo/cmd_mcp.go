package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	topgomcp "github.com/manhsontran/topgo-rag-chatbot/internal/mcp"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  ask             — full pipeline: classify, extract filters, retrieve, generate
  search_venues   — semantic venue search with scores
  list_districts  — valid Hanoi district filters
  stats           — index statistics

If Qdrant or the model services are unavailable at startup the server still
starts; individual tool calls degrade or return MCP error responses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			p, st, err := newPipeline(logger)
			if err != nil {
				// Log to stderr and continue with nil dependencies.
				// Tool calls will return per-call errors rather than crashing.
				logger.Error("mcp: failed to assemble pipeline; tool calls will fail", "error", err)
			} else {
				defer func() { _ = st.Close() }()
			}

			srv := topgomcp.NewServer(p, st, logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: topgo MCP server starting", "transport", "stdio")

			if serveErr := mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			); serveErr != nil {
				return fmt.Errorf("mcp: %w", serveErr)
			}
			return nil
		},
	}

	return cmd
}
