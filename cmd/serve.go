package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/fiberscope/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing fiberscope tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes page inspection as
tools. Agents open a page once and then resolve, extract and mine it without
relaunching the browser.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  fiberscope serve
  fiberscope serve --transport streamable-http --port 8080
  fiberscope serve --cache-ttl 0 --headful`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 500, "Page snapshot cache TTL in milliseconds (0 to disable)")
	serveCmd.Flags().Int("max-document-bytes", 0, "Size cap for returned extraction documents (0 = default)")
	serveCmd.Flags().Bool("headful", false, "Show the browser window")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	maxBytes, _ := cmd.Flags().GetInt("max-document-bytes")
	headful, _ := cmd.Flags().GetBool("headful")

	srv, err := server.New(server.Config{
		Transport:        transport,
		Port:             port,
		CacheTTL:         time.Duration(cacheTTLMs) * time.Millisecond,
		MaxDocumentBytes: maxBytes,
		Inspect:          appConfig,
		Browser:          browserOptions(!headful),
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	return srv.Serve()
}
