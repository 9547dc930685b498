// Command diffmcp runs the diff core as a Model Context Protocol
// server over stdio, exposing parse_diff, apply_patch, summarize_diff
// and format_diff as tools for any MCP-capable collaborator.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/batalabs/diffcore/internal/mcpserver"
	"github.com/batalabs/diffcore/internal/obslog"
)

func main() {
	logger := obslog.New(os.Getenv("DIFFCORE_LOG_PATH"))
	defer logger.Close()

	server := mcpserver.New(logger)

	ctx := context.Background()
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		fmt.Fprintln(os.Stderr, "diffmcp:", err)
		os.Exit(1)
	}
}
