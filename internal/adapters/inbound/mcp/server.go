package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewRelcheckMCPServer creates a new MCP server with all relcheck tools
// registered. The projectPath is the root directory of the workspace to
// check.
func NewRelcheckMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"relcheck",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, projectPath)

	return s
}
