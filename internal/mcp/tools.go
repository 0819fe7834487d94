package mcp

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/brix-meter/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := registerScoreTools(s, sc); err != nil {
		return err
	}
	if err := registerTemplateTools(s, sc); err != nil {
		return err
	}
	return nil
}
