package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/brix-meter/internal/server"
)

func registerTemplateTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// list_templates
	listTool := mcp.NewTool("list_templates",
		mcp.WithDescription("List prompt template names in the order they were added"),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListTemplates(ctx, request, sc)
	})

	// get_template
	getTool := mcp.NewTool("get_template",
		mcp.WithDescription("Show the prompt text of a template. Unknown names resolve to the default template."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Template name"),
		),
	)
	s.AddTool(getTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetTemplate(ctx, request, sc)
	})

	// add_template
	addTool := mcp.NewTool("add_template",
		mcp.WithDescription("Add a prompt template. Templates live until the server restarts and cannot be edited or removed."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("New template name"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("System prompt sent to the model"),
		),
	)
	s.AddTool(addTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAddTemplate(ctx, request, sc)
	})

	return nil
}

func handleListTemplates(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Service == nil {
		return mcp.NewToolResultError("scoring service is not configured"), nil
	}
	return jsonResult(sc.Service.ListTemplates())
}

func handleGetTemplate(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Service == nil {
		return mcp.NewToolResultError("scoring service is not configured"), nil
	}

	name, _ := request.GetArguments()["name"].(string)
	return jsonResult(sc.Service.GetTemplate(name))
}

func handleAddTemplate(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Service == nil {
		return mcp.NewToolResultError("scoring service is not configured"), nil
	}

	args := request.GetArguments()
	name, _ := args["name"].(string)
	text, _ := args["text"].(string)

	// A rejected add is reported in status_message alongside the unchanged
	// name list, like a successful one.
	return jsonResult(sc.Service.AddTemplate(name, text))
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
