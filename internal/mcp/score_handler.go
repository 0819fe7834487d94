package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/brix-meter/internal/runner"
	"github.com/giantswarm/brix-meter/internal/scorer"
	"github.com/giantswarm/brix-meter/internal/server"
	"github.com/giantswarm/brix-meter/internal/session"
)

// scoreOutput is the JSON shape returned for a single scored label.
type scoreOutput struct {
	Label    string      `json:"label,omitempty"`
	Value    float64     `json:"value"`
	Tier     scorer.Tier `json:"tier"`
	Display  string      `json:"display"`
	RawReply string      `json:"raw_reply"`
	Message  string      `json:"message,omitempty"`
}

func newScoreOutput(label string, r scorer.Result) scoreOutput {
	return scoreOutput{
		Label:    label,
		Value:    r.Value,
		Tier:     r.Tier,
		Display:  r.Tier.Label(),
		RawReply: r.RawReply,
		Message:  r.Message,
	}
}

func withConnectionParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("template",
			mcp.Description("Template name (default: the built-in default template)"),
		),
		mcp.WithString("api_url",
			mcp.Description("Chat completions endpoint URL (default: server configuration)"),
		),
		mcp.WithString("model",
			mcp.Description("Model name (default: server configuration)"),
		),
		mcp.WithString("api_key",
			mcp.Required(),
			mcp.Description("API key starting with sk-. The server never substitutes its own key"),
		),
	}
}

func registerScoreTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// score_label
	scoreOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Score a food name (Brix sugar content) or an action (absurdity rating) and classify it into a tier"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Food name or described action to score"),
		),
	}, withConnectionParams()...)
	s.AddTool(mcp.NewTool("score_label", scoreOpts...), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleScoreLabel(ctx, request, sc)
	})

	// score_batch
	batchOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Score several labels sequentially and record the run in the results directory"),
		mcp.WithString("labels",
			mcp.Required(),
			mcp.Description("Labels to score, one per line"),
		),
	}, withConnectionParams()...)
	s.AddTool(mcp.NewTool("score_batch", batchOpts...), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleScoreBatch(ctx, request, sc)
	})

	// get_results
	getResultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Retrieve past batch runs"),
		mcp.WithString("run_id",
			mcp.Description("Specific run ID to retrieve (optional, lists all if omitted)"),
		),
	)
	s.AddTool(getResultsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetResults(ctx, request, sc)
	})

	return nil
}

func connectionFromArgs(args map[string]interface{}) scorer.Connection {
	url, _ := args["api_url"].(string)
	model, _ := args["model"].(string)
	key, _ := args["api_key"].(string)
	return scorer.Connection{URL: url, APIKey: key, Model: model}
}

func handleScoreLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Service == nil {
		return mcp.NewToolResultError("scoring service is not configured"), nil
	}

	args := request.GetArguments()

	text, ok := args["text"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	templateName, _ := args["template"].(string)

	result := sc.Service.Score(ctx, session.ScoreInput{
		Text:         text,
		TemplateName: templateName,
		Connection:   connectionFromArgs(args),
	})

	data, err := json.MarshalIndent(newScoreOutput("", result), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleScoreBatch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Service == nil {
		return mcp.NewToolResultError("scoring service is not configured"), nil
	}

	args := request.GetArguments()

	raw, _ := args["labels"].(string)
	labels := runner.ParseLabels(raw)
	if len(labels) == 0 {
		return mcp.NewToolResultError("labels is required"), nil
	}
	templateName, _ := args["template"].(string)

	r := runner.NewRunner(sc.Service, connectionFromArgs(args), sc.OutputDir)
	run, err := r.Run(ctx, templateName, labels)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("batch run failed: %v", err)), nil
	}

	outputs := make([]scoreOutput, 0, len(run.Results))
	for _, lr := range run.Results {
		outputs = append(outputs, newScoreOutput(lr.Label, lr.Result))
	}

	result := map[string]interface{}{
		"run_id":  run.ID,
		"results": outputs,
		"summary": run.Summary,
	}
	if run.Path != "" {
		result["results_file"] = run.Path
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
