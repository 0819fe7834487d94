package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/brix-meter/internal/runner"
	"github.com/giantswarm/brix-meter/internal/server"
)

func handleGetResults(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	runID, _ := args["run_id"].(string)

	if runID != "" {
		return getSpecificRun(sc.OutputDir, runID)
	}
	return listRuns(sc.OutputDir)
}

// runSummary is the listing entry for one batch run.
type runSummary struct {
	ID       string         `json:"id"`
	Template string         `json:"template"`
	Summary  runner.Summary `json:"summary"`
}

func listRuns(outputDir string) (*mcp.CallToolResult, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return mcp.NewToolResultText("[]"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to read results directory: %v", err)), nil
	}

	runs := []runSummary{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		run, err := readRun(joinRunFile(outputDir, e.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, runSummary{ID: run.ID, Template: run.Template, Summary: run.Summary})
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func getSpecificRun(outputDir, runID string) (*mcp.CallToolResult, error) {
	runPath, err := resolveRunPath(outputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid run_id: %v", err)), nil
	}

	data, err := os.ReadFile(joinRunFile(runPath, runner.ResultSetFile))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, err)), nil
	}
	if !json.Valid(data) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse run %q", runID)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func readRun(runPath string) (*runner.Run, error) {
	data, err := os.ReadFile(joinRunFile(runPath, runner.ResultSetFile))
	if err != nil {
		return nil, err
	}
	var run runner.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
