package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobhunter/internal/app"
	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/models"
)

// handleRunPipeline implements the run_pipeline tool
func handleRunPipeline(application *app.App, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resumePath, err := request.RequireString("resume_path")
		if err != nil || resumePath == "" {
			return errorResult("resume_path parameter is required"), nil
		}
		preferences, err := request.RequireString("preferences")
		if err != nil || preferences == "" {
			return errorResult("preferences parameter is required"), nil
		}

		cfg := application.Config.BuildRunConfig("", resumePath, preferences, common.RunOverrides{
			MinRecommendedJobs: request.GetInt("min_jobs", 0),
			MaxCostUSD:         request.GetFloat("max_cost_usd", 0),
			CompanyLimit:       request.GetInt("company_limit", 0),
		})

		result, runErr := application.Pipeline.Run(ctx, cfg)
		if runErr != nil {
			logger.Error().Err(runErr).Str("run_id", result.RunID).Msg("Pipeline run failed")
		}

		return textResult(formatRunResult(result, len(result.TopJobs))), nil
	}
}

// handleResumeRun implements the resume_run tool
func handleResumeRun(application *app.App, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runID, err := request.RequireString("run_id")
		if err != nil || runID == "" {
			return errorResult("run_id parameter is required"), nil
		}

		// Resume inputs come from the checkpoint snapshot.
		cfg := application.Config.BuildRunConfig(runID, "", "", common.RunOverrides{
			MaxCostUSD: request.GetFloat("max_cost_usd", 0),
		})

		result, runErr := application.Pipeline.Run(ctx, cfg)
		if runErr != nil {
			logger.Error().Err(runErr).Str("run_id", runID).Msg("Resumed run failed")
		}

		return textResult(formatRunResult(result, len(result.TopJobs))), nil
	}
}

// handleGetRunResult implements the get_run_result tool
func handleGetRunResult(config *common.Config, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runID, err := request.RequireString("run_id")
		if err != nil || runID == "" {
			return errorResult("run_id parameter is required"), nil
		}

		limit := request.GetInt("limit", 10)
		if limit > 100 {
			limit = 100
		}

		result, err := loadRunResult(config.Output.Dir, runID)
		if err != nil {
			logger.Error().Err(err).Str("run_id", runID).Msg("Run result load failed")
			return errorResult(fmt.Sprintf("Run result not found: %v", err)), nil
		}

		return textResult(formatRunResult(result, limit)), nil
	}
}

// handleListRuns implements the list_runs tool
func handleListRuns(config *common.Config, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 20)

		results, err := listRunResults(config.Output.Dir)
		if err != nil {
			logger.Error().Err(err).Msg("Run listing failed")
			return errorResult(fmt.Sprintf("List error: %v", err)), nil
		}

		return textResult(formatRunList(results, limit)), nil
	}
}

// loadRunResult reads the result.json artifact for one run.
func loadRunResult(outputDir, runID string) (*models.RunResult, error) {
	path := filepath.Join(outputDir, runID, "result.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var result models.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("corrupt result file %s: %w", path, err)
	}
	return &result, nil
}

// listRunResults scans the output directory for finished runs, newest first.
func listRunResults(outputDir string) ([]*models.RunResult, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var results []*models.RunResult
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		result, err := loadRunResult(outputDir, entry.Name())
		if err != nil {
			// Run directories without a result.json are in-flight or aborted
			// before aggregate; skip them.
			continue
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].FinishedAt.After(results[j].FinishedAt)
	})
	return results, nil
}

func textResult(markdown string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(markdown),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent("Error: " + message),
		},
	}
}
