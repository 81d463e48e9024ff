package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/jobhunter/internal/app"
	"github.com/ternarybob/jobhunter/internal/common"
)

func main() {
	common.LoadVersionFromFile()

	// Load configuration
	configPath := os.Getenv("JOBHUNTER_CONFIG")
	if configPath == "" {
		configPath = "jobhunter.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize minimal logger for MCP server (console only, no file output)
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn") // Minimal logging to avoid cluttering MCP stdio

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"jobhunter",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register pipeline tools
	mcpServer.AddTool(createRunPipelineTool(), handleRunPipeline(application, logger))
	mcpServer.AddTool(createResumeRunTool(), handleResumeRun(application, logger))

	// Register run-result tools
	mcpServer.AddTool(createGetRunResultTool(), handleGetRunResult(config, logger))
	mcpServer.AddTool(createListRunsTool(), handleListRuns(config, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
