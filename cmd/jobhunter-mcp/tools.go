package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createRunPipelineTool returns the run_pipeline tool definition
func createRunPipelineTool() mcp.Tool {
	return mcp.NewTool("run_pipeline",
		mcp.WithDescription("Run the job-discovery pipeline: parse the resume and preferences, discover companies, scrape and score jobs, write run artifacts"),
		mcp.WithString("resume_path",
			mcp.Required(),
			mcp.Description("Path to the candidate's resume PDF (or .txt/.md)"),
		),
		mcp.WithString("preferences",
			mcp.Required(),
			mcp.Description("Freeform search preferences text (locations, titles, salary, companies to avoid)"),
		),
		mcp.WithNumber("min_jobs",
			mcp.Description("Minimum recommended jobs before the discovery loop stops (default: from config)"),
		),
		mcp.WithNumber("max_cost_usd",
			mcp.Description("Hard LLM spend limit for this run in USD (default: from config)"),
		),
		mcp.WithNumber("company_limit",
			mcp.Description("Cap companies per discovery iteration (default: from config)"),
		),
	)
}

// createResumeRunTool returns the resume_run tool definition
func createResumeRunTool() mcp.Tool {
	return mcp.NewTool("resume_run",
		mcp.WithDescription("Resume an interrupted run from its latest checkpoint; completed stages are skipped"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run id of the interrupted run (format: run_{uuid})"),
		),
		mcp.WithNumber("max_cost_usd",
			mcp.Description("Raise the cost limit for the resumed run in USD"),
		),
	)
}

// createGetRunResultTool returns the get_run_result tool definition
func createGetRunResultTool() mcp.Tool {
	return mcp.NewTool("get_run_result",
		mcp.WithDescription("Retrieve the result of a finished run, including its ranked job matches"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run id (format: run_{uuid})"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum scored jobs to include (default: 10, max: 100)"),
		),
	)
}

// createListRunsTool returns the list_runs tool definition
func createListRunsTool() mcp.Tool {
	return mcp.NewTool("list_runs",
		mcp.WithDescription("List finished runs with their status and match counts, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Max runs to return (default: 20)"),
		),
	)
}
