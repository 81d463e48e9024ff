package models

import "time"

// RunStatus is the terminal status of a pipeline run.
type RunStatus string

// RunStatus constants
const (
	// StatusSuccess means every stage completed cleanly.
	StatusSuccess RunStatus = "success"
	// StatusPartial means usable work was produced but the run was cut short
	// (cost limit) or the final scored list came up empty.
	StatusPartial RunStatus = "partial"
	// StatusFailed means a fatal error, timeout, or checkpoint error aborted
	// the run.
	StatusFailed RunStatus = "failed"
)

// String returns the string representation of the RunStatus
func (s RunStatus) String() string {
	return string(s)
}

// BuildRunResult folds the pipeline state into a terminal record. An empty
// scored list downgrades the status to partial; callers classifying an
// aborted run overwrite Status afterwards.
func BuildRunResult(state *PipelineState) *RunResult {
	status := StatusSuccess
	if len(state.ScoredJobs) == 0 {
		status = StatusPartial
	}

	return &RunResult{
		RunID:          state.RunID,
		Status:         status,
		CompaniesFound: len(state.Companies),
		JobsScraped:    len(state.RawJobs),
		JobsProcessed:  len(state.NormalizedJobs),
		JobsScored:     len(state.ScoredJobs),
		TopJobs:        state.ScoredJobs,
		TotalTokens:    state.TotalTokens,
		TotalCostUSD:   state.TotalCostUSD,
		Errors:         state.Errors,
		StartedAt:      state.StartedAt,
		FinishedAt:     time.Now().UTC(),
	}
}

// RunResult is the terminal record surfaced to callers (CLI, MCP, notifier).
type RunResult struct {
	RunID  string    `json:"run_id"`
	Status RunStatus `json:"status"`

	CompaniesFound int `json:"companies_found"`
	JobsScraped    int `json:"jobs_scraped"`
	JobsProcessed  int `json:"jobs_processed"`
	JobsScored     int `json:"jobs_scored"`

	TopJobs []ScoredJob `json:"top_jobs,omitempty"`

	TotalTokens  int     `json:"total_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`

	Errors []AgentError `json:"errors,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	OutputFiles []string `json:"output_files,omitempty"`
}
