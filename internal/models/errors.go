package models

import (
	"fmt"
	"time"
)

// Error kinds recorded on AgentError entries
const (
	ErrKindLLM        = "llm"
	ErrKindSearch     = "search"
	ErrKindScrape     = "scrape"
	ErrKindNormalize  = "normalize"
	ErrKindScore      = "score"
	ErrKindValidation = "validation"
	ErrKindOutput     = "output"
	ErrKindNotify     = "notify"
)

// AgentError is a non-fatal failure record accumulated on pipeline state.
// These are data, not Go errors: a stage appends them and keeps going.
type AgentError struct {
	Stage     string    `json:"stage"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Company   string    `json:"company,omitempty"`
	JobID     string    `json:"job_id,omitempty"`
	Fatal     bool      `json:"fatal"`
	Timestamp time.Time `json:"timestamp"`
}

// FatalAgentError aborts the run: the stage cannot produce any useful
// output. The pipeline maps it to terminal status "failed".
type FatalAgentError struct {
	Stage   string
	Message string
}

func (e *FatalAgentError) Error() string {
	return fmt.Sprintf("fatal error in stage %s: %s", e.Stage, e.Message)
}

// CostLimitExceededError aborts the run once accumulated spend passes the
// hard limit. The pipeline maps it to terminal status "partial" so the work
// done so far is preserved.
type CostLimitExceededError struct {
	TotalCostUSD float64
	LimitUSD     float64
}

func (e *CostLimitExceededError) Error() string {
	return fmt.Sprintf("cost limit exceeded: $%.4f > $%.4f", e.TotalCostUSD, e.LimitUSD)
}

// CheckpointError signals a corrupt or inaccessible checkpoint file. It is
// fatal: resuming from a bad snapshot must never be silent.
type CheckpointError struct {
	Path string
	Err  error
}

func (e *CheckpointError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("checkpoint error at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("checkpoint error at %s", e.Path)
}

func (e *CheckpointError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx response from an external HTTP API (the
// search provider or an ATS board). Per-company callers record it as an
// AgentError and continue.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}
