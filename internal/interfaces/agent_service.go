package interfaces

import (
	"context"

	"github.com/ternarybob/jobhunter/internal/models"
)

// The pipeline is a fixed sequence of agent stages. Every stage service
// follows the same contract:
//
//   - It receives the run's PipelineState and mutates it directly. The state
//     is owned by the pipeline goroutine and stages execute serially, so no
//     locking is required inside a stage.
//   - Per-item failures (one company, one job, one batch) are recorded via
//     state.AddError and the stage keeps going.
//   - A returned error is fatal for the stage. CostLimitExceededError aborts
//     the run; everything else marks the stage failed.
//   - LLM-backed stages record token usage against the state immediately
//     after each model call, before the response is parsed.

// IntakeService turns the raw run inputs into structured models: the resume
// PDF into a CandidateProfile and the preferences text into
// SearchPreferences.
type IntakeService interface {
	// ParseResume extracts text from the configured resume PDF and parses it
	// into state.Profile.
	ParseResume(ctx context.Context, state *models.PipelineState) error

	// ParsePreferences parses the free-text search preferences into
	// state.Preferences. Requires state.Profile for context.
	ParsePreferences(ctx context.Context, state *models.PipelineState) error
}

// DiscoveryService proposes candidate companies, validates that each has a
// reachable career page, classifies the scrape strategy and writes the
// validated list to state.Companies.
type DiscoveryService interface {
	DiscoverCompanies(ctx context.Context, state *models.PipelineState) error
}

// ScrapeService fetches raw postings for every company on the state, via ATS
// APIs where one was detected and the crawler otherwise, and appends them to
// state.RawJobs.
type ScrapeService interface {
	ScrapeJobs(ctx context.Context, state *models.PipelineState) error
}

// NormalizeService converts state.RawJobs into deduplicated
// state.NormalizedJobs.
type NormalizeService interface {
	ProcessJobs(ctx context.Context, state *models.PipelineState) error
}

// ScoringService evaluates state.NormalizedJobs against the candidate
// profile and preferences and writes the ranked result to state.ScoredJobs.
type ScoringService interface {
	ScoreJobs(ctx context.Context, state *models.PipelineState) error
}

// ReportService aggregates the scored jobs into the run result and writes
// the configured output artifacts to disk.
type ReportService interface {
	WriteReports(ctx context.Context, state *models.PipelineState) error
}

// NotifyService delivers the finished run result to the configured
// recipient. Delivery failure never fails the run.
type NotifyService interface {
	SendResult(ctx context.Context, state *models.PipelineState) error
}
