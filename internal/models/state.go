package models

import (
	"sort"
	"strings"
	"time"
)

// Pipeline stage names. The pipeline executes them in this order; checkpoint
// filenames and completed-step derivation use the same names.
const (
	StageParseResume   = "parse_resume"
	StageParsePrefs    = "parse_prefs"
	StageFindCompanies = "find_companies"
	StageScrapeJobs    = "scrape_jobs"
	StageProcessJobs   = "process_jobs"
	StageScoreJobs     = "score_jobs"
	StageAggregate     = "aggregate"
	StageNotify        = "notify"
)

// StageSequence lists the stages in execution order.
var StageSequence = []string{
	StageParseResume,
	StageParsePrefs,
	StageFindCompanies,
	StageScrapeJobs,
	StageProcessJobs,
	StageScoreJobs,
	StageAggregate,
	StageNotify,
}

// StageIndex returns the position of a stage in the pipeline order, or -1
// for an unknown name.
func StageIndex(name string) int {
	for i, stage := range StageSequence {
		if stage == name {
			return i
		}
	}
	return -1
}

// RunConfig is the per-run configuration snapshot carried inside
// PipelineState so a resumed run behaves exactly like the original.
type RunConfig struct {
	RunID           string `json:"run_id"`
	ResumePath      string `json:"resume_path"`
	PreferencesText string `json:"preferences_text"`

	OutputDir     string   `json:"output_dir"`
	OutputFormats []string `json:"output_formats,omitempty"`

	CompanyLimit           int `json:"company_limit,omitempty"` // 0 = uncapped
	MinScoreThreshold      int `json:"min_score_threshold"`
	MinRecommendedJobs     int `json:"min_recommended_jobs"`
	MaxDiscoveryIterations int `json:"max_discovery_iterations"`
	MaxConcurrentScrapers  int `json:"max_concurrent_scrapers"`
	AgentTimeoutSeconds    int `json:"agent_timeout_seconds"`

	MaxCostPerRunUSD     float64 `json:"max_cost_per_run_usd"`
	WarnCostThresholdUSD float64 `json:"warn_cost_threshold_usd"`

	CheckpointEnabled bool   `json:"checkpoint_enabled"`
	CheckpointDir     string `json:"checkpoint_dir,omitempty"`

	NotifyTo string `json:"notify_to,omitempty"`
}

// PipelineState is the mutable state threaded through every stage. It is
// owned by the pipeline goroutine; fan-out tasks return contributions and the
// owning stage performs all mutation. Every field round-trips through JSON
// checkpoints.
type PipelineState struct {
	RunID     string    `json:"run_id"`
	Config    RunConfig `json:"config"`
	StartedAt time.Time `json:"started_at"`

	Profile     *CandidateProfile  `json:"profile,omitempty"`
	Preferences *SearchPreferences `json:"preferences,omitempty"`

	Companies      []Company       `json:"companies,omitempty"`
	RawJobs        []RawJob        `json:"raw_jobs,omitempty"`
	NormalizedJobs []NormalizedJob `json:"normalized_jobs,omitempty"`
	ScoredJobs     []ScoredJob     `json:"scored_jobs,omitempty"`

	Errors []AgentError `json:"errors,omitempty"`

	TotalTokens  int     `json:"total_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	CostWarned   bool    `json:"cost_warned,omitempty"` // soft threshold warning emitted

	// AttemptedCompanies accumulates across adaptive iterations and feeds the
	// discovery prompt's exclusion list. Kept sorted and case-insensitively
	// unique.
	AttemptedCompanies []string `json:"attempted_companies,omitempty"`

	DiscoveryIteration int `json:"discovery_iteration"`

	// ScoredIterations counts discovery iterations whose scoring stage
	// finished. The scored list alone cannot mark score_jobs complete: a
	// refill pass resumed mid-iteration still carries the previous
	// iteration's scored jobs, and its fresh normalized jobs have not been
	// scored yet.
	ScoredIterations int `json:"scored_iterations,omitempty"`

	// CheckpointSeq increments on every checkpoint save. Resume ordering
	// uses it because stage order alone is not monotonic across refill
	// iterations.
	CheckpointSeq int `json:"checkpoint_seq,omitempty"`

	Result *RunResult `json:"result,omitempty"`
}

// NewPipelineState creates a fresh state from a run config.
func NewPipelineState(cfg RunConfig) *PipelineState {
	return &PipelineState{
		RunID:     cfg.RunID,
		Config:    cfg,
		StartedAt: time.Now().UTC(),
	}
}

// CompletedSteps derives the set of finished stages from populated fields.
// There is no stored flag set: a stage is done exactly when its output
// exists. score_jobs is the exception, tracked per discovery iteration.
func (s *PipelineState) CompletedSteps() map[string]bool {
	done := make(map[string]bool)
	if s.Profile != nil {
		done[StageParseResume] = true
	}
	if s.Preferences != nil {
		done[StageParsePrefs] = true
	}
	if len(s.Companies) > 0 {
		done[StageFindCompanies] = true
	}
	if len(s.RawJobs) > 0 {
		done[StageScrapeJobs] = true
	}
	if len(s.NormalizedJobs) > 0 {
		done[StageProcessJobs] = true
	}
	// Scoring is per-iteration: jobs from iteration N-1 in the scored list
	// say nothing about iteration N's normalized jobs.
	if s.ScoredIterations > s.DiscoveryIteration {
		done[StageScoreJobs] = true
	}
	if s.Result != nil {
		done[StageAggregate] = true
	}
	return done
}

// AddError appends a non-fatal error record, stamping the time if unset.
func (s *PipelineState) AddError(e AgentError) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	s.Errors = append(s.Errors, e)
}

// AddAttemptedCompanies records company names attempted this iteration.
// Names are deduplicated case-insensitively and kept sorted so serialized
// state is deterministic.
func (s *PipelineState) AddAttemptedCompanies(names ...string) {
	seen := make(map[string]bool, len(s.AttemptedCompanies)+len(names))
	for _, n := range s.AttemptedCompanies {
		seen[strings.ToLower(n)] = true
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[strings.ToLower(n)] {
			continue
		}
		seen[strings.ToLower(n)] = true
		s.AttemptedCompanies = append(s.AttemptedCompanies, n)
	}
	sort.Strings(s.AttemptedCompanies)
}

// HasAttemptedCompany reports whether a company name was already attempted
// in a previous iteration (case-insensitive).
func (s *PipelineState) HasAttemptedCompany(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range s.AttemptedCompanies {
		if strings.ToLower(n) == name {
			return true
		}
	}
	return false
}
