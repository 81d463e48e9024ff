// -----------------------------------------------------------------------
// Last Modified: Tuesday, 12th August 2026 3:05:41 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/costs"
	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

// scoreBatchSize is how many jobs go into one scoring call. Small batches
// keep the model's attention on each posting and bound the damage of a
// single malformed response.
const scoreBatchSize = 5

const scoreMaxTokens = 4096

const scoreSystemInstruction = `You are a recruiting analyst. Score each job posting for the candidate described in the prompt. Be honest: a low score with a clear summary is more useful than inflated optimism. Judge seniority and location against the candidate's stated preferences, not against what most applicants would accept.`

// Service scores normalized jobs against the candidate profile and search
// preferences, then ranks the survivors.
type Service struct {
	llm        interfaces.CompletionService
	accountant *costs.Accountant
	config     *common.Config
	logger     arbor.ILogger
}

var _ interfaces.ScoringService = (*Service)(nil)

func NewService(llm interfaces.CompletionService, accountant *costs.Accountant, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		llm:        llm,
		accountant: accountant,
		config:     config,
		logger:     logger,
	}
}

// ScoreJobs evaluates state.NormalizedJobs in batches and writes the ranked,
// threshold-filtered result to state.ScoredJobs. Without a parsed profile and
// preferences there is nothing to score against, so the stage is a no-op.
func (s *Service) ScoreJobs(ctx context.Context, state *models.PipelineState) error {
	if state.Profile == nil || state.Preferences == nil {
		s.logger.Warn().
			Str("run_id", state.RunID).
			Msg("Scoring skipped: no candidate profile or preferences on state")
		return nil
	}

	if len(state.NormalizedJobs) == 0 {
		s.logger.Info().
			Str("run_id", state.RunID).
			Msg("Scoring skipped: no normalized jobs")
		state.ScoredJobs = nil
		return nil
	}

	var scored []models.ScoredJob
	for start := 0; start < len(state.NormalizedJobs); start += scoreBatchSize {
		end := min(start+scoreBatchSize, len(state.NormalizedJobs))
		batch := state.NormalizedJobs[start:end]

		batchScored, err := s.scoreBatch(ctx, state, batch)
		if err != nil {
			var costErr *models.CostLimitExceededError
			if errors.As(err, &costErr) {
				return err
			}
			state.AddError(models.AgentError{
				Stage:   models.StageScoreJobs,
				Kind:    models.ErrKindScore,
				Message: fmt.Sprintf("scoring batch %d-%d failed: %v", start, end-1, err),
			})
			s.logger.Warn().Err(err).
				Int("batch_start", start).
				Int("batch_size", len(batch)).
				Msg("Scoring batch failed, continuing with remaining batches")
			continue
		}
		scored = append(scored, batchScored...)
	}

	state.ScoredJobs = rankAndFilter(scored, state.Config.MinScoreThreshold)

	s.logger.Info().
		Str("run_id", state.RunID).
		Int("normalized", len(state.NormalizedJobs)).
		Int("scored", len(scored)).
		Int("kept", len(state.ScoredJobs)).
		Int("min_score", state.Config.MinScoreThreshold).
		Msg("Job scoring complete")

	return nil
}

// scoreBatch sends one batch to the model and maps the response entries back
// onto the batch by index.
func (s *Service) scoreBatch(ctx context.Context, state *models.PipelineState, batch []models.NormalizedJob) ([]models.ScoredJob, error) {
	req := &interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: buildScoringPrompt(state.Profile, state.Preferences, batch)},
		},
		Temperature:       0.2,
		MaxTokens:         scoreMaxTokens,
		SystemInstruction: scoreSystemInstruction,
		OutputSchema:      scoringSchema,
	}

	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scoring call failed: %w", err)
	}
	if err := s.accountant.Record(state, resp.Usage); err != nil {
		return nil, err
	}

	var parsed scoringResponse
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return nil, fmt.Errorf("scoring response is not valid JSON: %w", err)
	}

	scored := make([]models.ScoredJob, 0, len(parsed.Scores))
	for _, item := range parsed.Scores {
		// The model occasionally invents indexes outside the batch. Those
		// entries cannot be attributed to a job, so they are dropped.
		if item.JobIndex < 0 || item.JobIndex >= len(batch) {
			s.logger.Warn().
				Int("job_index", item.JobIndex).
				Int("batch_size", len(batch)).
				Msg("Dropping score entry with out-of-range job index")
			continue
		}

		scored = append(scored, models.ScoredJob{
			Job: batch[item.JobIndex],
			Fit: models.FitReport{
				Score:          clampScore(item.Score),
				SkillOverlap:   item.SkillOverlap,
				SkillGaps:      item.SkillGaps,
				SeniorityMatch: item.SeniorityMatch,
				LocationMatch:  item.LocationMatch,
				OrgTypeMatch:   item.OrgTypeMatch,
				Summary:        item.Summary,
				Recommendation: models.CoerceRecommendation(item.Recommendation),
				Confidence:     clampConfidence(item.Confidence),
			},
		})
	}

	return scored, nil
}

// rankAndFilter orders jobs by descending score, drops everything below the
// threshold and assigns 1-based ranks. The sort is stable so jobs with equal
// scores keep their discovery order.
func rankAndFilter(scored []models.ScoredJob, minScore int) []models.ScoredJob {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Fit.Score > scored[j].Fit.Score
	})

	kept := make([]models.ScoredJob, 0, len(scored))
	for _, sj := range scored {
		if sj.Fit.Score < minScore {
			continue
		}
		sj.Rank = len(kept) + 1
		kept = append(kept, sj)
	}
	return kept
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

type scoringResponse struct {
	Scores []scoreEntry `json:"scores"`
}

type scoreEntry struct {
	JobIndex       int      `json:"job_index"`
	Score          int      `json:"score"`
	SkillOverlap   []string `json:"skill_overlap"`
	SkillGaps      []string `json:"skill_gaps"`
	SeniorityMatch bool     `json:"seniority_match"`
	LocationMatch  bool     `json:"location_match"`
	OrgTypeMatch   bool     `json:"org_type_match"`
	Summary        string   `json:"summary"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
}

var scoringSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"scores": map[string]interface{}{
			"type":        "array",
			"description": "One entry per job, referencing the job by its index in the prompt",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"job_index": map[string]interface{}{
						"type":        "integer",
						"description": "Index of the job this entry scores, as given in the prompt",
					},
					"score": map[string]interface{}{
						"type":        "integer",
						"description": "Overall fit from 0 (no fit) to 100 (ideal)",
					},
					"skill_overlap": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"skill_gaps": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"seniority_match": map[string]interface{}{"type": "boolean"},
					"location_match":  map[string]interface{}{"type": "boolean"},
					"org_type_match":  map[string]interface{}{"type": "boolean"},
					"summary": map[string]interface{}{
						"type":        "string",
						"description": "Two or three sentences on why this job does or does not fit",
					},
					"recommendation": map[string]interface{}{
						"type": "string",
						"enum": []string{"strong_match", "good_match", "stretch", "mismatch"},
					},
					"confidence": map[string]interface{}{
						"type":        "number",
						"description": "Confidence in this assessment from 0 to 1",
					},
				},
				"required": []string{"job_index", "score", "summary", "recommendation"},
			},
		},
	},
	"required": []string{"scores"},
}
