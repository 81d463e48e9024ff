package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/costs"
	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

type fakeLLM struct {
	responses []string
	err       error
	errOnCall int // 1-based call that returns err; 0 means every call
	usage     interfaces.Usage
	requests  []*interfaces.CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req *interfaces.CompletionRequest) (*interfaces.CompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil && (f.errOnCall == 0 || f.errOnCall == len(f.requests)) {
		return nil, f.err
	}
	text := ""
	if len(f.responses) > 0 {
		text = f.responses[0]
		f.responses = f.responses[1:]
	}
	return &interfaces.CompletionResponse{
		Text:  text,
		Model: f.usage.Model,
		Usage: f.usage,
	}, nil
}

func newTestService(llm interfaces.CompletionService) *Service {
	cfg := common.NewDefaultConfig()
	return NewService(llm, costs.NewAccountant(arbor.NewLogger()), cfg, arbor.NewLogger())
}

func newTestState(jobs ...models.NormalizedJob) *models.PipelineState {
	return &models.PipelineState{
		RunID: "run_test",
		Config: models.RunConfig{
			RunID:                "run_test",
			MinScoreThreshold:    60,
			MaxCostPerRunUSD:     5.0,
			WarnCostThresholdUSD: 2.0,
		},
		Profile: &models.CandidateProfile{
			Name:            "Jane Doe",
			CurrentTitle:    "Senior Backend Engineer",
			Seniority:       models.SenioritySenior,
			YearsExperience: 9,
			Skills:          []models.Skill{{Name: "Go"}, {Name: "PostgreSQL"}},
		},
		Preferences: &models.SearchPreferences{
			TargetTitles:     []string{"Staff Engineer", "Senior Backend Engineer"},
			RemotePreference: models.RemotePrefRemote,
			Locations:        []string{"Sydney"},
			SalaryMin:        180000,
			Currency:         "USD",
		},
		NormalizedJobs: jobs,
	}
}

func testJob(id, title string) models.NormalizedJob {
	return models.NormalizedJob{
		ID:          id,
		CompanyName: "Acme",
		Title:       title,
		RemoteType:  models.RemoteTypeRemote,
	}
}

// scoresJSON builds a scoring response where entry i scores job index
// indexes[i] with scores[i].
func scoresJSON(t *testing.T, indexes []int, scores []int) string {
	t.Helper()
	entries := make([]map[string]interface{}, 0, len(indexes))
	for i, idx := range indexes {
		entries = append(entries, map[string]interface{}{
			"job_index":      idx,
			"score":          scores[i],
			"skill_overlap":  []string{"Go"},
			"skill_gaps":     []string{"Kubernetes"},
			"summary":        fmt.Sprintf("assessment %d", idx),
			"recommendation": "good_match",
			"confidence":     0.8,
		})
	}
	raw, err := json.Marshal(map[string]interface{}{"scores": entries})
	require.NoError(t, err)
	return string(raw)
}

func TestScoreJobsRanksAndFilters(t *testing.T) {
	state := newTestState(
		testJob("job_1", "Backend Engineer"),
		testJob("job_2", "Staff Engineer"),
		testJob("job_3", "Support Engineer"),
	)

	llm := &fakeLLM{
		responses: []string{scoresJSON(t, []int{0, 1, 2}, []int{70, 92, 55})},
		usage:     interfaces.Usage{Model: "gemini-2.5-flash", InputTokens: 900, OutputTokens: 300},
	}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	require.Len(t, llm.requests, 1)
	require.Len(t, state.ScoredJobs, 2)

	// Highest score first, 1-based ranks, sub-threshold job dropped.
	assert.Equal(t, "job_2", state.ScoredJobs[0].Job.ID)
	assert.Equal(t, 1, state.ScoredJobs[0].Rank)
	assert.Equal(t, 92, state.ScoredJobs[0].Fit.Score)
	assert.Equal(t, "job_1", state.ScoredJobs[1].Job.ID)
	assert.Equal(t, 2, state.ScoredJobs[1].Rank)

	fit := state.ScoredJobs[0].Fit
	assert.Equal(t, []string{"Go"}, fit.SkillOverlap)
	assert.Equal(t, []string{"Kubernetes"}, fit.SkillGaps)
	assert.Equal(t, models.RecommendationGood, fit.Recommendation)
	assert.InDelta(t, 0.8, fit.Confidence, 0.001)

	// Usage was charged against the run.
	assert.Equal(t, 1200, state.TotalTokens)
	assert.Greater(t, state.TotalCostUSD, 0.0)
}

func TestScoreJobsThresholdIsInclusive(t *testing.T) {
	state := newTestState(testJob("job_1", "Backend Engineer"))
	state.Config.MinScoreThreshold = 60

	llm := &fakeLLM{responses: []string{scoresJSON(t, []int{0}, []int{60})}}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	require.Len(t, state.ScoredJobs, 1)
	assert.Equal(t, 60, state.ScoredJobs[0].Fit.Score)
}

func TestScoreJobsStableOrderOnTies(t *testing.T) {
	state := newTestState(
		testJob("job_1", "Backend Engineer"),
		testJob("job_2", "Platform Engineer"),
	)

	llm := &fakeLLM{responses: []string{scoresJSON(t, []int{0, 1}, []int{80, 80})}}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	require.Len(t, state.ScoredJobs, 2)
	assert.Equal(t, "job_1", state.ScoredJobs[0].Job.ID)
	assert.Equal(t, "job_2", state.ScoredJobs[1].Job.ID)
}

func TestScoreJobsSkipsWithoutProfile(t *testing.T) {
	state := newTestState(testJob("job_1", "Backend Engineer"))
	state.Profile = nil

	llm := &fakeLLM{}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	assert.Empty(t, llm.requests)
	assert.Nil(t, state.ScoredJobs)
}

func TestScoreJobsSkipsWithoutPreferences(t *testing.T) {
	state := newTestState(testJob("job_1", "Backend Engineer"))
	state.Preferences = nil

	llm := &fakeLLM{}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	assert.Empty(t, llm.requests)
}

func TestScoreJobsNoJobs(t *testing.T) {
	state := newTestState()

	llm := &fakeLLM{}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	assert.Empty(t, llm.requests)
	assert.Nil(t, state.ScoredJobs)
}

func TestScoreJobsBatchesOfFive(t *testing.T) {
	jobs := make([]models.NormalizedJob, 0, 7)
	for i := 0; i < 7; i++ {
		jobs = append(jobs, testJob(fmt.Sprintf("job_%d", i), fmt.Sprintf("Engineer %d", i)))
	}
	state := newTestState(jobs...)
	state.Config.MinScoreThreshold = 0

	llm := &fakeLLM{
		responses: []string{
			scoresJSON(t, []int{0, 1, 2, 3, 4}, []int{90, 85, 80, 75, 70}),
			scoresJSON(t, []int{0, 1}, []int{65, 95}),
		},
	}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	require.Len(t, llm.requests, 2)
	require.Len(t, state.ScoredJobs, 7)

	// Batch indexes are relative: index 1 of the second batch is job_6,
	// which scored highest overall.
	assert.Equal(t, "job_6", state.ScoredJobs[0].Job.ID)
	assert.Equal(t, 95, state.ScoredJobs[0].Fit.Score)
	assert.Equal(t, 1, state.ScoredJobs[0].Rank)
	assert.Equal(t, 7, state.ScoredJobs[6].Rank)

	// The second prompt describes only the second batch.
	secondPrompt := llm.requests[1].Messages[0].Content
	assert.Contains(t, secondPrompt, "Engineer 5")
	assert.NotContains(t, secondPrompt, "Engineer 4")
}

func TestScoreJobsDropsOutOfRangeIndex(t *testing.T) {
	state := newTestState(
		testJob("job_1", "Backend Engineer"),
		testJob("job_2", "Platform Engineer"),
	)
	state.Config.MinScoreThreshold = 0

	llm := &fakeLLM{responses: []string{scoresJSON(t, []int{0, 7}, []int{80, 90})}}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	require.Len(t, state.ScoredJobs, 1)
	assert.Equal(t, "job_1", state.ScoredJobs[0].Job.ID)
	assert.Empty(t, state.Errors)
}

func TestScoreJobsClampsScoreAndCoercesRecommendation(t *testing.T) {
	state := newTestState(testJob("job_1", "Backend Engineer"))
	state.Config.MinScoreThreshold = 0

	llm := &fakeLLM{responses: []string{`{"scores":[{"job_index":0,"score":140,"summary":"great","recommendation":"definitely apply","confidence":1.4}]}`}}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	require.Len(t, state.ScoredJobs, 1)

	fit := state.ScoredJobs[0].Fit
	assert.Equal(t, 100, fit.Score)
	assert.Equal(t, models.RecommendationStretch, fit.Recommendation)
	assert.InDelta(t, 1.0, fit.Confidence, 0.001)
}

func TestScoreJobsBatchFailureIsNonFatal(t *testing.T) {
	jobs := make([]models.NormalizedJob, 0, 6)
	for i := 0; i < 6; i++ {
		jobs = append(jobs, testJob(fmt.Sprintf("job_%d", i), fmt.Sprintf("Engineer %d", i)))
	}
	state := newTestState(jobs...)
	state.Config.MinScoreThreshold = 0

	llm := &fakeLLM{
		err:       errors.New("model overloaded"),
		errOnCall: 1,
		responses: []string{scoresJSON(t, []int{0}, []int{88})},
	}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	require.Len(t, llm.requests, 2)

	// The second batch still scored.
	require.Len(t, state.ScoredJobs, 1)
	assert.Equal(t, "job_5", state.ScoredJobs[0].Job.ID)

	require.Len(t, state.Errors, 1)
	assert.Equal(t, models.StageScoreJobs, state.Errors[0].Stage)
	assert.Equal(t, models.ErrKindScore, state.Errors[0].Kind)
	assert.Contains(t, state.Errors[0].Message, "model overloaded")
}

func TestScoreJobsInvalidJSONIsNonFatal(t *testing.T) {
	state := newTestState(testJob("job_1", "Backend Engineer"))

	llm := &fakeLLM{responses: []string{"not json at all"}}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	assert.Empty(t, state.ScoredJobs)
	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0].Message, "not valid JSON")
}

func TestScoreJobsCostLimitAborts(t *testing.T) {
	state := newTestState(
		testJob("job_1", "Backend Engineer"),
		testJob("job_2", "Platform Engineer"),
	)
	state.Config.MaxCostPerRunUSD = 0.01

	llm := &fakeLLM{
		responses: []string{scoresJSON(t, []int{0, 1}, []int{80, 70})},
		usage:     interfaces.Usage{Model: "gemini-2.5-flash", InputTokens: 1_000_000, OutputTokens: 100_000},
	}
	service := newTestService(llm)

	err := service.ScoreJobs(context.Background(), state)
	require.Error(t, err)

	var costErr *models.CostLimitExceededError
	require.ErrorAs(t, err, &costErr)
	assert.Nil(t, state.ScoredJobs)
	assert.Greater(t, state.TotalCostUSD, 0.01)
}

func TestScoreJobsPromptAndSchema(t *testing.T) {
	state := newTestState(
		models.NormalizedJob{
			ID:          "job_1",
			CompanyName: "Acme",
			Title:       "Staff Engineer",
			Location:    "Sydney",
			RemoteType:  models.RemoteTypeRemote,
			SalaryMin:   190000,
			SalaryMax:   230000,
			Currency:    "USD",
		},
	)

	llm := &fakeLLM{responses: []string{scoresJSON(t, []int{0}, []int{90})}}
	service := newTestService(llm)

	require.NoError(t, service.ScoreJobs(context.Background(), state))
	require.Len(t, llm.requests, 1)

	req := llm.requests[0]
	assert.NotNil(t, req.OutputSchema)
	assert.NotEmpty(t, req.SystemInstruction)

	prompt := req.Messages[0].Content
	assert.Contains(t, prompt, "Jane Doe")
	assert.Contains(t, prompt, "Go, PostgreSQL")
	assert.Contains(t, prompt, "### Job 0")
	assert.Contains(t, prompt, "Staff Engineer")
	assert.Contains(t, prompt, "$190,000 - $230,000")
	assert.Contains(t, prompt, "from $180,000")
}

func TestFormatSalaryRange(t *testing.T) {
	tests := []struct {
		name     string
		min      int
		max      int
		currency string
		want     string
	}{
		{"usd range", 120000, 150000, "USD", "$120,000 - $150,000"},
		{"inr range", 2500000, 4000000, "INR", "₹2,500,000 - ₹4,000,000"},
		{"eur lower case code", 80000, 95000, "eur", "€80,000 - €95,000"},
		{"gbp range", 70000, 90000, "GBP", "£70,000 - £90,000"},
		{"unknown code prefixes verbatim", 80000, 100000, "AUD", "AUD 80,000 - AUD 100,000"},
		{"min only", 120000, 0, "USD", "from $120,000"},
		{"max only", 0, 150000, "USD", "up to $150,000"},
		{"no currency", 90000, 110000, "", "90,000 - 110,000"},
		{"nothing stated", 0, 0, "USD", "not stated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSalaryRange(tt.min, tt.max, tt.currency))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "950", formatAmount(950))
	assert.Equal(t, "1,000", formatAmount(1000))
	assert.Equal(t, "120,000", formatAmount(120000))
	assert.Equal(t, "2,500,000", formatAmount(2500000))
}
