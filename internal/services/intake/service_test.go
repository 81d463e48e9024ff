package intake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
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
	usage     interfaces.Usage
	requests  []*interfaces.CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req *interfaces.CompletionRequest) (*interfaces.CompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
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

type fakeExtractor struct {
	text  string
	err   error
	paths []string
}

func (f *fakeExtractor) ExtractTextFromFile(ctx context.Context, path string) (string, error) {
	f.paths = append(f.paths, path)
	return f.text, f.err
}

func (f *fakeExtractor) ExtractTextFromBytes(ctx context.Context, content []byte) (string, error) {
	return f.text, f.err
}

func newTestService(llm interfaces.CompletionService, extractor interfaces.PDFExtractor) *Service {
	cfg := common.NewDefaultConfig()
	return NewService(llm, costs.NewAccountant(arbor.NewLogger()), extractor, cfg, arbor.NewLogger())
}

func newTestState() *models.PipelineState {
	return &models.PipelineState{
		RunID: "run_test",
		Config: models.RunConfig{
			RunID:                "run_test",
			ResumePath:           "resume.pdf",
			PreferencesText:      "Remote staff roles at product companies, 200k USD minimum.",
			MaxCostPerRunUSD:     5.0,
			WarnCostThresholdUSD: 2.0,
		},
	}
}

const profileJSON = `{
	"name": "Jane Doe",
	"email": "jane@example.com",
	"years_experience": 9,
	"skills": [
		{"name": "Go", "proficiency": "expert", "years": 6},
		{"name": "PostgreSQL", "years": 5},
		{"name": "  ", "years": 2}
	],
	"current_title": "Senior Backend Engineer",
	"seniority": "Senior",
	"industries": ["fintech"],
	"technologies": ["Kubernetes", "AWS"]
}`

func TestParseResumePDF(t *testing.T) {
	state := newTestState()
	extractor := &fakeExtractor{text: "Jane Doe\nSenior Backend Engineer\nGo, PostgreSQL"}
	llm := &fakeLLM{
		responses: []string{profileJSON},
		usage:     interfaces.Usage{Model: "gemini-2.5-flash", InputTokens: 800, OutputTokens: 200},
	}
	service := newTestService(llm, extractor)

	require.NoError(t, service.ParseResume(context.Background(), state))
	require.NotNil(t, state.Profile)
	require.Equal(t, []string{"resume.pdf"}, extractor.paths)

	profile := state.Profile
	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.Equal(t, 9, profile.YearsExperience)
	assert.Equal(t, "Senior Backend Engineer", profile.CurrentTitle)
	assert.Equal(t, models.SenioritySenior, profile.Seniority)
	assert.Equal(t, []string{"fintech"}, profile.Industries)

	// The blank skill entry is dropped.
	require.Len(t, profile.Skills, 2)
	assert.Equal(t, "Go", profile.Skills[0].Name)
	assert.Equal(t, "expert", profile.Skills[0].Proficiency)
	assert.Equal(t, 6, profile.Skills[0].Years)

	assert.Equal(t, extractor.text, profile.RawText)
	assert.Equal(t, models.TextFingerprint(extractor.text), profile.Fingerprint)

	assert.Equal(t, 1000, state.TotalTokens)
}

func TestParseResumePlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe, engineer"), 0644))

	state := newTestState()
	state.Config.ResumePath = path

	extractor := &fakeExtractor{text: "should not be used"}
	llm := &fakeLLM{responses: []string{profileJSON}}
	service := newTestService(llm, extractor)

	require.NoError(t, service.ParseResume(context.Background(), state))
	assert.Empty(t, extractor.paths)
	assert.Equal(t, "Jane Doe, engineer", state.Profile.RawText)
}

func TestParseResumeUnsupportedFormat(t *testing.T) {
	state := newTestState()
	state.Config.ResumePath = "resume.docx"

	service := newTestService(&fakeLLM{}, &fakeExtractor{})

	err := service.ParseResume(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported resume format")
}

func TestParseResumeNoPath(t *testing.T) {
	state := newTestState()
	state.Config.ResumePath = ""

	service := newTestService(&fakeLLM{}, &fakeExtractor{})

	err := service.ParseResume(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resume path")
}

func TestParseResumeEmptyExtraction(t *testing.T) {
	state := newTestState()
	extractor := &fakeExtractor{text: "   \n  "}
	llm := &fakeLLM{}
	service := newTestService(llm, extractor)

	err := service.ParseResume(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extractable text")
	assert.Empty(t, llm.requests)
}

func TestParseResumeExtractionFailure(t *testing.T) {
	state := newTestState()
	extractor := &fakeExtractor{err: errors.New("encrypted document")}
	service := newTestService(&fakeLLM{}, extractor)

	err := service.ParseResume(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resume PDF extraction failed")
}

func TestParseResumeClampsNegativeYears(t *testing.T) {
	state := newTestState()
	extractor := &fakeExtractor{text: "resume text"}
	llm := &fakeLLM{responses: []string{`{"name":"Jane","seniority":"weird title","years_experience":-3,"skills":[{"name":"Go","years":-1}]}`}}
	service := newTestService(llm, extractor)

	require.NoError(t, service.ParseResume(context.Background(), state))
	assert.Equal(t, 0, state.Profile.YearsExperience)
	assert.Equal(t, models.SeniorityMid, state.Profile.Seniority)
	require.Len(t, state.Profile.Skills, 1)
	assert.Equal(t, 0, state.Profile.Skills[0].Years)
}

func TestParseResumeInvalidJSON(t *testing.T) {
	state := newTestState()
	extractor := &fakeExtractor{text: "resume text"}
	llm := &fakeLLM{
		responses: []string{"not json"},
		usage:     interfaces.Usage{Model: "gemini-2.5-flash", InputTokens: 500, OutputTokens: 50},
	}
	service := newTestService(llm, extractor)

	err := service.ParseResume(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")

	// Usage was recorded even though parsing failed.
	assert.Equal(t, 550, state.TotalTokens)
}

const preferencesJSON = `{
	"locations": ["Sydney", " "],
	"remote_preference": "fully remote",
	"target_titles": ["Staff Engineer"],
	"target_seniority": "staff",
	"org_types": ["product company"],
	"excluded_companies": ["BigCorp"],
	"preferred_companies": [],
	"salary_min": 250000,
	"salary_max": 200000,
	"currency": "usd"
}`

func TestParsePreferences(t *testing.T) {
	state := newTestState()
	state.Profile = &models.CandidateProfile{
		CurrentTitle: "Senior Backend Engineer",
		Seniority:    models.SenioritySenior,
	}

	llm := &fakeLLM{
		responses: []string{preferencesJSON},
		usage:     interfaces.Usage{Model: "gemini-2.5-flash", InputTokens: 400, OutputTokens: 150},
	}
	service := newTestService(llm, &fakeExtractor{})

	require.NoError(t, service.ParsePreferences(context.Background(), state))
	require.NotNil(t, state.Preferences)

	prefs := state.Preferences
	assert.Equal(t, []string{"Sydney"}, prefs.Locations)
	assert.Equal(t, models.RemotePrefRemote, prefs.RemotePreference)
	assert.Equal(t, []string{"Staff Engineer"}, prefs.TargetTitles)
	assert.Equal(t, []string{"BigCorp"}, prefs.ExcludedCompanies)
	assert.Equal(t, "USD", prefs.Currency)
	assert.Equal(t, state.Config.PreferencesText, prefs.RawText)

	// Out-of-order salary bounds are swapped.
	assert.Equal(t, 200000, prefs.SalaryMin)
	assert.Equal(t, 250000, prefs.SalaryMax)

	// Profile context flows into the prompt.
	require.Len(t, llm.requests, 1)
	assert.Contains(t, llm.requests[0].Messages[0].Content, "Senior Backend Engineer")
	assert.Contains(t, llm.requests[0].Messages[0].Content, state.Config.PreferencesText)

	assert.Equal(t, 550, state.TotalTokens)
}

func TestParsePreferencesNoText(t *testing.T) {
	state := newTestState()
	state.Config.PreferencesText = "   "

	llm := &fakeLLM{}
	service := newTestService(llm, &fakeExtractor{})

	err := service.ParsePreferences(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no preferences text")
	assert.Empty(t, llm.requests)
}

func TestParsePreferencesLLMFailure(t *testing.T) {
	state := newTestState()
	llm := &fakeLLM{err: errors.New("model unavailable")}
	service := newTestService(llm, &fakeExtractor{})

	err := service.ParsePreferences(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preferences parsing failed")
}

func TestParseResumeCostLimitPropagates(t *testing.T) {
	state := newTestState()
	state.Config.MaxCostPerRunUSD = 0.01

	extractor := &fakeExtractor{text: "resume text"}
	llm := &fakeLLM{
		responses: []string{profileJSON},
		usage:     interfaces.Usage{Model: "gemini-2.5-flash", InputTokens: 1_000_000, OutputTokens: 100_000},
	}
	service := newTestService(llm, extractor)

	err := service.ParseResume(context.Background(), state)
	require.Error(t, err)

	var costErr *models.CostLimitExceededError
	require.ErrorAs(t, err, &costErr)
	assert.Nil(t, state.Profile)
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, cleanList([]string{" a ", "", "b", "  "}))
	assert.Empty(t, cleanList(nil))
}
