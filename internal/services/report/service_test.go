package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/models"
)

type fakePDF struct {
	err    error
	inputs []string
}

func (f *fakePDF) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	f.inputs = append(f.inputs, markdown)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func newTestService(pdf *fakePDF) *Service {
	return NewService(pdf, common.NewDefaultConfig(), arbor.NewLogger())
}

func newTestState(t *testing.T) *models.PipelineState {
	t.Helper()
	posted := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return &models.PipelineState{
		RunID:     "run_report",
		StartedAt: time.Now().UTC().Add(-time.Minute),
		Config: models.RunConfig{
			RunID:     "run_report",
			OutputDir: t.TempDir(),
		},
		Companies:      []models.Company{{ID: "comp_1", Name: "Acme"}},
		RawJobs:        []models.RawJob{{ID: "rawjob_1"}, {ID: "rawjob_2"}, {ID: "rawjob_3"}},
		NormalizedJobs: []models.NormalizedJob{{ID: "job_1"}, {ID: "job_2"}},
		ScoredJobs: []models.ScoredJob{
			{
				Rank: 1,
				Job: models.NormalizedJob{
					ID:          "job_1",
					CompanyName: "Acme",
					Title:       "Staff Engineer | Platform",
					Location:    "Sydney",
					RemoteType:  models.RemoteTypeRemote,
					SalaryMin:   190000,
					SalaryMax:   230000,
					Currency:    "USD",
					ApplyURL:    "https://acme.com/jobs/1",
					PostedDate:  &posted,
				},
				Fit: models.FitReport{
					Score:          92,
					Summary:        "Strong platform background.",
					Recommendation: models.RecommendationStrong,
					SkillOverlap:   []string{"Go", "Kubernetes"},
				},
			},
			{
				Rank: 2,
				Job: models.NormalizedJob{
					ID:          "job_2",
					CompanyName: "Initech",
					Title:       "Senior Backend Engineer",
					RemoteType:  models.RemoteTypeHybrid,
				},
				Fit: models.FitReport{
					Score:          75,
					Summary:        "Good fit, hybrid only.",
					Recommendation: models.RecommendationGood,
				},
			},
		},
		TotalTokens:  12000,
		TotalCostUSD: 0.42,
	}
}

func TestWriteReports(t *testing.T) {
	state := newTestState(t)
	pdf := &fakePDF{}
	service := newTestService(pdf)

	require.NoError(t, service.WriteReports(context.Background(), state))
	require.NotNil(t, state.Result)

	result := state.Result
	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, 1, result.CompaniesFound)
	assert.Equal(t, 3, result.JobsScraped)
	assert.Equal(t, 2, result.JobsProcessed)
	assert.Equal(t, 2, result.JobsScored)
	assert.Equal(t, 12000, result.TotalTokens)
	assert.False(t, result.FinishedAt.IsZero())
	require.Len(t, result.OutputFiles, 4)

	for _, path := range result.OutputFiles {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
}

func TestWriteReportsCSVContent(t *testing.T) {
	state := newTestState(t)
	service := newTestService(&fakePDF{})

	require.NoError(t, service.WriteReports(context.Background(), state))

	f, err := os.Open(filepath.Join(state.Config.OutputDir, "scored_jobs.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "92", records[1][1])
	assert.Equal(t, "strong_match", records[1][2])
	assert.Equal(t, "Acme", records[1][3])
	assert.Equal(t, "Staff Engineer | Platform", records[1][4])
	assert.Equal(t, "$190,000 - $230,000", records[1][7])
	assert.Equal(t, "2026-06-01", records[1][8])

	// Absent salary and date degrade to readable defaults.
	assert.Equal(t, "not stated", records[2][7])
	assert.Equal(t, "", records[2][8])
}

func TestWriteReportsMarkdownContent(t *testing.T) {
	state := newTestState(t)
	service := newTestService(&fakePDF{})

	require.NoError(t, service.WriteReports(context.Background(), state))

	content, err := os.ReadFile(filepath.Join(state.Config.OutputDir, "report.md"))
	require.NoError(t, err)
	markdown := string(content)

	assert.Contains(t, markdown, "# Job Search Report")
	assert.Contains(t, markdown, "`run_report`")
	assert.Contains(t, markdown, "**success**")
	assert.Contains(t, markdown, "| 1 | 92 | Acme |")
	// The pipe inside the title is escaped so the table stays intact.
	assert.Contains(t, markdown, "Staff Engineer \\| Platform")
	assert.Contains(t, markdown, "Strong platform background.")
	assert.Contains(t, markdown, "Matching skills: Go, Kubernetes")
	assert.Contains(t, markdown, "https://acme.com/jobs/1")
}

func TestWriteReportsResultJSON(t *testing.T) {
	state := newTestState(t)
	service := newTestService(&fakePDF{})

	require.NoError(t, service.WriteReports(context.Background(), state))

	data, err := os.ReadFile(filepath.Join(state.Config.OutputDir, "result.json"))
	require.NoError(t, err)

	var result models.RunResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "run_report", result.RunID)
	assert.Equal(t, models.StatusSuccess, result.Status)
	require.Len(t, result.TopJobs, 2)
	assert.Equal(t, "Acme", result.TopJobs[0].Job.CompanyName)

	// The JSON artifact lists the files written before it.
	assert.Len(t, result.OutputFiles, 3)
}

func TestWriteReportsEmptyScoredIsPartial(t *testing.T) {
	state := newTestState(t)
	state.ScoredJobs = nil

	service := newTestService(&fakePDF{})

	require.NoError(t, service.WriteReports(context.Background(), state))
	assert.Equal(t, models.StatusPartial, state.Result.Status)

	// CSV still exists with just the header row.
	f, err := os.Open(filepath.Join(state.Config.OutputDir, "scored_jobs.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)

	content, err := os.ReadFile(filepath.Join(state.Config.OutputDir, "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "No jobs cleared the score threshold")
}

func TestWriteReportsPDFFailureIsNonFatal(t *testing.T) {
	state := newTestState(t)
	pdf := &fakePDF{err: errors.New("font missing")}
	service := newTestService(pdf)

	require.NoError(t, service.WriteReports(context.Background(), state))

	// Three artifacts made it; the PDF failure is on the error list.
	require.Len(t, state.Result.OutputFiles, 3)
	require.NotEmpty(t, state.Errors)
	assert.Equal(t, models.StageAggregate, state.Errors[0].Stage)
	assert.Equal(t, models.ErrKindOutput, state.Errors[0].Kind)
	assert.Contains(t, state.Errors[0].Message, "font missing")

	// The recorded failure also lands on the result.
	assert.NotEmpty(t, state.Result.Errors)
}

func TestWriteReportsFormatSelection(t *testing.T) {
	state := newTestState(t)
	state.Config.OutputFormats = []string{"csv", "json"}

	pdf := &fakePDF{}
	service := newTestService(pdf)

	require.NoError(t, service.WriteReports(context.Background(), state))
	require.Len(t, state.Result.OutputFiles, 2)
	assert.Empty(t, pdf.inputs)

	_, err := os.Stat(filepath.Join(state.Config.OutputDir, "report.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteReportsErrorsSection(t *testing.T) {
	state := newTestState(t)
	state.AddError(models.AgentError{
		Stage:   models.StageScrapeJobs,
		Kind:    models.ErrKindScrape,
		Company: "Hooli",
		Message: "career page timed out",
	})

	service := newTestService(&fakePDF{})
	require.NoError(t, service.WriteReports(context.Background(), state))

	content, err := os.ReadFile(filepath.Join(state.Config.OutputDir, "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "## Issues (1)")
	assert.Contains(t, string(content), "scrape_jobs/scrape (Hooli): career page timed out")
}
