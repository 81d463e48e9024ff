// -----------------------------------------------------------------------
// Last Modified: Tuesday, 12th August 2026 3:05:41 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
	"github.com/ternarybob/jobhunter/internal/services/scorer"
)

// Service is the aggregate stage: it folds the final state into a RunResult
// and writes the configured artifacts. A failed artifact is recorded and
// skipped; the stage itself only fails when the output directory cannot be
// created.
type Service struct {
	pdf    interfaces.PDFService
	config *common.Config
	logger arbor.ILogger
}

var _ interfaces.ReportService = (*Service)(nil)

func NewService(pdf interfaces.PDFService, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		pdf:    pdf,
		config: config,
		logger: logger,
	}
}

// WriteReports builds state.Result and writes the run artifacts. The result
// status is partial when no job cleared the threshold; whatever was learned
// still gets written. A result already present on the state (set by the
// pipeline when classifying an aborted run) is kept instead of refolded.
func (s *Service) WriteReports(ctx context.Context, state *models.PipelineState) error {
	result := state.Result
	if result == nil {
		result = models.BuildRunResult(state)
	} else {
		result.FinishedAt = time.Now().UTC()
	}

	outputDir := state.Config.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(s.config.Output.Dir, state.RunID)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	formats := state.Config.OutputFormats
	if len(formats) == 0 {
		formats = s.config.Output.Formats
	}
	if len(formats) == 0 {
		formats = []string{"csv", "md", "pdf", "json"}
	}

	// The markdown report feeds both the md artifact and the PDF.
	markdown := ""
	if wantsFormat(formats, "md") || wantsFormat(formats, "pdf") {
		rendered, err := RenderMarkdown(result)
		if err != nil {
			s.recordOutputError(state, "markdown", err)
		} else {
			markdown = rendered
		}
	}

	if wantsFormat(formats, "csv") {
		path := filepath.Join(outputDir, "scored_jobs.csv")
		if err := writeCSV(path, state.ScoredJobs); err != nil {
			s.recordOutputError(state, "csv", err)
		} else {
			result.OutputFiles = append(result.OutputFiles, path)
		}
	}

	if wantsFormat(formats, "md") && markdown != "" {
		path := filepath.Join(outputDir, "report.md")
		if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
			s.recordOutputError(state, "md", err)
		} else {
			result.OutputFiles = append(result.OutputFiles, path)
		}
	}

	if wantsFormat(formats, "pdf") && markdown != "" {
		path := filepath.Join(outputDir, "report.pdf")
		title := fmt.Sprintf("Job Search Report %s", state.RunID)
		if pdfBytes, err := s.pdf.ConvertMarkdownToPDF(markdown, title); err != nil {
			s.recordOutputError(state, "pdf", err)
		} else if err := os.WriteFile(path, pdfBytes, 0644); err != nil {
			s.recordOutputError(state, "pdf", err)
		} else {
			result.OutputFiles = append(result.OutputFiles, path)
		}
	}

	if wantsFormat(formats, "json") {
		// Written last so it lists the other artifacts.
		path := filepath.Join(outputDir, "result.json")
		result.Errors = state.Errors
		if err := writeJSON(path, result); err != nil {
			s.recordOutputError(state, "json", err)
		} else {
			result.OutputFiles = append(result.OutputFiles, path)
		}
	}

	// Artifact failures recorded above belong on the result too.
	result.Errors = state.Errors
	state.Result = result

	s.logger.Info().
		Str("run_id", state.RunID).
		Str("status", string(result.Status)).
		Int("jobs_scored", result.JobsScored).
		Int("output_files", len(result.OutputFiles)).
		Str("output_dir", outputDir).
		Msg("Run report written")

	return nil
}

func (s *Service) recordOutputError(state *models.PipelineState, format string, err error) {
	state.AddError(models.AgentError{
		Stage:   models.StageAggregate,
		Kind:    models.ErrKindOutput,
		Message: fmt.Sprintf("%s artifact write failed: %v", format, err),
	})
	s.logger.Warn().Err(err).Str("format", format).Msg("Artifact write failed, continuing with remaining outputs")
}

func wantsFormat(formats []string, format string) bool {
	for _, f := range formats {
		if strings.EqualFold(strings.TrimSpace(f), format) {
			return true
		}
	}
	return false
}

var csvHeader = []string{
	"rank", "score", "recommendation", "company", "title", "location",
	"remote_type", "salary", "posted_date", "apply_url", "summary",
}

func writeCSV(path string, jobs []models.ScoredJob) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, sj := range jobs {
		if err := w.Write(csvRow(sj)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func csvRow(sj models.ScoredJob) []string {
	postedDate := ""
	if sj.Job.PostedDate != nil {
		postedDate = sj.Job.PostedDate.Format("2006-01-02")
	}
	return []string{
		strconv.Itoa(sj.Rank),
		strconv.Itoa(sj.Fit.Score),
		string(sj.Fit.Recommendation),
		sj.Job.CompanyName,
		sj.Job.Title,
		sj.Job.Location,
		string(sj.Job.RemoteType),
		scorer.FormatSalaryRange(sj.Job.SalaryMin, sj.Job.SalaryMax, sj.Job.Currency),
		postedDate,
		sj.Job.ApplyURL,
		sj.Fit.Summary,
	}
}

func writeJSON(path string, result *models.RunResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
