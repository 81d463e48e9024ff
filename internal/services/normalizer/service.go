package normalizer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/costs"
	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

// postedDateKeys are tried in order when mapping a board API record. The
// mix of snake_case and camelCase covers Greenhouse, Lever and Ashby.
var postedDateKeys = []string{
	"updated_at", "publishedAt", "published_at",
	"created_at", "date_posted", "createdAt",
}

// Service turns raw scraped artifacts into canonical postings. API records
// map directly; crawled HTML goes through LLM extraction.
type Service struct {
	llm        interfaces.CompletionService
	accountant *costs.Accountant
	config     *common.Config
	logger     arbor.ILogger
}

var _ interfaces.NormalizeService = (*Service)(nil)

// NewService creates a normalizer.
func NewService(llm interfaces.CompletionService, accountant *costs.Accountant, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		llm:        llm,
		accountant: accountant,
		config:     config,
		logger:     logger,
	}
}

// ProcessJobs normalizes every raw job on the state into
// state.NormalizedJobs, deduplicating by content fingerprint. Per-job
// failures are recorded as non-fatal errors; only cost-limit breaches
// abort.
func (s *Service) ProcessJobs(ctx context.Context, state *models.PipelineState) error {
	seen := make(map[string]bool, len(state.RawJobs))
	normalized := make([]models.NormalizedJob, 0, len(state.RawJobs))
	duplicates := 0

	for i := range state.RawJobs {
		raw := &state.RawJobs[i]

		job, err := s.normalizeOne(ctx, state, raw)
		if err != nil {
			var costErr *models.CostLimitExceededError
			if errors.As(err, &costErr) {
				return err
			}
			state.AddError(models.AgentError{
				Stage:   models.StageProcessJobs,
				Kind:    models.ErrKindNormalize,
				Message: err.Error(),
				Company: raw.CompanyName,
				JobID:   raw.ID,
			})
			continue
		}
		if job == nil {
			continue
		}
		if seen[job.Fingerprint] {
			duplicates++
			continue
		}
		seen[job.Fingerprint] = true
		normalized = append(normalized, *job)
	}

	state.NormalizedJobs = normalized

	s.logger.Info().
		Int("raw_jobs", len(state.RawJobs)).
		Int("normalized", len(normalized)).
		Int("duplicates", duplicates).
		Msg("Job normalization complete")
	return nil
}

func (s *Service) normalizeOne(ctx context.Context, state *models.PipelineState, raw *models.RawJob) (*models.NormalizedJob, error) {
	switch {
	case len(raw.RawJSON) > 0:
		return s.mapJSONRecord(raw), nil
	case raw.RawHTML != "":
		return s.extractFromHTML(ctx, state, raw)
	default:
		return nil, errors.New("raw job carries neither JSON nor HTML content")
	}
}

// mapJSONRecord maps a board API record onto a NormalizedJob without an LLM
// call. Records without a title are skipped.
func (s *Service) mapJSONRecord(raw *models.RawJob) *models.NormalizedJob {
	record := raw.RawJSON

	title := strings.TrimSpace(stringField(record, "title", "text"))
	if title == "" {
		s.logger.Debug().
			Str("raw_job_id", raw.ID).
			Str("company", raw.CompanyName).
			Msg("Skipping API record without a title")
		return nil
	}

	applyURL := common.NormalizeJobURL(raw.SourceURL,
		stringField(record, "absolute_url", "applyUrl", "applicationUrl", "apply_url"))
	if applyURL == "" {
		applyURL = raw.SourceURL
	}

	job := &models.NormalizedJob{
		ID:          common.NewJobID(),
		RawJobID:    raw.ID,
		CompanyID:   raw.CompanyID,
		CompanyName: raw.CompanyName,
		Title:       title,
		Description: stringField(record, "content", "description"),
		ApplyURL:    applyURL,
		Location:    locationField(record),
		RemoteType:  models.RemoteTypeUnknown,
		PostedDate:  postedDateField(record),
	}
	job.ComputeFingerprint()
	return job
}

// stringField returns the first non-empty string value among the keys.
func stringField(record map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := record[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// locationField handles the location shapes board APIs use: Greenhouse
// nests {"location": {"name": ...}}, Lever nests
// {"categories": {"location": ...}}, some boards send a plain string.
func locationField(record map[string]interface{}) string {
	if loc, ok := record["location"].(map[string]interface{}); ok {
		if name, ok := loc["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	}
	if loc, ok := record["location"].(string); ok {
		return strings.TrimSpace(loc)
	}
	if cats, ok := record["categories"].(map[string]interface{}); ok {
		if loc, ok := cats["location"].(string); ok {
			return strings.TrimSpace(loc)
		}
	}
	return ""
}

func postedDateField(record map[string]interface{}) *time.Time {
	for _, key := range postedDateKeys {
		value, ok := record[key]
		if !ok || value == nil {
			continue
		}
		if t := parseDateValue(value); t != nil {
			return t
		}
	}
	return nil
}

// parseDateValue handles the two date encodings board APIs use: ISO-8601
// strings, where the leading YYYY-MM-DD is enough, and numeric Unix epochs
// in seconds or milliseconds.
func parseDateValue(value interface{}) *time.Time {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		if len(s) < 10 {
			return nil
		}
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return &t
		}
	case float64:
		switch {
		case v > 1e12:
			t := time.UnixMilli(int64(v)).UTC()
			return &t
		case v > 1e9:
			t := time.Unix(int64(v), 0).UTC()
			return &t
		}
	}
	return nil
}
