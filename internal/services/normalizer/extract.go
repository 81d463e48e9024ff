package normalizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

const (
	// minHTMLLength filters out error pages and empty shells before an LLM
	// call is spent on them.
	minHTMLLength = 100

	// maxExtractChars bounds how much page content goes into the
	// extraction prompt.
	maxExtractChars = 8000

	// extractMaxTokens caps the extraction response size.
	extractMaxTokens = 2048

	extractSystemInstruction = "You extract structured job posting data from scraped career pages. Respond with JSON only."

	extractPromptTemplate = `Extract the job posting from the following page content.

Company: %s

Set is_valid_posting to false if the content is a careers landing page, a list of multiple jobs, or anything other than a single job posting.

Page content:
%s`
)

// extractionSchema is the structured-output contract for posting
// extraction.
var extractionSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"is_valid_posting": map[string]interface{}{
			"type":        "boolean",
			"description": "False when the content is a landing page, a job list, or anything other than a single posting",
		},
		"title":       map[string]interface{}{"type": "string"},
		"description": map[string]interface{}{"type": "string"},
		"apply_url":   map[string]interface{}{"type": "string"},
		"location":    map[string]interface{}{"type": "string"},
		"remote_type": map[string]interface{}{
			"type":        "string",
			"description": "Work location policy as stated, e.g. remote, hybrid, on-site",
		},
		"salary_min": map[string]interface{}{"type": "integer"},
		"salary_max": map[string]interface{}{"type": "integer"},
		"currency":   map[string]interface{}{"type": "string"},
		"posted_date": map[string]interface{}{
			"type":        "string",
			"description": "ISO 8601 date the posting was published",
		},
		"required_skills": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"preferred_skills": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"experience_years": map[string]interface{}{"type": "integer"},
		"seniority":        map[string]interface{}{"type": "string"},
		"department":       map[string]interface{}{"type": "string"},
	},
	"required": []string{"is_valid_posting", "title"},
}

// postingExtraction mirrors extractionSchema.
type postingExtraction struct {
	IsValidPosting  bool     `json:"is_valid_posting"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ApplyURL        string   `json:"apply_url"`
	Location        string   `json:"location"`
	RemoteType      string   `json:"remote_type"`
	SalaryMin       int      `json:"salary_min"`
	SalaryMax       int      `json:"salary_max"`
	Currency        string   `json:"currency"`
	PostedDate      string   `json:"posted_date"`
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
	ExperienceYears int      `json:"experience_years"`
	Seniority       string   `json:"seniority"`
	Department      string   `json:"department"`
}

// extractFromHTML turns crawled page content into a posting through LLM
// extraction. Landing pages and job lists are skipped, not errors.
func (s *Service) extractFromHTML(ctx context.Context, state *models.PipelineState, raw *models.RawJob) (*models.NormalizedJob, error) {
	trimmed := strings.TrimSpace(raw.RawHTML)
	if len([]rune(trimmed)) < minHTMLLength {
		s.logger.Debug().
			Str("raw_job_id", raw.ID).
			Str("company", raw.CompanyName).
			Int("length", len(trimmed)).
			Msg("Skipping raw job with too little content")
		return nil, nil
	}

	content := trimmed
	converter := md.NewConverter(raw.SourceURL, true, nil)
	if converted, err := converter.ConvertString(trimmed); err == nil && strings.TrimSpace(converted) != "" {
		content = converted
	} else if err != nil {
		s.logger.Debug().Err(err).Str("raw_job_id", raw.ID).Msg("Markdown conversion failed, using raw content")
	}
	content = truncateRunes(content, maxExtractChars)

	req := &interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: fmt.Sprintf(extractPromptTemplate, raw.CompanyName, content)},
		},
		Temperature:       0.1,
		MaxTokens:         extractMaxTokens,
		SystemInstruction: extractSystemInstruction,
		OutputSchema:      extractionSchema,
	}

	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("posting extraction failed: %w", err)
	}
	if err := s.accountant.Record(state, resp.Usage); err != nil {
		return nil, err
	}

	var extracted postingExtraction
	if err := json.Unmarshal([]byte(resp.Text), &extracted); err != nil {
		return nil, fmt.Errorf("posting extraction returned invalid JSON: %w", err)
	}

	if !extracted.IsValidPosting {
		s.logger.Debug().
			Str("raw_job_id", raw.ID).
			Str("company", raw.CompanyName).
			Msg("Content is not a single job posting")
		return nil, nil
	}
	title := strings.TrimSpace(extracted.Title)
	if title == "" {
		return nil, nil
	}

	// Extracted links are often relative to the scraped page and carry
	// board tracking parameters.
	applyURL := common.NormalizeJobURL(raw.SourceURL, extracted.ApplyURL)
	if applyURL == "" {
		applyURL = raw.SourceURL
	}

	job := &models.NormalizedJob{
		ID:              common.NewJobID(),
		RawJobID:        raw.ID,
		CompanyID:       raw.CompanyID,
		CompanyName:     raw.CompanyName,
		Title:           title,
		Description:     extracted.Description,
		ApplyURL:        applyURL,
		Location:        strings.TrimSpace(extracted.Location),
		RemoteType:      models.CoerceRemoteType(extracted.RemoteType),
		PostedDate:      parseDateValue(extracted.PostedDate),
		SalaryMin:       extracted.SalaryMin,
		SalaryMax:       extracted.SalaryMax,
		Currency:        strings.ToUpper(strings.TrimSpace(extracted.Currency)),
		RequiredSkills:  extracted.RequiredSkills,
		PreferredSkills: extracted.PreferredSkills,
		ExperienceYears: extracted.ExperienceYears,
		Seniority:       strings.TrimSpace(extracted.Seniority),
		Department:      strings.TrimSpace(extracted.Department),
	}
	job.NormalizeSalaryRange()
	job.ComputeFingerprint()
	return job, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
