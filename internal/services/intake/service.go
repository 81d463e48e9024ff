// -----------------------------------------------------------------------
// Last Modified: Tuesday, 12th August 2026 3:05:41 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/costs"
	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

// maxResumeChars bounds the resume text sent to the model. Anything past
// this is almost certainly appendix noise.
const maxResumeChars = 20000

const resumeSystemInstruction = `You parse resumes into structured candidate profiles. Extract only what the resume states or clearly implies. Use the candidate's most recent position for the current title. Infer seniority from titles and career length. Leave fields you cannot determine empty.`

const resumePromptTemplate = `Parse this resume into the structured schema.

Resume text:
%s`

// Service turns the raw run inputs into structured models. Resume parsing
// is fatal on failure; nothing downstream can work without a profile.
type Service struct {
	llm        interfaces.CompletionService
	accountant *costs.Accountant
	pdf        interfaces.PDFExtractor
	config     *common.Config
	logger     arbor.ILogger
}

var _ interfaces.IntakeService = (*Service)(nil)

func NewService(llm interfaces.CompletionService, accountant *costs.Accountant, pdf interfaces.PDFExtractor, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		llm:        llm,
		accountant: accountant,
		pdf:        pdf,
		config:     config,
		logger:     logger,
	}
}

// ParseResume reads the configured resume file, extracts its text and parses
// it into state.Profile.
func (s *Service) ParseResume(ctx context.Context, state *models.PipelineState) error {
	path := state.Config.ResumePath
	if path == "" {
		return fmt.Errorf("no resume path configured for run %s", state.RunID)
	}

	text, err := s.readResumeText(ctx, path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("resume %s contains no extractable text", path)
	}

	profile, err := s.parseProfile(ctx, state, text)
	if err != nil {
		return err
	}

	state.Profile = profile

	s.logger.Info().
		Str("run_id", state.RunID).
		Str("name", profile.Name).
		Str("seniority", string(profile.Seniority)).
		Int("skills", len(profile.Skills)).
		Int("years_experience", profile.YearsExperience).
		Msg("Resume parsed")

	return nil
}

// readResumeText extracts text by file type. PDF goes through the
// extractor; txt and md are read directly.
func (s *Service) readResumeText(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := s.pdf.ExtractTextFromFile(ctx, path)
		if err != nil {
			return "", fmt.Errorf("resume PDF extraction failed: %w", err)
		}
		return text, nil
	case ".txt", ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read resume file: %w", err)
		}
		return string(content), nil
	default:
		return "", fmt.Errorf("unsupported resume format %q (expected .pdf, .txt or .md)", filepath.Ext(path))
	}
}

func (s *Service) parseProfile(ctx context.Context, state *models.PipelineState, text string) (*models.CandidateProfile, error) {
	req := &interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: fmt.Sprintf(resumePromptTemplate, truncateRunes(text, maxResumeChars))},
		},
		Temperature:       0.1,
		MaxTokens:         2048,
		SystemInstruction: resumeSystemInstruction,
		OutputSchema:      profileSchema,
	}

	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("resume parsing failed: %w", err)
	}
	if err := s.accountant.Record(state, resp.Usage); err != nil {
		return nil, err
	}

	var parsed profileExtraction
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return nil, fmt.Errorf("resume parsing returned invalid JSON: %w", err)
	}

	years := parsed.YearsExperience
	if years < 0 {
		years = 0
	}

	skills := make([]models.Skill, 0, len(parsed.Skills))
	for _, sk := range parsed.Skills {
		if strings.TrimSpace(sk.Name) == "" {
			continue
		}
		skillYears := sk.Years
		if skillYears < 0 {
			skillYears = 0
		}
		skills = append(skills, models.Skill{
			Name:        strings.TrimSpace(sk.Name),
			Proficiency: strings.TrimSpace(sk.Proficiency),
			Years:       skillYears,
		})
	}

	return &models.CandidateProfile{
		Name:            strings.TrimSpace(parsed.Name),
		Email:           strings.TrimSpace(parsed.Email),
		YearsExperience: years,
		Skills:          skills,
		CurrentTitle:    strings.TrimSpace(parsed.CurrentTitle),
		Seniority:       models.CoerceSeniority(parsed.Seniority),
		Industries:      parsed.Industries,
		Technologies:    parsed.Technologies,
		RawText:         text,
		Fingerprint:     models.TextFingerprint(text),
	}, nil
}

type profileExtraction struct {
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	YearsExperience int               `json:"years_experience"`
	Skills          []skillExtraction `json:"skills"`
	CurrentTitle    string            `json:"current_title"`
	Seniority       string            `json:"seniority"`
	Industries      []string          `json:"industries"`
	Technologies    []string          `json:"technologies"`
}

type skillExtraction struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
	Years       int    `json:"years"`
}

var profileSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":  map[string]interface{}{"type": "string"},
		"email": map[string]interface{}{"type": "string"},
		"years_experience": map[string]interface{}{
			"type":        "integer",
			"description": "Total years of professional experience",
		},
		"skills": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string"},
					"proficiency": map[string]interface{}{
						"type":        "string",
						"description": "e.g. expert, intermediate, basic; empty if unstated",
					},
					"years": map[string]interface{}{"type": "integer"},
				},
				"required": []string{"name"},
			},
		},
		"current_title": map[string]interface{}{"type": "string"},
		"seniority": map[string]interface{}{
			"type": "string",
			"enum": []string{"intern", "junior", "mid", "senior", "staff", "principal", "director", "vp", "c-level"},
		},
		"industries": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"technologies": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
	"required": []string{"name", "seniority"},
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
