package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

const prefsSystemInstruction = `You parse freeform job-search preferences into a structured form. Only extract constraints the candidate actually states. Company names go into preferred_companies when the candidate wants to work there and excluded_companies when they want to avoid them. Salary figures are annual amounts in the stated currency.`

const prefsPromptTemplate = `The candidate is %s with %s seniority.

Parse their job search preferences below into the structured schema.

Preferences:
%s`

// ParsePreferences parses the freeform preferences text into
// state.Preferences. The profile gives the model context for ambiguous
// statements like "something more senior".
func (s *Service) ParsePreferences(ctx context.Context, state *models.PipelineState) error {
	text := strings.TrimSpace(state.Config.PreferencesText)
	if text == "" {
		return fmt.Errorf("no preferences text configured for run %s", state.RunID)
	}

	candidate := "a candidate"
	seniority := string(models.SeniorityMid)
	if state.Profile != nil {
		if state.Profile.CurrentTitle != "" {
			candidate = fmt.Sprintf("a %s", state.Profile.CurrentTitle)
		}
		seniority = string(state.Profile.Seniority)
	}

	req := &interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: fmt.Sprintf(prefsPromptTemplate, candidate, seniority, text)},
		},
		Temperature:       0.1,
		MaxTokens:         2048,
		SystemInstruction: prefsSystemInstruction,
		OutputSchema:      preferencesSchema,
	}

	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("preferences parsing failed: %w", err)
	}
	if err := s.accountant.Record(state, resp.Usage); err != nil {
		return err
	}

	var parsed preferencesExtraction
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return fmt.Errorf("preferences parsing returned invalid JSON: %w", err)
	}

	prefs := &models.SearchPreferences{
		Locations:          cleanList(parsed.Locations),
		RemotePreference:   models.CoerceRemotePreference(parsed.RemotePreference),
		TargetTitles:       cleanList(parsed.TargetTitles),
		TargetSeniority:    strings.TrimSpace(parsed.TargetSeniority),
		ExcludedTitles:     cleanList(parsed.ExcludedTitles),
		OrgTypes:           cleanList(parsed.OrgTypes),
		CompanySizes:       cleanList(parsed.CompanySizes),
		Industries:         cleanList(parsed.Industries),
		ExcludedCompanies:  cleanList(parsed.ExcludedCompanies),
		PreferredCompanies: cleanList(parsed.PreferredCompanies),
		SalaryMin:          parsed.SalaryMin,
		SalaryMax:          parsed.SalaryMax,
		Currency:           strings.ToUpper(strings.TrimSpace(parsed.Currency)),
		RawText:            text,
	}
	prefs.NormalizeSalaryRange()

	state.Preferences = prefs

	s.logger.Info().
		Str("run_id", state.RunID).
		Str("remote_preference", string(prefs.RemotePreference)).
		Int("target_titles", len(prefs.TargetTitles)).
		Int("preferred_companies", len(prefs.PreferredCompanies)).
		Int("excluded_companies", len(prefs.ExcludedCompanies)).
		Msg("Preferences parsed")

	return nil
}

// cleanList trims entries and drops empties.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

type preferencesExtraction struct {
	Locations          []string `json:"locations"`
	RemotePreference   string   `json:"remote_preference"`
	TargetTitles       []string `json:"target_titles"`
	TargetSeniority    string   `json:"target_seniority"`
	ExcludedTitles     []string `json:"excluded_titles"`
	OrgTypes           []string `json:"org_types"`
	CompanySizes       []string `json:"company_sizes"`
	Industries         []string `json:"industries"`
	ExcludedCompanies  []string `json:"excluded_companies"`
	PreferredCompanies []string `json:"preferred_companies"`
	SalaryMin          int      `json:"salary_min"`
	SalaryMax          int      `json:"salary_max"`
	Currency           string   `json:"currency"`
}

var preferencesSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"locations": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"remote_preference": map[string]interface{}{
			"type": "string",
			"enum": []string{"onsite", "hybrid", "remote", "any"},
		},
		"target_titles": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"target_seniority": map[string]interface{}{"type": "string"},
		"excluded_titles": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"org_types": map[string]interface{}{
			"type":        "array",
			"description": "e.g. startup, scaleup, enterprise, consultancy, government",
			"items":       map[string]interface{}{"type": "string"},
		},
		"company_sizes": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"industries": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"excluded_companies": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"preferred_companies": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"salary_min": map[string]interface{}{
			"type":        "integer",
			"description": "Annual minimum, 0 if unstated",
		},
		"salary_max": map[string]interface{}{
			"type":        "integer",
			"description": "Annual maximum, 0 if unstated",
		},
		"currency": map[string]interface{}{
			"type":        "string",
			"description": "ISO code such as USD, 0-length if unstated",
		},
	},
	"required": []string{"remote_preference"},
}
