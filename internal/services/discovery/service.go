// -----------------------------------------------------------------------
// Last Modified: Tuesday, 12th August 2026 3:05:41 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/costs"
	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
	"github.com/ternarybob/jobhunter/internal/services/ats"
)

const (
	// defaultCandidateCount is how many companies the model is asked for
	// when no company limit is set. Validation drops some, so this runs
	// ahead of the usual target list size.
	defaultCandidateCount = 15
	maxCandidateCount     = 30
)

const discoverySystemInstruction = `You are a hiring-market researcher. Suggest real companies that are actively hiring for roles matching the candidate. Prefer companies with public careers pages. Never suggest staffing agencies, job boards or companies on the excluded list.`

// Service produces the validated company list for one discovery iteration.
// Candidates come from the preferred-companies list when one is set and from
// the model otherwise; every candidate is validated by locating its career
// page before it becomes a scrape target.
type Service struct {
	llm        interfaces.CompletionService
	accountant *costs.Accountant
	finder     interfaces.CareerPageFinder
	registry   *ats.Registry
	config     *common.Config
	logger     arbor.ILogger
}

var _ interfaces.DiscoveryService = (*Service)(nil)

func NewService(llm interfaces.CompletionService, accountant *costs.Accountant, finder interfaces.CareerPageFinder, registry *ats.Registry, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		llm:        llm,
		accountant: accountant,
		finder:     finder,
		registry:   registry,
		config:     config,
		logger:     logger,
	}
}

// DiscoverCompanies fills state.Companies with validated discovery targets.
// Failing to validate an individual candidate is non-fatal; ending up with
// zero validated companies is fatal.
func (s *Service) DiscoverCompanies(ctx context.Context, state *models.PipelineState) error {
	if state.Profile == nil || state.Preferences == nil {
		return &models.FatalAgentError{
			Stage:   models.StageFindCompanies,
			Message: "cannot discover companies without a parsed profile and preferences",
		}
	}

	var candidates []companyCandidate
	if preferred := cleanNames(state.Preferences.PreferredCompanies); len(preferred) > 0 {
		// An explicit preferred list bypasses candidate generation but not
		// validation: a preferred company still needs a reachable careers
		// page before it can be scraped.
		for _, name := range preferred {
			candidates = append(candidates, companyCandidate{Name: name})
		}
		s.logger.Info().
			Str("run_id", state.RunID).
			Int("count", len(candidates)).
			Msg("Using preferred companies, skipping candidate generation")
	} else {
		generated, err := s.generateCandidates(ctx, state)
		if err != nil {
			return err
		}
		candidates = generated
	}

	// Everything proposed this iteration counts as attempted, validated or
	// not, so the next iteration explores fresh ground.
	names := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		names = append(names, cand.Name)
	}
	state.AddAttemptedCompanies(names...)

	limit := state.Config.CompanyLimit
	validated := make([]models.Company, 0, len(candidates))
	for _, cand := range candidates {
		if limit > 0 && len(validated) >= limit {
			break
		}
		company, ok := s.validateCandidate(ctx, state, cand)
		if !ok {
			continue
		}
		validated = append(validated, company)
	}

	if len(validated) == 0 {
		return &models.FatalAgentError{
			Stage:   models.StageFindCompanies,
			Message: fmt.Sprintf("none of %d candidate companies has a reachable career page", len(candidates)),
		}
	}

	state.Companies = validated

	s.logger.Info().
		Str("run_id", state.RunID).
		Int("candidates", len(candidates)).
		Int("validated", len(validated)).
		Int("iteration", state.DiscoveryIteration).
		Msg("Company discovery complete")

	return nil
}

// generateCandidates asks the model for companies matching the candidate,
// excluding everything already attempted or explicitly ruled out.
func (s *Service) generateCandidates(ctx context.Context, state *models.PipelineState) ([]companyCandidate, error) {
	count := defaultCandidateCount
	if limit := state.Config.CompanyLimit; limit > 0 {
		count = min(limit*2, maxCandidateCount)
	}

	excluded := excludedNames(state)

	req := &interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: buildDiscoveryPrompt(state.Profile, state.Preferences, excluded, count)},
		},
		Temperature:       0.7,
		MaxTokens:         4096,
		SystemInstruction: discoverySystemInstruction,
		OutputSchema:      candidatesSchema,
	}

	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("company generation failed: %w", err)
	}
	if err := s.accountant.Record(state, resp.Usage); err != nil {
		return nil, err
	}

	var parsed candidatesResponse
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return nil, fmt.Errorf("company generation returned invalid JSON: %w", err)
	}

	// The model does not always honor the exclusion list, so it is
	// enforced again here alongside intra-batch deduplication.
	excludedSet := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		excludedSet[strings.ToLower(name)] = true
	}

	seen := make(map[string]bool, len(parsed.Companies))
	candidates := make([]companyCandidate, 0, len(parsed.Companies))
	for _, cand := range parsed.Companies {
		cand.Name = strings.TrimSpace(cand.Name)
		if cand.Name == "" {
			continue
		}
		key := strings.ToLower(cand.Name)
		if seen[key] || excludedSet[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, cand)
	}

	s.logger.Debug().
		Int("requested", count).
		Int("returned", len(parsed.Companies)).
		Int("usable", len(candidates)).
		Msg("Generated company candidates")

	return candidates, nil
}

// validateCandidate locates the candidate's career page and classifies its
// scrape strategy. Candidates without a findable page are skipped with a
// non-fatal error record.
func (s *Service) validateCandidate(ctx context.Context, state *models.PipelineState, cand companyCandidate) (models.Company, bool) {
	url, err := s.finder.FindCareerPage(ctx, cand.Name)
	if err != nil {
		state.AddError(models.AgentError{
			Stage:   models.StageFindCompanies,
			Kind:    models.ErrKindSearch,
			Company: cand.Name,
			Message: fmt.Sprintf("career page search failed: %v", err),
		})
		s.logger.Warn().Err(err).Str("company", cand.Name).Msg("Career page search failed, skipping candidate")
		return models.Company{}, false
	}
	if url == "" && cand.Domain != "" {
		// Search came up empty but the model supplied a domain; the
		// conventional careers path is a better bet than dropping the
		// candidate outright.
		if candidates := common.CandidateCareerURLs(cand.Domain); len(candidates) > 0 {
			url = candidates[0]
			s.logger.Debug().
				Str("company", cand.Name).
				Str("url", url).
				Msg("Career page guessed from candidate domain")
		}
	}
	if url == "" {
		state.AddError(models.AgentError{
			Stage:   models.StageFindCompanies,
			Kind:    models.ErrKindValidation,
			Company: cand.Name,
			Message: "no career page found",
		})
		s.logger.Debug().Str("company", cand.Name).Msg("No career page found, skipping candidate")
		return models.Company{}, false
	}

	atsType, strategy := s.registry.Classify(url)

	company := models.Company{
		ID:     common.NewCompanyID(),
		Name:   cand.Name,
		Domain: strings.TrimSpace(cand.Domain),
		CareerPage: &models.CareerPage{
			URL:            url,
			ATSType:        atsType,
			ScrapeStrategy: strategy,
		},
		Industry:    strings.TrimSpace(cand.Industry),
		Size:        strings.TrimSpace(cand.Size),
		Tier:        models.CoerceTier(cand.Tier),
		Description: strings.TrimSpace(cand.Description),
	}

	s.logger.Debug().
		Str("company", company.Name).
		Str("career_page", url).
		Str("ats", string(atsType)).
		Str("strategy", string(strategy)).
		Msg("Validated company candidate")

	return company, true
}

// excludedNames is the union of explicitly excluded companies and everything
// attempted in earlier iterations, deduplicated case-insensitively.
func excludedNames(state *models.PipelineState) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names []string) {
		for _, n := range names {
			n = strings.TrimSpace(n)
			if n == "" || seen[strings.ToLower(n)] {
				continue
			}
			seen[strings.ToLower(n)] = true
			out = append(out, n)
		}
	}
	add(state.Preferences.ExcludedCompanies)
	add(state.AttemptedCompanies)
	sort.Strings(out)
	return out
}

func buildDiscoveryPrompt(profile *models.CandidateProfile, prefs *models.SearchPreferences, excluded []string, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Suggest up to %d companies likely to hire this candidate right now.\n\n", count)

	b.WriteString("## Candidate\n")
	if profile.CurrentTitle != "" {
		fmt.Fprintf(&b, "Current title: %s\n", profile.CurrentTitle)
	}
	fmt.Fprintf(&b, "Seniority: %s\n", profile.Seniority)
	if profile.YearsExperience > 0 {
		fmt.Fprintf(&b, "Years of experience: %d\n", profile.YearsExperience)
	}
	if skills := profile.SkillNames(); len(skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(skills, ", "))
	}
	if len(profile.Industries) > 0 {
		fmt.Fprintf(&b, "Industry background: %s\n", strings.Join(profile.Industries, ", "))
	}

	b.WriteString("\n## Requirements\n")
	if len(prefs.TargetTitles) > 0 {
		fmt.Fprintf(&b, "Target titles: %s\n", strings.Join(prefs.TargetTitles, ", "))
	}
	fmt.Fprintf(&b, "Remote preference: %s\n", prefs.RemotePreference)
	if len(prefs.Locations) > 0 {
		fmt.Fprintf(&b, "Locations: %s\n", strings.Join(prefs.Locations, ", "))
	}
	if len(prefs.OrgTypes) > 0 {
		fmt.Fprintf(&b, "Organization types: %s\n", strings.Join(prefs.OrgTypes, ", "))
	}
	if len(prefs.CompanySizes) > 0 {
		fmt.Fprintf(&b, "Company sizes: %s\n", strings.Join(prefs.CompanySizes, ", "))
	}
	if len(prefs.Industries) > 0 {
		fmt.Fprintf(&b, "Industries: %s\n", strings.Join(prefs.Industries, ", "))
	}

	if len(excluded) > 0 {
		b.WriteString("\n## Excluded\nDo not suggest any of these companies:\n")
		for _, name := range excluded {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	return b.String()
}

// cleanNames trims entries and drops empties.
func cleanNames(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

type companyCandidate struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Industry    string `json:"industry"`
	Size        string `json:"size"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
}

type candidatesResponse struct {
	Companies []companyCandidate `json:"companies"`
}

var candidatesSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"companies": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":   map[string]interface{}{"type": "string"},
					"domain": map[string]interface{}{"type": "string", "description": "Primary website domain, e.g. example.com"},
					"industry": map[string]interface{}{
						"type": "string",
					},
					"size": map[string]interface{}{
						"type":        "string",
						"description": "Approximate headcount range, e.g. 51-200",
					},
					"tier": map[string]interface{}{
						"type": "string",
						"enum": []string{"tier_1", "tier_2", "tier_3", "startup", "unknown"},
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "One sentence on what the company does",
					},
				},
				"required": []string{"name"},
			},
		},
	},
	"required": []string{"companies"},
}
