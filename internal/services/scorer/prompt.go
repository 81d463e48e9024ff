package scorer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/jobhunter/internal/models"
)

// maxDescriptionChars bounds each job description in the scoring prompt so a
// batch of five stays well inside the context window.
const maxDescriptionChars = 1500

// currencySymbols maps ISO currency codes to display symbols for prompt and
// report salary rendering. Codes without an entry are prefixed verbatim.
var currencySymbols = map[string]string{
	"USD": "$",
	"INR": "₹",
	"EUR": "€",
	"GBP": "£",
}

// buildScoringPrompt renders the candidate, their preferences and an indexed
// batch of jobs. The model references jobs by the printed index.
func buildScoringPrompt(profile *models.CandidateProfile, prefs *models.SearchPreferences, batch []models.NormalizedJob) string {
	var b strings.Builder

	b.WriteString("Score each job below for this candidate.\n\n")

	b.WriteString("## Candidate\n")
	if profile.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", profile.Name)
	}
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
	if len(profile.Technologies) > 0 {
		fmt.Fprintf(&b, "Technologies: %s\n", strings.Join(profile.Technologies, ", "))
	}
	if len(profile.Industries) > 0 {
		fmt.Fprintf(&b, "Industry background: %s\n", strings.Join(profile.Industries, ", "))
	}

	b.WriteString("\n## Preferences\n")
	if len(prefs.TargetTitles) > 0 {
		fmt.Fprintf(&b, "Target titles: %s\n", strings.Join(prefs.TargetTitles, ", "))
	}
	if prefs.TargetSeniority != "" {
		fmt.Fprintf(&b, "Target seniority: %s\n", prefs.TargetSeniority)
	}
	fmt.Fprintf(&b, "Remote preference: %s\n", prefs.RemotePreference)
	if len(prefs.Locations) > 0 {
		fmt.Fprintf(&b, "Locations: %s\n", strings.Join(prefs.Locations, ", "))
	}
	if len(prefs.OrgTypes) > 0 {
		fmt.Fprintf(&b, "Preferred organization types: %s\n", strings.Join(prefs.OrgTypes, ", "))
	}
	if len(prefs.Industries) > 0 {
		fmt.Fprintf(&b, "Preferred industries: %s\n", strings.Join(prefs.Industries, ", "))
	}
	if prefs.SalaryMin > 0 || prefs.SalaryMax > 0 {
		fmt.Fprintf(&b, "Salary expectation: %s\n", FormatSalaryRange(prefs.SalaryMin, prefs.SalaryMax, prefs.Currency))
	}
	if len(prefs.ExcludedTitles) > 0 {
		fmt.Fprintf(&b, "Titles to avoid: %s\n", strings.Join(prefs.ExcludedTitles, ", "))
	}

	b.WriteString("\n## Jobs\n")
	for i, job := range batch {
		fmt.Fprintf(&b, "\n### Job %d\n", i)
		fmt.Fprintf(&b, "Company: %s\n", job.CompanyName)
		fmt.Fprintf(&b, "Title: %s\n", job.Title)
		if job.Location != "" {
			fmt.Fprintf(&b, "Location: %s\n", job.Location)
		}
		fmt.Fprintf(&b, "Remote type: %s\n", job.RemoteType)
		if job.Seniority != "" {
			fmt.Fprintf(&b, "Seniority: %s\n", job.Seniority)
		}
		if job.ExperienceYears > 0 {
			fmt.Fprintf(&b, "Experience required: %d years\n", job.ExperienceYears)
		}
		if job.SalaryMin > 0 || job.SalaryMax > 0 {
			fmt.Fprintf(&b, "Salary: %s\n", FormatSalaryRange(job.SalaryMin, job.SalaryMax, job.Currency))
		}
		if len(job.RequiredSkills) > 0 {
			fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(job.RequiredSkills, ", "))
		}
		if len(job.PreferredSkills) > 0 {
			fmt.Fprintf(&b, "Preferred skills: %s\n", strings.Join(job.PreferredSkills, ", "))
		}
		if job.Description != "" {
			fmt.Fprintf(&b, "Description:\n%s\n", truncateRunes(job.Description, maxDescriptionChars))
		}
	}

	fmt.Fprintf(&b, "\nReturn one score entry per job, referencing each job by its index (0 through %d).", len(batch)-1)
	return b.String()
}

// FormatSalaryRange renders a salary range for prompts and reports,
// e.g. "$120,000 - $150,000" or "from ₹2,500,000". Open-ended and absent
// bounds degrade gracefully.
func FormatSalaryRange(minAmount, maxAmount int, currency string) string {
	symbol := currencySymbol(currency)
	switch {
	case minAmount > 0 && maxAmount > 0:
		return fmt.Sprintf("%s%s - %s%s", symbol, formatAmount(minAmount), symbol, formatAmount(maxAmount))
	case minAmount > 0:
		return fmt.Sprintf("from %s%s", symbol, formatAmount(minAmount))
	case maxAmount > 0:
		return fmt.Sprintf("up to %s%s", symbol, formatAmount(maxAmount))
	default:
		return "not stated"
	}
}

func currencySymbol(currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return ""
	}
	if symbol, ok := currencySymbols[code]; ok {
		return symbol
	}
	return code + " "
}

// formatAmount inserts thousands separators: 120000 -> "120,000".
func formatAmount(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
