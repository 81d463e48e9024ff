package models

import "strings"

// RemotePreference represents how the candidate wants to work.
type RemotePreference string

// RemotePreference constants define the closed set of work arrangements
const (
	RemotePrefOnsite RemotePreference = "onsite"
	RemotePrefHybrid RemotePreference = "hybrid"
	RemotePrefRemote RemotePreference = "remote"
	RemotePrefAny    RemotePreference = "any"
)

// IsValid checks if the RemotePreference is a known, valid value
func (r RemotePreference) IsValid() bool {
	switch r {
	case RemotePrefOnsite, RemotePrefHybrid, RemotePrefRemote, RemotePrefAny:
		return true
	}
	return false
}

// String returns the string representation of the RemotePreference
func (r RemotePreference) String() string {
	return string(r)
}

// CoerceRemotePreference maps freeform text onto the closed set, defaulting
// to "any" for unrecognized values.
func CoerceRemotePreference(raw string) RemotePreference {
	v := RemotePreference(strings.ToLower(strings.TrimSpace(raw)))
	if v.IsValid() {
		return v
	}
	switch v {
	case "on-site", "office", "in-office", "in office":
		return RemotePrefOnsite
	case "fully remote", "remote-first", "wfh", "work from home":
		return RemotePrefRemote
	case "flexible", "mixed":
		return RemotePrefHybrid
	}
	return RemotePrefAny
}

// SearchPreferences holds the structured job-search criteria parsed from the
// candidate's freeform preferences text.
type SearchPreferences struct {
	Locations          []string         `json:"locations,omitempty"`
	RemotePreference   RemotePreference `json:"remote_preference"`
	TargetTitles       []string         `json:"target_titles,omitempty"`
	TargetSeniority    string           `json:"target_seniority,omitempty"`
	ExcludedTitles     []string         `json:"excluded_titles,omitempty"`
	OrgTypes           []string         `json:"org_types,omitempty"`     // e.g. startup, enterprise, non-profit
	CompanySizes       []string         `json:"company_sizes,omitempty"` // e.g. "1-50", "51-200"
	Industries         []string         `json:"industries,omitempty"`
	ExcludedCompanies  []string         `json:"excluded_companies,omitempty"`
	PreferredCompanies []string         `json:"preferred_companies,omitempty"`
	SalaryMin          int              `json:"salary_min,omitempty"`
	SalaryMax          int              `json:"salary_max,omitempty"`
	Currency           string           `json:"currency,omitempty"`
	RawText            string           `json:"raw_text"`
}

// NormalizeSalaryRange swaps min/max when both are set out of order so the
// min <= max invariant always holds.
func (p *SearchPreferences) NormalizeSalaryRange() {
	if p.SalaryMin > 0 && p.SalaryMax > 0 && p.SalaryMin > p.SalaryMax {
		p.SalaryMin, p.SalaryMax = p.SalaryMax, p.SalaryMin
	}
}
