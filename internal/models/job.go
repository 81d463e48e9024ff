package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// fingerprintSeedLimit bounds how much of the description participates in the
// content fingerprint.
const fingerprintSeedLimit = 500

// RemoteType is the coarse work-location classification of a posting.
type RemoteType string

// RemoteType constants
const (
	RemoteTypeOnsite  RemoteType = "onsite"
	RemoteTypeHybrid  RemoteType = "hybrid"
	RemoteTypeRemote  RemoteType = "remote"
	RemoteTypeUnknown RemoteType = "unknown"
)

// IsValid checks if the RemoteType is a known, valid value
func (r RemoteType) IsValid() bool {
	switch r {
	case RemoteTypeOnsite, RemoteTypeHybrid, RemoteTypeRemote, RemoteTypeUnknown:
		return true
	}
	return false
}

// String returns the string representation of the RemoteType
func (r RemoteType) String() string {
	return string(r)
}

// RawJob is one scraped artifact. Exactly one of RawJSON or RawHTML is set:
// API strategies populate RawJSON, the crawler populates RawHTML.
type RawJob struct {
	ID               string                 `json:"id"` // rawjob_{uuid}
	CompanyID        string                 `json:"company_id"`
	CompanyName      string                 `json:"company_name"`
	RawJSON          map[string]interface{} `json:"raw_json,omitempty"`
	RawHTML          string                 `json:"raw_html,omitempty"`
	SourceURL        string                 `json:"source_url"`
	ScrapeStrategy   ScrapeStrategy         `json:"scrape_strategy"`
	SourceConfidence float64                `json:"source_confidence"` // in [0,1]
	ScrapedAt        time.Time              `json:"scraped_at"`
}

// NormalizedJob is the canonical posting produced from a RawJob.
type NormalizedJob struct {
	ID              string     `json:"id"` // job_{uuid}
	RawJobID        string     `json:"raw_job_id"`
	CompanyID       string     `json:"company_id"`
	CompanyName     string     `json:"company_name"`
	Title           string     `json:"title"` // required, non-empty
	Description     string     `json:"description,omitempty"`
	ApplyURL        string     `json:"apply_url,omitempty"`
	Location        string     `json:"location,omitempty"`
	RemoteType      RemoteType `json:"remote_type"`
	PostedDate      *time.Time `json:"posted_date,omitempty"`
	SalaryMin       int        `json:"salary_min,omitempty"`
	SalaryMax       int        `json:"salary_max,omitempty"`
	Currency        string     `json:"currency,omitempty"`
	RequiredSkills  []string   `json:"required_skills,omitempty"`
	PreferredSkills []string   `json:"preferred_skills,omitempty"`
	ExperienceYears int        `json:"experience_years,omitempty"`
	Seniority       string     `json:"seniority,omitempty"`
	Department      string     `json:"department,omitempty"`
	Fingerprint     string     `json:"fingerprint"`
}

// JobFingerprint computes the content fingerprint used for deduplication:
// the SHA-256 hex digest of "company|title|seed" where seed is truncated to
// its first 500 characters. Callers pass the description as seed, or the
// apply URL when the description is empty.
func JobFingerprint(companyName, title, seed string) string {
	runes := []rune(seed)
	if len(runes) > fingerprintSeedLimit {
		seed = string(runes[:fingerprintSeedLimit])
	}
	sum := sha256.Sum256([]byte(companyName + "|" + title + "|" + seed))
	return hex.EncodeToString(sum[:])
}

// ComputeFingerprint fills the job's Fingerprint from its own fields,
// seeding with the description when present and the apply URL otherwise.
func (j *NormalizedJob) ComputeFingerprint() string {
	seed := j.Description
	if strings.TrimSpace(seed) == "" {
		seed = j.ApplyURL
	}
	j.Fingerprint = JobFingerprint(j.CompanyName, j.Title, seed)
	return j.Fingerprint
}

// NormalizeSalaryRange swaps min/max when both are set out of order.
func (j *NormalizedJob) NormalizeSalaryRange() {
	if j.SalaryMin > 0 && j.SalaryMax > 0 && j.SalaryMin > j.SalaryMax {
		j.SalaryMin, j.SalaryMax = j.SalaryMax, j.SalaryMin
	}
}

// remoteTypeAliases collapses the freeform remote labels seen in postings
// onto the closed set.
var remoteTypeAliases = map[string]RemoteType{
	"onsite":         RemoteTypeOnsite,
	"on-site":        RemoteTypeOnsite,
	"on site":        RemoteTypeOnsite,
	"in-office":      RemoteTypeOnsite,
	"in office":      RemoteTypeOnsite,
	"office":         RemoteTypeOnsite,
	"hybrid":         RemoteTypeHybrid,
	"flexible":       RemoteTypeHybrid,
	"remote":         RemoteTypeRemote,
	"fully remote":   RemoteTypeRemote,
	"remote-first":   RemoteTypeRemote,
	"100% remote":    RemoteTypeRemote,
	"wfh":            RemoteTypeRemote,
	"work from home": RemoteTypeRemote,
}

// CoerceRemoteType maps a freeform remote label onto the closed set,
// defaulting to "unknown".
func CoerceRemoteType(raw string) RemoteType {
	if rt, ok := remoteTypeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return rt
	}
	return RemoteTypeUnknown
}
