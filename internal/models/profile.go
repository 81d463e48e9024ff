package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Seniority represents the inferred career level of a candidate or job.
type Seniority string

// Seniority constants define the closed set of recognized career levels
const (
	SeniorityIntern    Seniority = "intern"
	SeniorityJunior    Seniority = "junior"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityStaff     Seniority = "staff"
	SeniorityPrincipal Seniority = "principal"
	SeniorityDirector  Seniority = "director"
	SeniorityVP        Seniority = "vp"
	SeniorityCLevel    Seniority = "c-level"
)

// IsValid checks if the Seniority is a known, valid level
func (s Seniority) IsValid() bool {
	switch s {
	case SeniorityIntern, SeniorityJunior, SeniorityMid, SenioritySenior,
		SeniorityStaff, SeniorityPrincipal, SeniorityDirector, SeniorityVP, SeniorityCLevel:
		return true
	}
	return false
}

// String returns the string representation of the Seniority
func (s Seniority) String() string {
	return string(s)
}

// CoerceSeniority maps freeform seniority text onto the closed set.
// Unrecognized values collapse to "mid".
func CoerceSeniority(raw string) Seniority {
	v := Seniority(strings.ToLower(strings.TrimSpace(raw)))
	if v.IsValid() {
		return v
	}
	switch v {
	case "entry", "entry-level", "graduate", "grad":
		return SeniorityJunior
	case "lead", "tech lead", "team lead":
		return SenioritySenior
	case "vice president":
		return SeniorityVP
	case "executive", "cto", "ceo", "cio", "chief":
		return SeniorityCLevel
	}
	return SeniorityMid
}

// Skill is one entry in a candidate's skill inventory.
type Skill struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"` // e.g. "expert", "intermediate"
	Years       int    `json:"years,omitempty"`
}

// CandidateProfile is the parsed resume. Created once by the resume intake
// and immutable for the rest of the run.
type CandidateProfile struct {
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	YearsExperience int       `json:"years_experience"` // clamped >= 0
	Skills          []Skill   `json:"skills"`
	CurrentTitle    string    `json:"current_title"`
	Seniority       Seniority `json:"seniority"`
	Industries      []string  `json:"industries,omitempty"`
	Technologies    []string  `json:"technologies,omitempty"`
	RawText         string    `json:"raw_text"`
	Fingerprint     string    `json:"fingerprint"` // SHA-256 of RawText
}

// SkillNames returns the flat list of skill names for prompt building.
func (p *CandidateProfile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}

// TextFingerprint returns the SHA-256 hex digest of the given text.
func TextFingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
