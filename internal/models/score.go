package models

import "strings"

// Recommendation is the scorer's verdict on one job.
type Recommendation string

// Recommendation constants
const (
	RecommendationStrong   Recommendation = "strong_match"
	RecommendationGood     Recommendation = "good_match"
	RecommendationStretch  Recommendation = "stretch"
	RecommendationMismatch Recommendation = "mismatch"
)

// IsValid checks if the Recommendation is a known, valid value
func (r Recommendation) IsValid() bool {
	switch r {
	case RecommendationStrong, RecommendationGood, RecommendationStretch, RecommendationMismatch:
		return true
	}
	return false
}

// String returns the string representation of the Recommendation
func (r Recommendation) String() string {
	return string(r)
}

// CoerceRecommendation maps model output onto the closed set, defaulting
// unrecognized values to "stretch".
func CoerceRecommendation(raw string) Recommendation {
	v := Recommendation(strings.ToLower(strings.TrimSpace(raw)))
	if v.IsValid() {
		return v
	}
	return RecommendationStretch
}

// FitReport is the scorer's assessment of one job against the candidate.
type FitReport struct {
	Score          int            `json:"score"` // in [0,100]
	SkillOverlap   []string       `json:"skill_overlap,omitempty"`
	SkillGaps      []string       `json:"skill_gaps,omitempty"`
	SeniorityMatch bool           `json:"seniority_match"`
	LocationMatch  bool           `json:"location_match"`
	OrgTypeMatch   bool           `json:"org_type_match"`
	Summary        string         `json:"summary,omitempty"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"` // in [0,1]
}

// ScoredJob pairs a normalized job with its fit report and final rank.
// Rank is 1-based; ascending rank is descending score.
type ScoredJob struct {
	Job  NormalizedJob `json:"job"`
	Fit  FitReport     `json:"fit"`
	Rank int           `json:"rank"`
}
