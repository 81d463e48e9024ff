package models

// ATSType identifies the applicant-tracking system serving a career page.
type ATSType string

// ATSType constants define the recognized ATS families
const (
	ATSGreenhouse ATSType = "greenhouse"
	ATSLever      ATSType = "lever"
	ATSWorkday    ATSType = "workday"
	ATSAshby      ATSType = "ashby"
	ATSICIMS      ATSType = "icims"
	ATSTaleo      ATSType = "taleo"
	ATSCustom     ATSType = "custom"
	ATSUnknown    ATSType = "unknown"
)

// String returns the string representation of the ATSType
func (a ATSType) String() string {
	return string(a)
}

// HasAPI reports whether the ATS family exposes a public job-board API.
func (a ATSType) HasAPI() bool {
	switch a {
	case ATSGreenhouse, ATSLever, ATSWorkday, ATSAshby:
		return true
	}
	return false
}

// ScrapeStrategy selects how a career page is fetched.
type ScrapeStrategy string

// ScrapeStrategy constants
const (
	StrategyAPI     ScrapeStrategy = "api"     // structured fetch through the ATS API
	StrategyCrawler ScrapeStrategy = "crawler" // generic page scrape
)

// String returns the string representation of the ScrapeStrategy
func (s ScrapeStrategy) String() string {
	return string(s)
}

// CompanyTier is a coarse company-size classification.
type CompanyTier string

// CompanyTier constants
const (
	TierOne     CompanyTier = "tier_1"
	TierTwo     CompanyTier = "tier_2"
	TierThree   CompanyTier = "tier_3"
	TierStartup CompanyTier = "startup"
	TierUnknown CompanyTier = "unknown"
)

// IsValid checks if the CompanyTier is a known, valid value
func (t CompanyTier) IsValid() bool {
	switch t {
	case TierOne, TierTwo, TierThree, TierStartup, TierUnknown:
		return true
	}
	return false
}

// CoerceTier maps freeform tier text onto the closed set, defaulting to
// "unknown".
func CoerceTier(raw string) CompanyTier {
	t := CompanyTier(raw)
	if t.IsValid() {
		return t
	}
	return TierUnknown
}

// CareerPage is the validated jobs page embedded in a Company.
// StrategyAPI implies ATSType is one of the four supported API families.
type CareerPage struct {
	URL            string         `json:"url"`
	ATSType        ATSType        `json:"ats_type"`
	ScrapeStrategy ScrapeStrategy `json:"scrape_strategy"`
}

// Company is one discovery target. The company set is rebuilt on every
// adaptive iteration.
type Company struct {
	ID          string      `json:"id"` // comp_{uuid}
	Name        string      `json:"name"`
	Domain      string      `json:"domain,omitempty"`
	CareerPage  *CareerPage `json:"career_page,omitempty"`
	Industry    string      `json:"industry,omitempty"`
	Size        string      `json:"size,omitempty"`
	Tier        CompanyTier `json:"tier"`
	Description string      `json:"description,omitempty"`
}
