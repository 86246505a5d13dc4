package models

import "time"

// CoverageReport summarizes how complete the extracted country profiles are
type CoverageReport struct {
	GeneratedAt     time.Time         `json:"generated_at"`
	Countries       []CountryCoverage `json:"countries"`
	Summary         Summary           `json:"summary"`
	KeyFindings     []Finding         `json:"key_findings"`
	Recommendations []Recommendation  `json:"recommendations"`
}

// CountryCoverage is the coverage of a single country profile
type CountryCoverage struct {
	CountryCode     string  `json:"country_code"`
	BaseDomain      string  `json:"base_domain,omitempty"`
	Pages           int     `json:"pages"`
	Locales         int     `json:"locales"`
	HasHomepage     bool    `json:"has_homepage"`
	HasContactPage  bool    `json:"has_contact_page"`
	HasTelephone    bool    `json:"has_telephone"`
	HasEmail        bool    `json:"has_email"`
	HasAddress      bool    `json:"has_address"`
	SocialPlatforms int     `json:"social_platforms"`
	Score           float64 `json:"score"`
}

// Summary provides the high-level outcome of a run
type Summary struct {
	Countries     int      `json:"countries"`
	Pages         int      `json:"pages"`
	OverallScore  float64  `json:"overall_score"`
	OverallGrade  string   `json:"overall_grade"`
	Complete      []string `json:"complete,omitempty"`
	Incomplete    []string `json:"incomplete,omitempty"`
	TopPriorities []string `json:"top_priorities,omitempty"`
}

// Finding represents a gap or observation in the extracted data
type Finding struct {
	Category    string `json:"category"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Details     string `json:"details,omitempty"`
}

// Recommendation represents an actionable follow-up for a finding
type Recommendation struct {
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Action      string `json:"action"`
	Description string `json:"description"`
}
