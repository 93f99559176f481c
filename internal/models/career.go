package models

// DemandLevel is the job-market demand tag of a career path
type DemandLevel string

const (
	DemandLow      DemandLevel = "Low"
	DemandMedium   DemandLevel = "Medium"
	DemandHigh     DemandLevel = "High"
	DemandVeryHigh DemandLevel = "Very High"
)

// IsValid reports whether d is a known demand level
func (d DemandLevel) IsValid() bool {
	switch d {
	case DemandLow, DemandMedium, DemandHigh, DemandVeryHigh:
		return true
	}
	return false
}

// CareerPath is a static catalog entry describing a target role
type CareerPath struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Icon           string      `json:"icon,omitempty"`
	Description    string      `json:"description"`
	RequiredSkills []string    `json:"required_skills"`
	Domains        []string    `json:"domains"` // interest tags, e.g. "Technology"
	DemandLevel    DemandLevel `json:"demand_level"`
	AvgSalary      string      `json:"avg_salary"`
	TimeToRole     string      `json:"time_to_role"`
}

// MatchScore is the derived fit of a profile against one career path.
// It is recomputed per query and never persisted.
type MatchScore struct {
	CareerPath    CareerPath `json:"career_path"`
	Score         int        `json:"score"` // 0-100
	MatchedSkills []string   `json:"matched_skills"`
	MissingSkills []string   `json:"missing_skills"`
}
