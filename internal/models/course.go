package models

import "time"

// Level is the difficulty of a course
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// IsValid reports whether l is a known level
func (l Level) IsValid() bool {
	return l == LevelBeginner || l == LevelIntermediate || l == LevelAdvanced
}

// Category groups courses by skill family
type Category string

const (
	CategoryTechnical  Category = "Technical"
	CategorySoftSkills Category = "Soft Skills"
)

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	return c == CategoryTechnical || c == CategorySoftSkills
}

// Urgency tags how soon a course should be taken
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// Urgencies lists urgency buckets in display order
var Urgencies = []Urgency{UrgencyHigh, UrgencyMedium, UrgencyLow}

// IsValid reports whether u is a known urgency
func (u Urgency) IsValid() bool {
	return u == UrgencyHigh || u == UrgencyMedium || u == UrgencyLow
}

// Label returns the display form, e.g. "High Priority"
func (u Urgency) Label() string {
	return string(u) + " Priority"
}

// Course is a catalog entry plus the user's enrollment state
type Course struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Provider      string   `json:"provider"`
	Description   string   `json:"description,omitempty"`
	Duration      string   `json:"duration"`
	Rating        float64  `json:"rating"` // 0.0-5.0
	StudentsCount string   `json:"students_count"`
	Price         string   `json:"price"`
	Level         Level    `json:"level"`
	Category      Category `json:"category"`
	SkillsGained  []string `json:"skills_gained"`
	Urgency       Urgency  `json:"urgency"`
	Progress      int      `json:"progress"` // 0-100
	Enrolled      bool     `json:"enrolled"`
}

// IsCompleted reports whether an enrolled course reached 100%
func (c Course) IsCompleted() bool {
	return c.Enrolled && c.Progress == 100
}

// Enrollment is the persisted per-user state of one course
type Enrollment struct {
	ProfileID string    `json:"profile_id"`
	CourseID  string    `json:"course_id"`
	Progress  int       `json:"progress"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// LearningStats aggregates enrollment progress over a course list
type LearningStats struct {
	OverallProgress       int `json:"overall_progress"`
	EnrolledCount         int `json:"enrolled_count"`
	CompletedCount        int `json:"completed_count"`
	SkillsGained          int `json:"skills_gained"`
	TechnicalSkillsGained int `json:"technical_skills_gained"`
}

// Metric names a LearningStats field an achievement can test
type Metric string

const (
	MetricEnrolledCourses       Metric = "enrolled_courses"
	MetricCompletedCourses      Metric = "completed_courses"
	MetricOverallProgress       Metric = "overall_progress"
	MetricSkillsGained          Metric = "skills_gained"
	MetricTechnicalSkillsGained Metric = "technical_skills_gained"
)

// Value reads the metric from stats; ok is false for unknown metrics
func (m Metric) Value(stats LearningStats) (int, bool) {
	switch m {
	case MetricEnrolledCourses:
		return stats.EnrolledCount, true
	case MetricCompletedCourses:
		return stats.CompletedCount, true
	case MetricOverallProgress:
		return stats.OverallProgress, true
	case MetricSkillsGained:
		return stats.SkillsGained, true
	case MetricTechnicalSkillsGained:
		return stats.TechnicalSkillsGained, true
	}
	return 0, false
}

// UnlockCondition is satisfied when Metric >= AtLeast
type UnlockCondition struct {
	Metric  Metric `json:"metric"`
	AtLeast int    `json:"at_least"`
}

// Achievement is a badge whose Unlocked flag is derived from stats
type Achievement struct {
	Name        string          `json:"name"`
	Icon        string          `json:"icon,omitempty"`
	Description string          `json:"description"`
	Unlock      UnlockCondition `json:"unlock"`
	Unlocked    bool            `json:"unlocked"`
}
