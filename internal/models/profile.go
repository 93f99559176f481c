package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode selects which onboarding track a profile belongs to
type Mode string

const (
	ModeEducation Mode = "education"
	ModeCareer    Mode = "career"
)

// IsValid reports whether m is a known mode
func (m Mode) IsValid() bool {
	return m == ModeEducation || m == ModeCareer
}

// EducationLevels is the fixed level vocabulary for education mode
var EducationLevels = []string{
	"After 10th Grade",
	"After 12th Grade",
	"During Undergraduate",
	"After Undergraduate",
	"During Postgraduate",
	"After Postgraduate",
}

// CareerLevels is the fixed level vocabulary for career mode
var CareerLevels = []string{
	"Student (No Experience)",
	"Fresh Graduate",
	"0-2 Years Experience",
	"2-5 Years Experience",
	"5+ Years Experience",
}

// Levels returns the level vocabulary for the mode (nil for unknown modes)
func (m Mode) Levels() []string {
	switch m {
	case ModeEducation:
		return EducationLevels
	case ModeCareer:
		return CareerLevels
	default:
		return nil
	}
}

// HasLevel reports whether level belongs to the mode's vocabulary
func (m Mode) HasLevel(level string) bool {
	for _, l := range m.Levels() {
		if l == level {
			return true
		}
	}
	return false
}

// Profile is the onboarding result the engine evaluates.
// It is immutable once created; skills and interests are de-duplicated sets
// whose order only matters for display.
type Profile struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name"`
	Mode          Mode      `json:"mode"`
	Level         string    `json:"level"`
	Skills        []string  `json:"skills"`
	Interests     []string  `json:"interests"`
	LearningStyle string    `json:"learning_style,omitempty"`
	Experience    string    `json:"experience,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// ErrInvalidProfile is returned when a profile fails validation
var ErrInvalidProfile = errors.New("invalid profile")

// ProfileError describes which field made a profile invalid
type ProfileError struct {
	Field  string
	Reason string
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("invalid profile: %s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidProfile
func (e *ProfileError) Unwrap() error {
	return ErrInvalidProfile
}

// Requirements lists the optional fields a calling workflow insists on
type Requirements struct {
	Skills    bool
	Interests bool
}

// ValidateProfile checks p before matching or roadmap selection is attempted
func ValidateProfile(p Profile, req Requirements) error {
	if strings.TrimSpace(p.Name) == "" {
		return &ProfileError{Field: "name", Reason: "is required"}
	}
	if !p.Mode.IsValid() {
		return &ProfileError{Field: "mode", Reason: fmt.Sprintf("must be %q or %q", ModeEducation, ModeCareer)}
	}
	if !p.Mode.HasLevel(p.Level) {
		return &ProfileError{Field: "level", Reason: fmt.Sprintf("%q is not a %s level", p.Level, p.Mode)}
	}
	if req.Skills && len(p.Skills) == 0 {
		return &ProfileError{Field: "skills", Reason: "must not be empty"}
	}
	if req.Interests && len(p.Interests) == 0 {
		return &ProfileError{Field: "interests", Reason: "must not be empty"}
	}
	return nil
}

// NormalizeProfile trims free-text fields and de-duplicates skills and
// interests case-insensitively, keeping the first spelling seen.
func NormalizeProfile(p Profile) Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Level = strings.TrimSpace(p.Level)
	p.LearningStyle = strings.TrimSpace(p.LearningStyle)
	p.Experience = strings.TrimSpace(p.Experience)
	p.Skills = UniqueStrings(p.Skills)
	p.Interests = UniqueStrings(p.Interests)
	return p
}

// UniqueStrings drops blanks and case-insensitive duplicates, preserving order
func UniqueStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := Fold(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}

// Fold is the comparison key used for skill, interest and tag matching
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FoldSet builds a lookup set of folded values
func FoldSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := Fold(item)
		if key == "" {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}
