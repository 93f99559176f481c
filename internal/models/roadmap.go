package models

import "time"

// Priority ranks milestone importance
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid reports whether p is a known priority
func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// CompletionState is the only mutable part of a milestone
type CompletionState string

const (
	StatePending   CompletionState = "pending"
	StateCompleted CompletionState = "completed"
)

// Toggled returns the opposite state
func (s CompletionState) Toggled() CompletionState {
	if s == StateCompleted {
		return StatePending
	}
	return StateCompleted
}

// IsValid reports whether s is a known state
func (s CompletionState) IsValid() bool {
	return s == StatePending || s == StateCompleted
}

// Milestone is a single timeline entry of a roadmap
type Milestone struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Duration    string          `json:"duration"` // display label, e.g. "Month 1-3"
	Objectives  []string        `json:"objectives"`
	Courses     []string        `json:"courses"`
	Projects    []string        `json:"projects"`
	Skills      []string        `json:"skills"`
	Exams       []string        `json:"exams,omitempty"`
	Priority    Priority        `json:"priority"`
	State       CompletionState `json:"state"`
}

// IsCompleted reports whether the milestone is done
func (m Milestone) IsCompleted() bool {
	return m.State == StateCompleted
}

// Clone returns a copy that shares no slices with m
func (m Milestone) Clone() Milestone {
	m.Objectives = cloneStrings(m.Objectives)
	m.Courses = cloneStrings(m.Courses)
	m.Projects = cloneStrings(m.Projects)
	m.Skills = cloneStrings(m.Skills)
	m.Exams = cloneStrings(m.Exams)
	return m
}

// Applicability is the branch rule deciding whether a template fits a profile
type Applicability struct {
	Mode         Mode     `json:"mode"`
	Levels       []string `json:"levels,omitempty"`        // exact match; empty means any level
	AnySkills    []string `json:"any_skills,omitempty"`    // matches if the profile has one of these
	AnyInterests []string `json:"any_interests,omitempty"` // or one of these
}

// RoadmapTemplate is a catalog entry that roadmaps are instantiated from
type RoadmapTemplate struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Icon          string        `json:"icon,omitempty"`
	TotalDuration string        `json:"total_duration,omitempty"`
	Priority      int           `json:"priority"` // lower is evaluated first
	Applies       Applicability `json:"applies"`
	Milestones    []Milestone   `json:"milestones"`
}

// Roadmap is an ordered milestone timeline for one profile.
// Updates produce new values; a Roadmap held by a reader is a stable snapshot.
type Roadmap struct {
	ID         string      `json:"id"`
	TemplateID string      `json:"template_id"`
	ProfileID  string      `json:"profile_id,omitempty"`
	Title      string      `json:"title"`
	Milestones []Milestone `json:"milestones"`
	Version    int         `json:"version"`
	CreatedAt  time.Time   `json:"created_at,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at,omitempty"`
}

// Clone returns a deep copy of r
func (r Roadmap) Clone() Roadmap {
	if r.Milestones == nil {
		return r
	}
	milestones := make([]Milestone, len(r.Milestones))
	for i, m := range r.Milestones {
		milestones[i] = m.Clone()
	}
	r.Milestones = milestones
	return r
}

// IndexOf returns the position of the milestone with the given id, or -1
func (r Roadmap) IndexOf(milestoneID string) int {
	for i, m := range r.Milestones {
		if m.ID == milestoneID {
			return i
		}
	}
	return -1
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
