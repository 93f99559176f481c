// Package catalog loads the career, roadmap, course and achievement catalog
// and hands it out as immutable, versioned snapshots.
package catalog

import "github.com/terra-clan/pathway-engine/internal/models"

// Provider supplies the current catalog snapshot
type Provider interface {
	Snapshot() *Snapshot
}

// Snapshot is a read-only catalog version. Callers must not modify its slices.
type Snapshot struct {
	Version      string                   `json:"version"`
	CareerPaths  []models.CareerPath      `json:"career_paths"`
	Templates    []models.RoadmapTemplate `json:"roadmap_templates"`
	Courses      []models.Course          `json:"courses"`
	Achievements []models.Achievement     `json:"achievements"`
}

// Template looks up a roadmap template by id
func (s *Snapshot) Template(id string) (models.RoadmapTemplate, bool) {
	for _, t := range s.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return models.RoadmapTemplate{}, false
}

// Course looks up a course by id
func (s *Snapshot) Course(id string) (models.Course, bool) {
	for _, c := range s.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

// CareerPath looks up a career path by id
func (s *Snapshot) CareerPath(id string) (models.CareerPath, bool) {
	for _, p := range s.CareerPaths {
		if p.ID == id {
			return p, true
		}
	}
	return models.CareerPath{}, false
}

type staticProvider struct {
	snapshot *Snapshot
}

// Static wraps a fixed snapshot, typically a synthetic catalog in tests
func Static(s *Snapshot) Provider {
	if s.Version == "" {
		s.Version = "static"
	}
	return staticProvider{snapshot: s}
}

func (p staticProvider) Snapshot() *Snapshot {
	return p.snapshot
}
