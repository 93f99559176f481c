// Package advisor is the service boundary of the engine: it loads profiles
// and roadmaps from storage, runs the pure matching, roadmap and learning
// functions against the current catalog snapshot and persists the results.
package advisor

import (
	"context"
	"errors"

	"github.com/terra-clan/pathway-engine/internal/catalog"
	"github.com/terra-clan/pathway-engine/internal/learning"
	"github.com/terra-clan/pathway-engine/internal/models"
	"github.com/terra-clan/pathway-engine/internal/roadmap"
	"github.com/terra-clan/pathway-engine/internal/storage"
)

// Common errors
var (
	ErrProfileNotFound       = errors.New("profile not found")
	ErrRoadmapNotFound       = errors.New("roadmap not found")
	ErrTemplateNotFound      = errors.New("roadmap template not found")
	ErrTemplateNotApplicable = errors.New("roadmap template does not apply to profile")

	ErrInvalidProfile    = models.ErrInvalidProfile
	ErrMilestoneNotFound = roadmap.ErrMilestoneNotFound
	ErrCourseNotFound    = learning.ErrCourseNotFound
	ErrInvalidProgress   = learning.ErrInvalidProgress
	ErrVersionConflict   = storage.ErrVersionConflict
)

// Service defines the operations exposed to the API layer
type Service interface {
	// Profiles
	CreateProfile(ctx context.Context, p models.Profile, req models.Requirements) (*models.Profile, error)
	GetProfile(ctx context.Context, id string) (*models.Profile, error)

	// Career matching
	ComputeMatches(ctx context.Context, profileID string, limit int) (*MatchResult, error)

	// Roadmaps
	SelectRoadmaps(ctx context.Context, profileID string) (*Selection, error)
	AdoptRoadmap(ctx context.Context, profileID, templateID string) (*RoadmapView, error)
	ListRoadmaps(ctx context.Context, profileID string) ([]*models.Roadmap, error)
	GetRoadmap(ctx context.Context, id string) (*RoadmapView, error)
	ToggleMilestone(ctx context.Context, roadmapID, milestoneID string, expectedVersion int) (*RoadmapView, error)
	SummarizeRoadmap(ctx context.Context, id string) (*roadmap.Summary, error)

	// Learning
	ListCourses(ctx context.Context, profileID string, filter CourseFilter) (*CourseListing, error)
	Enroll(ctx context.Context, profileID, courseID string) (*models.Course, error)
	UpdateCourseProgress(ctx context.Context, profileID, courseID string, progress int) (*models.Course, error)
	LearningStats(ctx context.Context, profileID string) (*LearningOverview, error)

	// Catalog returns the snapshot requests are currently served from
	Catalog() *catalog.Snapshot
	Ping(ctx context.Context) error
}

// MatchResult is a ranked career path list for one profile
type MatchResult struct {
	ProfileID      string              `json:"profile_id"`
	CatalogVersion string              `json:"catalog_version"`
	Matches        []models.MatchScore `json:"matches"`
}

// Selection holds the roadmap alternatives for a profile; empty means no match
type Selection struct {
	ProfileID      string           `json:"profile_id"`
	CatalogVersion string           `json:"catalog_version"`
	Roadmaps       []models.Roadmap `json:"roadmaps"`
}

// RoadmapView is a roadmap together with its derived progress views
type RoadmapView struct {
	Roadmap models.Roadmap  `json:"roadmap"`
	Summary roadmap.Summary `json:"summary"`
	Board   roadmap.Board   `json:"board"`
}

// CourseFilter narrows the course list; empty fields mean learning.All
type CourseFilter struct {
	Level    string
	Category string
}

// CourseListing is the filtered catalog with the profile's enrollment overlaid
type CourseListing struct {
	ProfileID   string                   `json:"profile_id"`
	Courses     []models.Course          `json:"courses"`
	Buckets     []learning.UrgencyBucket `json:"buckets"`
	Recommended []models.Course          `json:"recommended"`
}

// LearningOverview aggregates a profile's learning progress
type LearningOverview struct {
	ProfileID     string               `json:"profile_id"`
	Stats         models.LearningStats `json:"stats"`
	Achievements  []models.Achievement `json:"achievements"`
	UnlockedCount int                  `json:"unlocked_count"`
}

func newRoadmapView(r models.Roadmap) *RoadmapView {
	return &RoadmapView{
		Roadmap: r,
		Summary: roadmap.Summarize(r),
		Board:   roadmap.NewBoard(r),
	}
}
