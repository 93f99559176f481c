package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/pathway-engine/internal/cache"
	"github.com/terra-clan/pathway-engine/internal/catalog"
	"github.com/terra-clan/pathway-engine/internal/learning"
	"github.com/terra-clan/pathway-engine/internal/matching"
	"github.com/terra-clan/pathway-engine/internal/metrics"
	"github.com/terra-clan/pathway-engine/internal/models"
	"github.com/terra-clan/pathway-engine/internal/roadmap"
	"github.com/terra-clan/pathway-engine/internal/storage"
)

// Manager implements Service
type Manager struct {
	catalog catalog.Provider
	repo    storage.Repository
	cache   cache.Cache
	weights matching.Weights
	now     func() time.Time

	mu           sync.Mutex
	table        *roadmap.DecisionTable
	tableVersion string
}

// NewManager creates a Manager. A nil cache disables result caching and
// zero weights fall back to matching.DefaultWeights.
func NewManager(provider catalog.Provider, repo storage.Repository, c cache.Cache, weights matching.Weights) *Manager {
	if c == nil {
		c = cache.Noop{}
	}
	if weights == (matching.Weights{}) {
		weights = matching.DefaultWeights
	}
	return &Manager{
		catalog: provider,
		repo:    repo,
		cache:   c,
		weights: weights,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks if the manager is operational
func (m *Manager) Ping(ctx context.Context) error {
	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (m *Manager) Catalog() *catalog.Snapshot {
	return m.catalog.Snapshot()
}

// --- Profiles ---

// CreateProfile normalizes, validates and stores a new profile
func (m *Manager) CreateProfile(ctx context.Context, p models.Profile, req models.Requirements) (*models.Profile, error) {
	p = models.NormalizeProfile(p)
	if err := models.ValidateProfile(p, req); err != nil {
		return nil, err
	}

	p.ID = uuid.New().String()
	p.CreatedAt = m.now()

	if err := m.repo.CreateProfile(ctx, &p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	slog.Info("profile created",
		"profile_id", p.ID,
		"mode", p.Mode,
		"level", p.Level,
		"skills", len(p.Skills),
		"interests", len(p.Interests),
	)
	return &p, nil
}

// GetProfile retrieves a profile by ID
func (m *Manager) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	p, err := m.repo.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// --- Career matching ---

// ComputeMatches ranks the catalog's career paths for a profile.
// limit <= 0 returns every path.
func (m *Manager) ComputeMatches(ctx context.Context, profileID string, limit int) (*MatchResult, error) {
	p, err := m.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	snap := m.catalog.Snapshot()

	var scores []models.MatchScore
	key, keyErr := m.resultKey("matches", snap.Version, p)
	if !m.lookup(ctx, "matches", key, keyErr, &scores) {
		scores = matching.Rank(*p, snap.CareerPaths, m.weights)
		metrics.MatchesComputed.Inc()
		m.store(ctx, key, keyErr, scores)
	}

	return &MatchResult{
		ProfileID:      p.ID,
		CatalogVersion: snap.Version,
		Matches:        matching.Top(scores, limitOrAll(limit)),
	}, nil
}

// --- Roadmaps ---

// SelectRoadmaps returns the roadmap alternatives the decision table yields.
// No match is an empty selection, not an error.
func (m *Manager) SelectRoadmaps(ctx context.Context, profileID string) (*Selection, error) {
	p, err := m.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	snap := m.catalog.Snapshot()
	roadmaps := m.selectFor(ctx, snap, p)

	metrics.RoadmapsSelected.WithLabelValues(metrics.Outcome(len(roadmaps))).Inc()
	if len(roadmaps) == 0 {
		slog.Info("no roadmap matches profile", "profile_id", p.ID, "mode", p.Mode, "level", p.Level)
	}

	return &Selection{
		ProfileID:      p.ID,
		CatalogVersion: snap.Version,
		Roadmaps:       roadmaps,
	}, nil
}

func (m *Manager) selectFor(ctx context.Context, snap *catalog.Snapshot, p *models.Profile) []models.Roadmap {
	var roadmaps []models.Roadmap
	key, keyErr := m.resultKey("roadmaps", snap.Version, p)
	if m.lookup(ctx, "roadmaps", key, keyErr, &roadmaps) {
		if roadmaps == nil {
			roadmaps = []models.Roadmap{}
		}
		return roadmaps
	}

	roadmaps = m.decisionTable(snap).Select(*p)
	m.store(ctx, key, keyErr, roadmaps)
	return roadmaps
}

// decisionTable rebuilds the table only when the catalog version changes
func (m *Manager) decisionTable(snap *catalog.Snapshot) *roadmap.DecisionTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.table == nil || m.tableVersion != snap.Version {
		m.table = roadmap.NewDecisionTable(snap.Templates)
		m.tableVersion = snap.Version
	}
	return m.table
}

// AdoptRoadmap instantiates one of the profile's roadmap alternatives and stores it
func (m *Manager) AdoptRoadmap(ctx context.Context, profileID, templateID string) (*RoadmapView, error) {
	p, err := m.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	snap := m.catalog.Snapshot()
	if _, ok := snap.Template(templateID); !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, templateID)
	}

	var chosen *models.Roadmap
	for _, option := range m.decisionTable(snap).Select(*p) {
		if option.TemplateID == templateID {
			chosen = &option
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotApplicable, templateID)
	}

	now := m.now()
	chosen.ID = uuid.New().String()
	chosen.ProfileID = p.ID
	chosen.Version = 1
	chosen.CreatedAt = now
	chosen.UpdatedAt = now

	if err := m.repo.CreateRoadmap(ctx, chosen); err != nil {
		return nil, fmt.Errorf("failed to save roadmap: %w", err)
	}

	slog.Info("roadmap adopted",
		"roadmap_id", chosen.ID,
		"profile_id", p.ID,
		"template_id", templateID,
		"milestones", len(chosen.Milestones),
	)
	return newRoadmapView(*chosen), nil
}

// ListRoadmaps returns the roadmaps a profile adopted, oldest first
func (m *Manager) ListRoadmaps(ctx context.Context, profileID string) ([]*models.Roadmap, error) {
	if _, err := m.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}
	roadmaps, err := m.repo.ListRoadmaps(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmaps: %w", err)
	}
	if roadmaps == nil {
		roadmaps = []*models.Roadmap{}
	}
	return roadmaps, nil
}

// GetRoadmap returns a stored roadmap with its summary and board
func (m *Manager) GetRoadmap(ctx context.Context, id string) (*RoadmapView, error) {
	r, err := m.loadRoadmap(ctx, id)
	if err != nil {
		return nil, err
	}
	return newRoadmapView(*r), nil
}

// SummarizeRoadmap returns only the progress summary of a stored roadmap
func (m *Manager) SummarizeRoadmap(ctx context.Context, id string) (*roadmap.Summary, error) {
	r, err := m.loadRoadmap(ctx, id)
	if err != nil {
		return nil, err
	}
	s := roadmap.Summarize(*r)
	return &s, nil
}

// ToggleMilestone flips one milestone and persists the new roadmap value.
// expectedVersion > 0 makes the call fail with ErrVersionConflict when the
// caller's copy is stale; the store applies the same check atomically.
func (m *Manager) ToggleMilestone(ctx context.Context, roadmapID, milestoneID string, expectedVersion int) (*RoadmapView, error) {
	current, err := m.loadRoadmap(ctx, roadmapID)
	if err != nil {
		return nil, err
	}
	if expectedVersion > 0 && expectedVersion != current.Version {
		return nil, fmt.Errorf("%w: roadmap %s is at version %d, not %d",
			ErrVersionConflict, roadmapID, current.Version, expectedVersion)
	}

	next, err := roadmap.Toggle(*current, milestoneID)
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = m.now()

	if err := m.repo.UpdateRoadmap(ctx, &next); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRoadmapNotFound
		}
		return nil, fmt.Errorf("failed to update roadmap: %w", err)
	}
	metrics.MilestoneToggles.Inc()

	milestone := next.Milestones[next.IndexOf(milestoneID)]
	slog.Info("milestone toggled",
		"roadmap_id", roadmapID,
		"milestone_id", milestoneID,
		"state", milestone.State,
		"version", next.Version,
	)
	return newRoadmapView(next), nil
}

func (m *Manager) loadRoadmap(ctx context.Context, id string) (*models.Roadmap, error) {
	r, err := m.repo.GetRoadmap(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}
	if r == nil {
		return nil, ErrRoadmapNotFound
	}
	return r, nil
}

// --- Learning ---

// ListCourses filters the catalog and overlays the profile's enrollments
func (m *Manager) ListCourses(ctx context.Context, profileID string, filter CourseFilter) (*CourseListing, error) {
	p, courses, err := m.profileCourses(ctx, profileID)
	if err != nil {
		return nil, err
	}

	filtered := learning.Filter(courses, orAll(filter.Level), orAll(filter.Category))
	if filtered == nil {
		filtered = []models.Course{}
	}
	return &CourseListing{
		ProfileID:   p.ID,
		Courses:     filtered,
		Buckets:     learning.GroupByUrgency(filtered),
		Recommended: learning.RecommendForProfile(filtered, *p),
	}, nil
}

// Enroll enrolls a profile in a course, keeping any existing progress
func (m *Manager) Enroll(ctx context.Context, profileID, courseID string) (*models.Course, error) {
	_, courses, err := m.profileCourses(ctx, profileID)
	if err != nil {
		return nil, err
	}

	updated, err := learning.Enroll(courses, courseID)
	if err != nil {
		return nil, err
	}

	course, err := m.saveEnrollment(ctx, profileID, courseID, updated)
	if err != nil {
		return nil, err
	}
	metrics.Enrollments.Inc()

	slog.Info("course enrolled", "profile_id", profileID, "course_id", courseID)
	return course, nil
}

// UpdateCourseProgress records progress for a course, enrolling it if needed
func (m *Manager) UpdateCourseProgress(ctx context.Context, profileID, courseID string, progress int) (*models.Course, error) {
	_, courses, err := m.profileCourses(ctx, profileID)
	if err != nil {
		return nil, err
	}

	updated, err := learning.UpdateProgress(courses, courseID, progress)
	if err != nil {
		return nil, err
	}

	course, err := m.saveEnrollment(ctx, profileID, courseID, updated)
	if err != nil {
		return nil, err
	}

	slog.Info("course progress updated",
		"profile_id", profileID,
		"course_id", courseID,
		"progress", course.Progress,
	)
	return course, nil
}

// LearningStats aggregates progress and evaluates achievements
func (m *Manager) LearningStats(ctx context.Context, profileID string) (*LearningOverview, error) {
	p, courses, err := m.profileCourses(ctx, profileID)
	if err != nil {
		return nil, err
	}

	stats := learning.Aggregate(courses)
	achievements := learning.EvaluateAchievements(m.catalog.Snapshot().Achievements, stats)
	return &LearningOverview{
		ProfileID:     p.ID,
		Stats:         stats,
		Achievements:  achievements,
		UnlockedCount: learning.CountUnlocked(achievements),
	}, nil
}

// profileCourses returns the catalog courses with the profile's enrollments applied
func (m *Manager) profileCourses(ctx context.Context, profileID string) (*models.Profile, []models.Course, error) {
	p, err := m.GetProfile(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}

	enrollments, err := m.repo.ListEnrollments(ctx, profileID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return p, learning.ApplyEnrollments(m.catalog.Snapshot().Courses, enrollments), nil
}

func (m *Manager) saveEnrollment(ctx context.Context, profileID, courseID string, courses []models.Course) (*models.Course, error) {
	var course models.Course
	for _, c := range courses {
		if c.ID == courseID {
			course = c
			break
		}
	}

	e := &models.Enrollment{
		ProfileID: profileID,
		CourseID:  courseID,
		Progress:  course.Progress,
		UpdatedAt: m.now(),
	}
	if err := m.repo.UpsertEnrollment(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save enrollment: %w", err)
	}
	return &course, nil
}

// --- Result cache ---

// profileKey holds the profile fields results depend on
type profileKey struct {
	Mode      models.Mode      `json:"mode"`
	Level     string           `json:"level"`
	Skills    []string         `json:"skills"`
	Interests []string         `json:"interests"`
	Weights   matching.Weights `json:"weights"`
}

func (m *Manager) resultKey(kind, version string, p *models.Profile) (string, error) {
	fp, err := cache.Fingerprint(profileKey{
		Mode:      p.Mode,
		Level:     p.Level,
		Skills:    foldedSorted(p.Skills),
		Interests: foldedSorted(p.Interests),
		Weights:   m.weights,
	})
	if err != nil {
		return "", err
	}
	return cache.Key(kind, version, fp), nil
}

// lookup reads a cached result; cache failures degrade to a miss
func (m *Manager) lookup(ctx context.Context, kind, key string, keyErr error, dest any) bool {
	if keyErr != nil {
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		return false
	}
	found, err := m.cache.Get(ctx, key, dest)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		slog.Warn("result cache read failed", "key", key, "error", err)
		return false
	case found:
		metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
		return true
	default:
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	}
}

func (m *Manager) store(ctx context.Context, key string, keyErr error, value any) {
	if keyErr != nil {
		return
	}
	if err := m.cache.Set(ctx, key, value); err != nil {
		slog.Warn("result cache write failed", "key", key, "error", err)
	}
}

func foldedSorted(items []string) []string {
	out := make([]string, 0, len(items))
	for k := range models.FoldSet(items) {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func orAll(v string) string {
	if v == "" {
		return learning.All
	}
	return v
}

func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

var _ Service = (*Manager)(nil)
