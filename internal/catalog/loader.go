package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/pathway-engine/internal/models"
)

// ErrNotLoaded is returned by Reload before any directory was loaded
var ErrNotLoaded = errors.New("catalog not loaded")

// Loader reads the catalog from a directory and keeps the latest snapshot.
//
// Layout:
//
//	careers.yaml
//	courses.yaml
//	achievements.yaml   (optional)
//	roadmaps/*.yaml     (one roadmap template per file)
type Loader struct {
	mu       sync.RWMutex
	dir      string
	snapshot *Snapshot
}

// NewLoader creates a loader holding an empty snapshot
func NewLoader() *Loader {
	return &Loader{snapshot: &Snapshot{Version: "empty"}}
}

// Snapshot returns the current catalog version
func (l *Loader) Snapshot() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// LoadFromDir parses the catalog in dir and swaps it in.
// On error the previous snapshot stays active.
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading catalog from directory", "dir", dir)

	snap, err := readDir(dir)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.dir = dir
	l.snapshot = snap
	l.mu.Unlock()

	slog.Info("catalog loaded",
		"version", snap.Version,
		"careers", len(snap.CareerPaths),
		"roadmaps", len(snap.Templates),
		"courses", len(snap.Courses),
		"achievements", len(snap.Achievements),
	)
	return nil
}

// Reload re-reads the last loaded directory and reports whether the version changed
func (l *Loader) Reload() (bool, error) {
	l.mu.RLock()
	dir, previous := l.dir, l.snapshot.Version
	l.mu.RUnlock()

	if dir == "" {
		return false, ErrNotLoaded
	}

	snap, err := readDir(dir)
	if err != nil {
		return false, err
	}
	if snap.Version == previous {
		return false, nil
	}

	l.mu.Lock()
	l.snapshot = snap
	l.mu.Unlock()

	slog.Info("catalog reloaded", "previous_version", previous, "version", snap.Version)
	return true, nil
}

// readDir builds a snapshot; the version is a digest of every file read
func readDir(dir string) (*Snapshot, error) {
	digest := sha256.New()
	snap := &Snapshot{}

	var careers careersFile
	if err := readYAML(digest, filepath.Join(dir, "careers.yaml"), &careers, true); err != nil {
		return nil, err
	}
	paths, err := convertCareers(careers)
	if err != nil {
		return nil, err
	}
	snap.CareerPaths = paths

	var courses coursesFile
	if err := readYAML(digest, filepath.Join(dir, "courses.yaml"), &courses, true); err != nil {
		return nil, err
	}
	list, err := convertCourses(courses)
	if err != nil {
		return nil, err
	}
	snap.Courses = list

	var achievements achievementsFile
	if err := readYAML(digest, filepath.Join(dir, "achievements.yaml"), &achievements, false); err != nil {
		return nil, err
	}
	badges, err := convertAchievements(achievements)
	if err != nil {
		return nil, err
	}
	snap.Achievements = badges

	templates, err := readTemplates(digest, filepath.Join(dir, "roadmaps"))
	if err != nil {
		return nil, err
	}
	snap.Templates = templates

	snap.Version = hex.EncodeToString(digest.Sum(nil))[:12]
	return snap, nil
}

func readYAML(digest hash.Hash, path string, out interface{}, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	digest.Write([]byte(filepath.Base(path)))
	digest.Write(data)

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// readTemplates loads roadmaps/*.yaml in file-name order; invalid files are skipped
func readTemplates(digest hash.Hash, dir string) ([]models.RoadmapTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("catalog has no roadmaps directory", "dir", dir)
			return []models.RoadmapTemplate{}, nil
		}
		return nil, fmt.Errorf("failed to read roadmaps dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	templates := make([]models.RoadmapTemplate, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, name := range files {
		var tf templateFile
		if err := readYAML(digest, filepath.Join(dir, name), &tf, true); err != nil {
			slog.Warn("failed to load roadmap template", "file", name, "error", err)
			continue
		}

		tmpl, err := convertTemplate(tf)
		if err != nil {
			slog.Warn("invalid roadmap template", "file", name, "error", err)
			continue
		}
		if seen[tmpl.ID] {
			slog.Warn("duplicate roadmap template id", "file", name, "id", tmpl.ID)
			continue
		}
		seen[tmpl.ID] = true
		templates = append(templates, tmpl)
	}
	return templates, nil
}

func convertCareers(f careersFile) ([]models.CareerPath, error) {
	out := make([]models.CareerPath, 0, len(f.Careers))
	seen := make(map[string]bool, len(f.Careers))
	for i, c := range f.Careers {
		if c.ID == "" || c.Title == "" {
			return nil, fmt.Errorf("career %d: id and title are required", i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("career %q: duplicate id", c.ID)
		}
		seen[c.ID] = true

		demand := models.DemandLevel(c.DemandLevel)
		if !demand.IsValid() {
			return nil, fmt.Errorf("career %q: invalid demand_level %q", c.ID, c.DemandLevel)
		}
		out = append(out, models.CareerPath{
			ID:             c.ID,
			Title:          c.Title,
			Icon:           c.Icon,
			Description:    c.Description,
			RequiredSkills: models.UniqueStrings(c.RequiredSkills),
			Domains:        models.UniqueStrings(c.Domains),
			DemandLevel:    demand,
			AvgSalary:      c.AvgSalary,
			TimeToRole:     c.TimeToRole,
		})
	}
	return out, nil
}

func convertCourses(f coursesFile) ([]models.Course, error) {
	out := make([]models.Course, 0, len(f.Courses))
	seen := make(map[string]bool, len(f.Courses))
	for i, c := range f.Courses {
		if c.ID == "" || c.Title == "" {
			return nil, fmt.Errorf("course %d: id and title are required", i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("course %q: duplicate id", c.ID)
		}
		seen[c.ID] = true

		course := models.Course{
			ID:            c.ID,
			Title:         c.Title,
			Provider:      c.Provider,
			Description:   c.Description,
			Duration:      c.Duration,
			Rating:        c.Rating,
			StudentsCount: c.Students,
			Price:         c.Price,
			Level:         models.Level(c.Level),
			Category:      models.Category(c.Category),
			SkillsGained:  models.UniqueStrings(c.SkillsGained),
			Urgency:       models.Urgency(strings.TrimSuffix(c.Urgency, " Priority")),
		}
		switch {
		case !course.Level.IsValid():
			return nil, fmt.Errorf("course %q: invalid level %q", c.ID, c.Level)
		case !course.Category.IsValid():
			return nil, fmt.Errorf("course %q: invalid category %q", c.ID, c.Category)
		case !course.Urgency.IsValid():
			return nil, fmt.Errorf("course %q: invalid urgency %q", c.ID, c.Urgency)
		case course.Rating < 0 || course.Rating > 5:
			return nil, fmt.Errorf("course %q: rating %.1f out of range", c.ID, c.Rating)
		}
		out = append(out, course)
	}
	return out, nil
}

func convertAchievements(f achievementsFile) ([]models.Achievement, error) {
	out := make([]models.Achievement, 0, len(f.Achievements))
	for i, a := range f.Achievements {
		if a.Name == "" {
			return nil, fmt.Errorf("achievement %d: name is required", i)
		}
		metric := models.Metric(a.Unlock.Metric)
		if _, ok := metric.Value(models.LearningStats{}); !ok {
			return nil, fmt.Errorf("achievement %q: unknown metric %q", a.Name, a.Unlock.Metric)
		}
		out = append(out, models.Achievement{
			Name:        a.Name,
			Icon:        a.Icon,
			Description: a.Description,
			Unlock:      models.UnlockCondition{Metric: metric, AtLeast: a.Unlock.AtLeast},
		})
	}
	return out, nil
}

func convertTemplate(tf templateFile) (models.RoadmapTemplate, error) {
	if tf.ID == "" {
		return models.RoadmapTemplate{}, fmt.Errorf("template id is required")
	}
	mode := models.Mode(tf.Applies.Mode)
	if !mode.IsValid() {
		return models.RoadmapTemplate{}, fmt.Errorf("template %q: invalid mode %q", tf.ID, tf.Applies.Mode)
	}
	for _, level := range tf.Applies.Levels {
		if !mode.HasLevel(level) {
			return models.RoadmapTemplate{}, fmt.Errorf("template %q: %q is not a %s level", tf.ID, level, mode)
		}
	}
	if len(tf.Milestones) == 0 {
		return models.RoadmapTemplate{}, fmt.Errorf("template %q: at least one milestone is required", tf.ID)
	}

	milestones := make([]models.Milestone, 0, len(tf.Milestones))
	seen := make(map[string]bool, len(tf.Milestones))
	for _, mf := range tf.Milestones {
		if mf.ID == "" || mf.Title == "" {
			return models.RoadmapTemplate{}, fmt.Errorf("template %q: milestone id and title are required", tf.ID)
		}
		if seen[mf.ID] {
			return models.RoadmapTemplate{}, fmt.Errorf("template %q: duplicate milestone id %q", tf.ID, mf.ID)
		}
		seen[mf.ID] = true

		m := mf.toModel()
		if !m.Priority.IsValid() {
			return models.RoadmapTemplate{}, fmt.Errorf("template %q: milestone %q has invalid priority %q", tf.ID, mf.ID, mf.Priority)
		}
		milestones = append(milestones, m)
	}

	title := tf.Title
	if title == "" {
		title = tf.ID
	}
	return models.RoadmapTemplate{
		ID:            tf.ID,
		Title:         title,
		Description:   tf.Description,
		Icon:          tf.Icon,
		TotalDuration: tf.TotalDuration,
		Priority:      tf.Priority,
		Applies: models.Applicability{
			Mode:         mode,
			Levels:       tf.Applies.Levels,
			AnySkills:    models.UniqueStrings(tf.Applies.AnySkills),
			AnyInterests: models.UniqueStrings(tf.Applies.AnyInterests),
		},
		Milestones: milestones,
	}, nil
}
