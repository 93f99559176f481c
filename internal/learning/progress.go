package learning

import (
	"errors"
	"fmt"

	"github.com/terra-clan/pathway-engine/internal/models"
)

// Common errors
var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
)

// Aggregate computes enrollment statistics. OverallProgress is the rounded
// mean progress of enrolled courses and 0 when nothing is enrolled.
func Aggregate(courses []models.Course) models.LearningStats {
	var stats models.LearningStats
	sum := 0
	skills := make(map[string]struct{})
	technical := make(map[string]struct{})

	for _, c := range courses {
		if !c.Enrolled {
			continue
		}
		stats.EnrolledCount++
		sum += c.Progress
		if c.Progress != 100 {
			continue
		}
		stats.CompletedCount++
		for _, s := range c.SkillsGained {
			key := models.Fold(s)
			skills[key] = struct{}{}
			if c.Category == models.CategoryTechnical {
				technical[key] = struct{}{}
			}
		}
	}

	if stats.EnrolledCount > 0 {
		stats.OverallProgress = models.ClampPercent(float64(sum) / float64(stats.EnrolledCount))
	}
	stats.SkillsGained = len(skills)
	stats.TechnicalSkillsGained = len(technical)
	return stats
}

// Enroll returns a copy of courses with courseID enrolled. Enrolling twice
// keeps existing progress.
func Enroll(courses []models.Course, courseID string) ([]models.Course, error) {
	return update(courses, courseID, func(c *models.Course) {
		c.Enrolled = true
	})
}

// UpdateProgress returns a copy of courses with courseID's progress set.
// Reporting progress enrolls the course.
func UpdateProgress(courses []models.Course, courseID string, progress int) ([]models.Course, error) {
	if progress < 0 || progress > 100 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidProgress, progress)
	}
	return update(courses, courseID, func(c *models.Course) {
		c.Enrolled = true
		c.Progress = progress
	})
}

func update(courses []models.Course, courseID string, fn func(*models.Course)) ([]models.Course, error) {
	for i := range courses {
		if courses[i].ID != courseID {
			continue
		}
		out := make([]models.Course, len(courses))
		copy(out, courses)
		fn(&out[i])
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrCourseNotFound, courseID)
}

// ApplyEnrollments overlays a user's enrollments onto catalog courses.
// Enrollments for unknown courses are ignored.
func ApplyEnrollments(courses []models.Course, enrollments []models.Enrollment) []models.Course {
	byCourse := make(map[string]models.Enrollment, len(enrollments))
	for _, e := range enrollments {
		byCourse[e.CourseID] = e
	}

	out := make([]models.Course, len(courses))
	for i, c := range courses {
		c.Enrolled = false
		c.Progress = 0
		if e, ok := byCourse[c.ID]; ok {
			c.Enrolled = true
			c.Progress = min(max(e.Progress, 0), 100)
		}
		out[i] = c
	}
	return out
}
