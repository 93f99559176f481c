// Package learning filters and groups the course catalog and derives
// enrollment statistics and achievements from it.
package learning

import (
	"sort"

	"github.com/terra-clan/pathway-engine/internal/models"
)

// All is the wildcard filter value meaning "no constraint"
const All = "All"

// Filter keeps courses whose level and category equal the given filters.
// Result order follows catalog order; Filter(c, All, All) returns c's elements unchanged.
func Filter(courses []models.Course, level, category string) []models.Course {
	if courses == nil {
		return nil
	}
	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if level != All && string(c.Level) != level {
			continue
		}
		if category != All && string(c.Category) != category {
			continue
		}
		out = append(out, c)
	}
	return out
}

// UrgencyBucket is one display group of courses
type UrgencyBucket struct {
	Urgency models.Urgency  `json:"urgency"`
	Label   string          `json:"label"`
	Courses []models.Course `json:"courses"`
}

// GroupByUrgency returns the High, Medium and Low buckets in that order,
// each in catalog order. Buckets are present even when empty.
func GroupByUrgency(courses []models.Course) []UrgencyBucket {
	buckets := make([]UrgencyBucket, len(models.Urgencies))
	index := make(map[models.Urgency]int, len(models.Urgencies))
	for i, u := range models.Urgencies {
		buckets[i] = UrgencyBucket{Urgency: u, Label: u.Label(), Courses: []models.Course{}}
		index[u] = i
	}
	for _, c := range courses {
		i, ok := index[c.Urgency]
		if !ok {
			continue
		}
		buckets[i].Courses = append(buckets[i].Courses, c)
	}
	return buckets
}

// RecommendForProfile orders courses by urgency; inside a bucket, courses
// teaching skills the profile lacks come before the rest, then catalog order.
func RecommendForProfile(courses []models.Course, profile models.Profile) []models.Course {
	have := models.FoldSet(profile.Skills)
	urgencyRank := make(map[models.Urgency]int, len(models.Urgencies))
	for i, u := range models.Urgencies {
		urgencyRank[u] = i
	}

	out := make([]models.Course, len(courses))
	copy(out, courses)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rankOf(urgencyRank, out[i].Urgency), rankOf(urgencyRank, out[j].Urgency)
		if ri != rj {
			return ri < rj
		}
		return teachesNew(out[i], have) && !teachesNew(out[j], have)
	})
	return out
}

func rankOf(ranks map[models.Urgency]int, u models.Urgency) int {
	if r, ok := ranks[u]; ok {
		return r
	}
	return len(ranks)
}

func teachesNew(c models.Course, have map[string]struct{}) bool {
	for _, skill := range c.SkillsGained {
		if _, ok := have[models.Fold(skill)]; !ok {
			return true
		}
	}
	return false
}
