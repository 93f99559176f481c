package learning

import (
	"reflect"
	"testing"

	"github.com/terra-clan/pathway-engine/internal/models"
)

func testCourses() []models.Course {
	return []models.Course{
		{ID: "1", Title: "Advanced Machine Learning", Level: models.LevelAdvanced, Category: models.CategoryTechnical,
			Urgency: models.UrgencyHigh, SkillsGained: []string{"Machine Learning", "Deep Learning"}},
		{ID: "2", Title: "SQL for Data Science", Level: models.LevelIntermediate, Category: models.CategoryTechnical,
			Urgency: models.UrgencyMedium, SkillsGained: []string{"SQL", "Database Design"}, Enrolled: true, Progress: 45},
		{ID: "3", Title: "Leadership Fundamentals", Level: models.LevelBeginner, Category: models.CategorySoftSkills,
			Urgency: models.UrgencyLow, SkillsGained: []string{"Leadership", "Communication"}},
		{ID: "4", Title: "React.js Complete Guide", Level: models.LevelIntermediate, Category: models.CategoryTechnical,
			Urgency: models.UrgencyHigh, SkillsGained: []string{"React", "JavaScript"}},
		{ID: "5", Title: "Data Visualization Mastery", Level: models.LevelIntermediate, Category: models.CategoryTechnical,
			Urgency: models.UrgencyMedium, SkillsGained: []string{"Data Visualization", "Python"}, Enrolled: true, Progress: 20},
		{ID: "6", Title: "Project Management Essentials", Level: models.LevelBeginner, Category: models.CategorySoftSkills,
			Urgency: models.UrgencyLow, SkillsGained: []string{"Project Management", "Agile"}},
	}
}

func ids(courses []models.Course) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.ID)
	}
	return out
}

func TestFilterIdentity(t *testing.T) {
	catalog := testCourses()
	if got := Filter(catalog, All, All); !reflect.DeepEqual(got, catalog) {
		t.Fatalf("Filter(All, All) changed the catalog: %v", ids(got))
	}
	if got := Filter(nil, All, All); got != nil {
		t.Fatalf("expected nil for nil catalog, got %v", got)
	}
}

func TestFilter(t *testing.T) {
	cases := []struct {
		name     string
		level    string
		category string
		want     []string
	}{
		{"intermediate", "Intermediate", All, []string{"2", "4", "5"}},
		{"soft_skills", All, "Soft Skills", []string{"3", "6"}},
		{"beginner_technical", "Beginner", "Technical", []string{}},
		{"advanced_technical", "Advanced", "Technical", []string{"1"}},
		{"unknown_level", "Expert", All, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Filter(testCourses(), tc.level, tc.category))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestGroupByUrgency(t *testing.T) {
	buckets := GroupByUrgency(testCourses())
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}

	want := []struct {
		urgency models.Urgency
		label   string
		ids     []string
	}{
		{models.UrgencyHigh, "High Priority", []string{"1", "4"}},
		{models.UrgencyMedium, "Medium Priority", []string{"2", "5"}},
		{models.UrgencyLow, "Low Priority", []string{"3", "6"}},
	}
	for i, w := range want {
		b := buckets[i]
		if b.Urgency != w.urgency || b.Label != w.label || !reflect.DeepEqual(ids(b.Courses), w.ids) {
			t.Errorf("bucket %d: expected %s %v, got %s %v", i, w.urgency, w.ids, b.Urgency, ids(b.Courses))
		}
	}

	empty := GroupByUrgency(nil)
	for _, b := range empty {
		if b.Courses == nil || len(b.Courses) != 0 {
			t.Errorf("expected empty bucket for %s", b.Urgency)
		}
	}
}

func TestRecommendForProfile(t *testing.T) {
	profile := models.Profile{Skills: []string{"Machine Learning", "Deep Learning", "sql", "Database Design"}}

	got := ids(RecommendForProfile(testCourses(), profile))
	// course 1 and 2 teach nothing new so they drop behind 4 and 5 in their buckets
	if want := []string{"4", "1", "5", "2", "3", "6"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
