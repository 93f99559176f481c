package learning

import (
	"testing"

	"github.com/terra-clan/pathway-engine/internal/models"
)

func TestEvaluateAchievements(t *testing.T) {
	defs := []models.Achievement{
		{Name: "Fast Learner", Unlock: models.UnlockCondition{Metric: models.MetricCompletedCourses, AtLeast: 3}},
		{Name: "Skill Builder", Unlock: models.UnlockCondition{Metric: models.MetricTechnicalSkillsGained, AtLeast: 5}},
		{Name: "Getting Started", Unlock: models.UnlockCondition{Metric: models.MetricEnrolledCourses, AtLeast: 1}},
		{Name: "Mystery", Unlock: models.UnlockCondition{Metric: "karma", AtLeast: 0}},
	}
	stats := models.LearningStats{EnrolledCount: 4, CompletedCount: 3, TechnicalSkillsGained: 4}

	got := EvaluateAchievements(defs, stats)
	want := []bool{true, false, true, false}
	for i, a := range got {
		if a.Unlocked != want[i] {
			t.Errorf("%s: expected unlocked=%v", a.Name, want[i])
		}
	}
	if CountUnlocked(got) != 2 {
		t.Errorf("expected 2 unlocked, got %d", CountUnlocked(got))
	}
	if defs[0].Unlocked {
		t.Error("definitions must not be mutated")
	}
}
