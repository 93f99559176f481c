package learning

import "github.com/terra-clan/pathway-engine/internal/models"

// EvaluateAchievements returns copies of defs with Unlocked recomputed from stats.
// Unknown metrics never unlock.
func EvaluateAchievements(defs []models.Achievement, stats models.LearningStats) []models.Achievement {
	out := make([]models.Achievement, len(defs))
	for i, a := range defs {
		v, ok := a.Unlock.Metric.Value(stats)
		a.Unlocked = ok && v >= a.Unlock.AtLeast
		out[i] = a
	}
	return out
}

// CountUnlocked returns how many achievements are unlocked
func CountUnlocked(achievements []models.Achievement) int {
	n := 0
	for _, a := range achievements {
		if a.Unlocked {
			n++
		}
	}
	return n
}
