// Package matching ranks career paths against a profile.
package matching

import (
	"sort"

	"github.com/terra-clan/pathway-engine/internal/models"
)

// Weights controls how skill coverage and interest overlap combine into a score
type Weights struct {
	Skill    float64
	Interest float64
}

// DefaultWeights favours skills over interests 70/30
var DefaultWeights = Weights{Skill: 0.7, Interest: 0.3}

// Rank scores every path and returns them best first.
// Equal scores keep catalog order. An empty catalog yields an empty result.
func Rank(profile models.Profile, paths []models.CareerPath, w Weights) []models.MatchScore {
	skills := models.FoldSet(profile.Skills)
	interests := models.FoldSet(profile.Interests)

	scores := make([]models.MatchScore, 0, len(paths))
	for _, path := range paths {
		scores = append(scores, score(path, skills, interests, w))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// Score computes the match of a single path
func Score(profile models.Profile, path models.CareerPath, w Weights) models.MatchScore {
	return score(path, models.FoldSet(profile.Skills), models.FoldSet(profile.Interests), w)
}

func score(path models.CareerPath, skills, interests map[string]struct{}, w Weights) models.MatchScore {
	matched := make([]string, 0, len(path.RequiredSkills))
	missing := make([]string, 0, len(path.RequiredSkills))
	required := models.UniqueStrings(path.RequiredSkills)
	for _, skill := range required {
		if _, ok := skills[models.Fold(skill)]; ok {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	coverage := ratio(len(matched), len(required))
	overlap := ratio(countIn(models.UniqueStrings(path.Domains), interests), len(models.UniqueStrings(path.Domains)))

	return models.MatchScore{
		CareerPath:    path,
		Score:         models.ClampPercent(100 * (w.Skill*coverage + w.Interest*overlap)),
		MatchedSkills: matched,
		MissingSkills: missing,
	}
}

// Top returns at most n scores from an already ranked slice
func Top(scores []models.MatchScore, n int) []models.MatchScore {
	if n < 0 || n >= len(scores) {
		return scores
	}
	return scores[:n]
}

func countIn(items []string, set map[string]struct{}) int {
	n := 0
	for _, item := range items {
		if _, ok := set[models.Fold(item)]; ok {
			n++
		}
	}
	return n
}

// ratio is 0 for an empty denominator so degenerate paths still score
func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
