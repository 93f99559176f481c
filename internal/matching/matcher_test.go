package matching

import (
	"reflect"
	"testing"

	"github.com/terra-clan/pathway-engine/internal/models"
)

func testPaths() []models.CareerPath {
	return []models.CareerPath{
		{
			ID:             "data-scientist",
			Title:          "Data Scientist",
			RequiredSkills: []string{"Python", "SQL", "Data Analysis", "Machine Learning"},
			Domains:        []string{"Technology", "Science", "Business"},
		},
		{
			ID:             "frontend-developer",
			Title:          "Frontend Developer",
			RequiredSkills: []string{"JavaScript", "React", "Design"},
			Domains:        []string{"Technology", "Arts"},
		},
		{
			ID:             "product-manager",
			Title:          "Product Manager",
			RequiredSkills: []string{"Communication", "Leadership", "Project Management"},
			Domains:        []string{"Business", "Technology"},
		},
	}
}

func TestRankScoresAndOrder(t *testing.T) {
	profile := models.Profile{
		Skills:    []string{"python", "SQL", "Design"},
		Interests: []string{"Technology"},
	}

	scores := Rank(profile, testPaths(), DefaultWeights)
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}

	// data scientist: 0.7*0.5 + 0.3*(1/3) = 0.45
	// frontend:       0.7*(1/3) + 0.3*0.5 = 0.3833
	// product:        0.7*0 + 0.3*0.5 = 0.15
	want := []struct {
		id    string
		score int
	}{
		{"data-scientist", 45},
		{"frontend-developer", 38},
		{"product-manager", 15},
	}
	for i, w := range want {
		if scores[i].CareerPath.ID != w.id || scores[i].Score != w.score {
			t.Errorf("position %d: expected %s=%d, got %s=%d", i, w.id, w.score, scores[i].CareerPath.ID, scores[i].Score)
		}
	}

	if !reflect.DeepEqual(scores[0].MatchedSkills, []string{"Python", "SQL"}) {
		t.Errorf("unexpected matched skills: %v", scores[0].MatchedSkills)
	}
	if !reflect.DeepEqual(scores[0].MissingSkills, []string{"Data Analysis", "Machine Learning"}) {
		t.Errorf("unexpected missing skills: %v", scores[0].MissingSkills)
	}
}

func TestRankStableTies(t *testing.T) {
	paths := []models.CareerPath{
		{ID: "a", RequiredSkills: []string{"Go"}},
		{ID: "b", RequiredSkills: []string{"Rust"}},
		{ID: "c", RequiredSkills: []string{"Go"}},
		{ID: "d"},
	}
	profile := models.Profile{Skills: []string{"Go"}}

	scores := Rank(profile, paths, DefaultWeights)
	got := make([]string, 0, len(scores))
	for _, s := range scores {
		got = append(got, s.CareerPath.ID)
	}
	if want := []string{"a", "c", "b", "d"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}

func TestRankZeroRequiredSkills(t *testing.T) {
	paths := []models.CareerPath{{ID: "empty"}}
	scores := Rank(models.Profile{Skills: []string{"Go"}, Interests: []string{"Tech"}}, paths, DefaultWeights)
	if scores[0].Score != 0 {
		t.Fatalf("expected degenerate path to score 0, got %d", scores[0].Score)
	}
}

func TestScoreRoundsHalvesUp(t *testing.T) {
	path := models.CareerPath{
		ID:             "p",
		RequiredSkills: []string{"a", "b", "c", "d"},
		Domains:        []string{"x", "y"},
	}

	cases := []struct {
		name      string
		skills    []string
		interests []string
		want      int
	}{
		{"three of four skills", []string{"a", "b", "c"}, nil, 53},          // 52.5
		{"one skill and half the domains", []string{"a"}, []string{"x"}, 33}, // 17.5 + 15
		{"three skills and half the domains", []string{"a", "b", "c"}, []string{"y"}, 68},
		{"one of four skills", []string{"d"}, nil, 18},
		{"half the skills", []string{"a", "b"}, nil, 35},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(models.Profile{Skills: tc.skills, Interests: tc.interests}, path, DefaultWeights)
			if got.Score != tc.want {
				t.Errorf("score = %d, want %d", got.Score, tc.want)
			}
		})
	}
}

func TestRankBoundsAndDeterminism(t *testing.T) {
	profiles := []models.Profile{
		{},
		{Skills: []string{"Python", "SQL", "Data Analysis", "Machine Learning"}, Interests: []string{"Technology", "Science", "Business"}},
		{Skills: []string{"JavaScript"}, Interests: []string{"Arts", "Sports"}},
	}
	weights := []Weights{DefaultWeights, {Skill: 1, Interest: 1}, {Skill: 0, Interest: 0}}

	for _, p := range profiles {
		for _, w := range weights {
			first := Rank(p, testPaths(), w)
			second := Rank(p, testPaths(), w)
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("expected deterministic ranking")
			}
			for i, s := range first {
				if s.Score < 0 || s.Score > 100 {
					t.Errorf("score out of range: %d", s.Score)
				}
				if i > 0 && first[i-1].Score < s.Score {
					t.Errorf("scores not descending at %d", i)
				}
			}
		}
	}

	perfect := Rank(profiles[1], testPaths(), DefaultWeights)
	if perfect[0].Score != 100 {
		t.Errorf("expected full match to score 100, got %d", perfect[0].Score)
	}
}

func TestTop(t *testing.T) {
	scores := Rank(models.Profile{}, testPaths(), DefaultWeights)
	if len(Top(scores, 2)) != 2 {
		t.Error("expected 2 results")
	}
	if len(Top(scores, 10)) != 3 {
		t.Error("expected all results when n exceeds length")
	}
}
