package roadmap

import "github.com/terra-clan/pathway-engine/internal/models"

func milestones(ids ...string) []models.Milestone {
	out := make([]models.Milestone, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Milestone{
			ID:       id,
			Title:    id,
			Priority: models.PriorityHigh,
			State:    models.StatePending,
			Skills:   []string{"skill-" + id},
		})
	}
	return out
}

func titled(ms []models.Milestone, titles ...string) []models.Milestone {
	for i := range ms {
		ms[i].Title = titles[i]
	}
	return ms
}

func testTemplates() []models.RoadmapTemplate {
	return []models.RoadmapTemplate{
		{
			ID:       "science-stream",
			Title:    "Science Stream",
			Priority: 10,
			Applies:  models.Applicability{Mode: models.ModeEducation, Levels: []string{"After 10th Grade"}},
			Milestones: titled(milestones("e1", "e2", "e3"),
				"Choose Science Stream", "Prepare for Entrance Exams", "College Selection & Admission"),
		},
		{
			ID:         "commerce-stream",
			Title:      "Commerce Stream",
			Priority:   20,
			Applies:    models.Applicability{Mode: models.ModeEducation, Levels: []string{"After 10th Grade"}},
			Milestones: milestones("e9"),
		},
		{
			ID:       "engineering",
			Title:    "Engineering",
			Priority: 10,
			Applies:  models.Applicability{Mode: models.ModeEducation, Levels: []string{"After 12th Grade"}},
			Milestones: titled(milestones("e4", "e5"),
				"B.Tech Computer Science", "Specialization & Internships"),
		},
		{
			ID:       "data-science",
			Title:    "Data Science",
			Priority: 10,
			Applies: models.Applicability{
				Mode:         models.ModeCareer,
				AnySkills:    []string{"Programming"},
				AnyInterests: []string{"Technology"},
			},
			Milestones: titled(milestones("c1", "c2", "c3"),
				"Foundation Skills", "Data Analysis & Visualization", "Machine Learning"),
		},
		{
			ID:       "frontend",
			Title:    "Frontend Developer",
			Priority: 20,
			Applies: models.Applicability{
				Mode:         models.ModeCareer,
				AnySkills:    []string{"Programming", "Design"},
				AnyInterests: []string{"Technology"},
			},
			Milestones: titled(milestones("c4", "c5"), "Web Fundamentals", "Modern Frontend"),
		},
		{
			ID:       "product-manager",
			Title:    "Product Manager",
			Priority: 30,
			Applies: models.Applicability{
				Mode:         models.ModeCareer,
				AnySkills:    []string{"Leadership", "Project Management"},
				AnyInterests: []string{"Business"},
			},
			Milestones: milestones("p1", "p2"),
		},
	}
}

func titles(r models.Roadmap) []string {
	out := make([]string, 0, len(r.Milestones))
	for _, m := range r.Milestones {
		out = append(out, m.Title)
	}
	return out
}
