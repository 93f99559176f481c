package catalog

import "github.com/terra-clan/pathway-engine/internal/models"

// --- YAML file structs ---

// careersFile is the structure of careers.yaml
type careersFile struct {
	Careers []struct {
		ID             string   `yaml:"id"`
		Title          string   `yaml:"title"`
		Icon           string   `yaml:"icon"`
		Description    string   `yaml:"description"`
		RequiredSkills []string `yaml:"required_skills"`
		Domains        []string `yaml:"domains"`
		DemandLevel    string   `yaml:"demand_level"`
		AvgSalary      string   `yaml:"avg_salary"`
		TimeToRole     string   `yaml:"time_to_role"`
	} `yaml:"careers"`
}

// coursesFile is the structure of courses.yaml
type coursesFile struct {
	Courses []struct {
		ID           string   `yaml:"id"`
		Title        string   `yaml:"title"`
		Provider     string   `yaml:"provider"`
		Description  string   `yaml:"description"`
		Duration     string   `yaml:"duration"`
		Rating       float64  `yaml:"rating"`
		Students     string   `yaml:"students"`
		Price        string   `yaml:"price"`
		Level        string   `yaml:"level"`
		Category     string   `yaml:"category"`
		SkillsGained []string `yaml:"skills_gained"`
		Urgency      string   `yaml:"urgency"`
	} `yaml:"courses"`
}

// achievementsFile is the structure of achievements.yaml
type achievementsFile struct {
	Achievements []struct {
		Name        string `yaml:"name"`
		Icon        string `yaml:"icon"`
		Description string `yaml:"description"`
		Unlock      struct {
			Metric  string `yaml:"metric"`
			AtLeast int    `yaml:"at_least"`
		} `yaml:"unlock"`
	} `yaml:"achievements"`
}

// templateFile is the structure of a roadmaps/*.yaml file
type templateFile struct {
	ID            string `yaml:"id"`
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	Icon          string `yaml:"icon"`
	TotalDuration string `yaml:"total_duration"`
	Priority      int    `yaml:"priority"`
	Applies       struct {
		Mode         string   `yaml:"mode"`
		Levels       []string `yaml:"levels"`
		AnySkills    []string `yaml:"any_skills"`
		AnyInterests []string `yaml:"any_interests"`
	} `yaml:"applies"`
	Milestones []milestoneFile `yaml:"milestones"`
}

type milestoneFile struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Duration    string   `yaml:"duration"`
	Objectives  []string `yaml:"objectives"`
	Courses     []string `yaml:"courses"`
	Projects    []string `yaml:"projects"`
	Skills      []string `yaml:"skills"`
	Exams       []string `yaml:"exams"`
	Priority    string   `yaml:"priority"`
	Completed   bool     `yaml:"completed"`
}

func (m milestoneFile) toModel() models.Milestone {
	state := models.StatePending
	if m.Completed {
		state = models.StateCompleted
	}
	priority := models.Priority(m.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}
	return models.Milestone{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Duration:    m.Duration,
		Objectives:  m.Objectives,
		Courses:     m.Courses,
		Projects:    m.Projects,
		Skills:      models.UniqueStrings(m.Skills),
		Exams:       m.Exams,
		Priority:    priority,
		State:       state,
	}
}
