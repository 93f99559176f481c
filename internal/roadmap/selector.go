// Package roadmap selects roadmap templates for a profile and tracks
// milestone completion on the resulting roadmaps.
package roadmap

import (
	"sort"

	"github.com/terra-clan/pathway-engine/internal/models"
)

// policy decides how many matching rules contribute roadmaps
type policy int

const (
	// selectAll returns every matching template as an alternative
	selectAll policy = iota
	// selectFirst returns only the highest priority match
	selectFirst
)

var modePolicies = map[models.Mode]policy{
	models.ModeCareer:    selectAll,
	models.ModeEducation: selectFirst,
}

type rule struct {
	template  models.RoadmapTemplate
	levels    map[string]struct{}
	skills    map[string]struct{}
	interests map[string]struct{}
}

// DecisionTable holds the branch rules of a template catalog keyed by mode,
// each mode's rules in evaluation order.
type DecisionTable struct {
	rules map[models.Mode][]rule
}

// NewDecisionTable orders templates by priority, keeping catalog order on ties
func NewDecisionTable(templates []models.RoadmapTemplate) *DecisionTable {
	t := &DecisionTable{rules: make(map[models.Mode][]rule)}
	for _, tmpl := range templates {
		mode := tmpl.Applies.Mode
		levels := make(map[string]struct{}, len(tmpl.Applies.Levels))
		for _, l := range tmpl.Applies.Levels {
			levels[l] = struct{}{}
		}
		t.rules[mode] = append(t.rules[mode], rule{
			template:  tmpl,
			levels:    levels,
			skills:    models.FoldSet(tmpl.Applies.AnySkills),
			interests: models.FoldSet(tmpl.Applies.AnyInterests),
		})
	}
	for mode := range t.rules {
		rules := t.rules[mode]
		sort.SliceStable(rules, func(i, j int) bool {
			return rules[i].template.Priority < rules[j].template.Priority
		})
	}
	return t
}

// Select returns freshly instantiated roadmaps for every applicable template.
// An empty result means no recommendation is available.
func (t *DecisionTable) Select(profile models.Profile) []models.Roadmap {
	pol, ok := modePolicies[profile.Mode]
	if !ok {
		return []models.Roadmap{}
	}

	out := make([]models.Roadmap, 0, 2)
	for _, r := range t.rules[profile.Mode] {
		if !r.matches(profile) {
			continue
		}
		out = append(out, Instantiate(r.template))
		if pol == selectFirst {
			break
		}
	}
	return out
}

// Select builds a decision table for templates and evaluates it once
func Select(profile models.Profile, templates []models.RoadmapTemplate) []models.Roadmap {
	return NewDecisionTable(templates).Select(profile)
}

func (r rule) matches(p models.Profile) bool {
	if len(r.levels) > 0 {
		if _, ok := r.levels[p.Level]; !ok {
			return false
		}
	}
	if len(r.skills) == 0 && len(r.interests) == 0 {
		return true
	}
	return intersects(r.skills, p.Skills) || intersects(r.interests, p.Interests)
}

func intersects(set map[string]struct{}, items []string) bool {
	for _, item := range items {
		if _, ok := set[models.Fold(item)]; ok {
			return true
		}
	}
	return false
}

// Instantiate creates a roadmap from a template. Milestones keep the
// template's initial state, which may already be completed.
func Instantiate(tmpl models.RoadmapTemplate) models.Roadmap {
	milestones := make([]models.Milestone, len(tmpl.Milestones))
	for i, m := range tmpl.Milestones {
		milestones[i] = m.Clone()
		if !milestones[i].State.IsValid() {
			milestones[i].State = models.StatePending
		}
	}
	return models.Roadmap{
		ID:         tmpl.ID,
		TemplateID: tmpl.ID,
		Title:      tmpl.Title,
		Milestones: milestones,
	}
}
