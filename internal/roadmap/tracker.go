package roadmap

import (
	"errors"
	"fmt"

	"github.com/terra-clan/pathway-engine/internal/models"
)

// ErrMilestoneNotFound is returned when a milestone id is not in the roadmap
var ErrMilestoneNotFound = errors.New("milestone not found")

// AllCompleteTitle is shown as the next milestone once nothing is pending
const AllCompleteTitle = "All Complete!"

// Toggle flips one milestone between pending and completed.
// The input roadmap is left untouched.
func Toggle(r models.Roadmap, milestoneID string) (models.Roadmap, error) {
	idx := r.IndexOf(milestoneID)
	if idx < 0 {
		return models.Roadmap{}, fmt.Errorf("%w: %q in roadmap %q", ErrMilestoneNotFound, milestoneID, r.ID)
	}

	next := r.Clone()
	next.Milestones[idx].State = next.Milestones[idx].State.Toggled()
	return next, nil
}

// NextMilestone is the first pending milestone, or AllComplete
type NextMilestone struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	AllComplete bool   `json:"all_complete"`
}

// Summary is the progress aggregate of a roadmap
type Summary struct {
	CompletedCount     int           `json:"completed_count"`
	Total              int           `json:"total"`
	ProgressPercentage int           `json:"progress_percentage"`
	Next               NextMilestone `json:"next_milestone"`
}

// Summarize counts completed milestones and finds the next pending one
func Summarize(r models.Roadmap) Summary {
	s := Summary{
		Total: len(r.Milestones),
		Next:  NextMilestone{Title: AllCompleteTitle, AllComplete: true},
	}
	found := false
	for _, m := range r.Milestones {
		if m.IsCompleted() {
			s.CompletedCount++
			continue
		}
		if !found {
			s.Next = NextMilestone{ID: m.ID, Title: m.Title}
			found = true
		}
	}
	s.ProgressPercentage = models.Percentage(s.CompletedCount, s.Total)
	return s
}

// Board splits milestones into kanban columns, keeping timeline order
type Board struct {
	Pending   []models.Milestone `json:"pending"`
	Completed []models.Milestone `json:"completed"`
}

// NewBoard builds the kanban view of r
func NewBoard(r models.Roadmap) Board {
	b := Board{
		Pending:   make([]models.Milestone, 0, len(r.Milestones)),
		Completed: make([]models.Milestone, 0, len(r.Milestones)),
	}
	for _, m := range r.Milestones {
		if m.IsCompleted() {
			b.Completed = append(b.Completed, m)
		} else {
			b.Pending = append(b.Pending, m)
		}
	}
	return b
}
