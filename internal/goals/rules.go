// Package goals holds the derived-state rules of a goal: status derived
// from the checklist, progress percentage, and the checklist mutations
// that feed them. Nothing here touches storage; callers recompute and
// persist explicitly.
package goals

import (
	"math"
	"strings"

	"github.com/starford/metas/internal/models"
)

// DeriveStatus returns the status implied by checklist. An empty checklist
// implies nothing, so current is returned unchanged.
func DeriveStatus(checklist []models.ChecklistItem, current models.Status) models.Status {
	if len(checklist) == 0 {
		return current
	}
	done := countDone(checklist)
	switch {
	case done == len(checklist):
		return models.StatusCompleted
	case done > 0:
		return models.StatusInProgress
	default:
		return models.StatusPending
	}
}

// Recompute brings g.Status in line with its checklist. It must run after
// every checklist mutation and before the goal is persisted. When the
// checklist is empty the status stays whatever it was last set to,
// including a status derived before the last item was removed.
func Recompute(g *models.Goal) {
	g.Status = DeriveStatus(g.Checklist, g.Status)
}

// Progress returns the completion percentage of g in [0, 100].
func Progress(g models.Goal) float64 {
	if len(g.Checklist) == 0 {
		if g.Status == models.StatusCompleted {
			return 100
		}
		return 0
	}
	return 100 * float64(countDone(g.Checklist)) / float64(len(g.Checklist))
}

// ProgressPercent is Progress rounded to a whole percentage for display.
func ProgressPercent(g models.Goal) int {
	return int(math.Round(Progress(g)))
}

// AddItem appends an unchecked item. Blank text is ignored and reported
// as false.
func AddItem(g *models.Goal, id int64, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	g.Checklist = append(g.Checklist, models.ChecklistItem{ID: id, Text: text})
	return true
}

// ToggleItem flips the done flag of the item with itemID.
func ToggleItem(g *models.Goal, itemID int64) bool {
	for i := range g.Checklist {
		if g.Checklist[i].ID == itemID {
			g.Checklist[i].Done = !g.Checklist[i].Done
			return true
		}
	}
	return false
}

// RemoveItem deletes the item with itemID, keeping the order of the rest.
func RemoveItem(g *models.Goal, itemID int64) bool {
	for i := range g.Checklist {
		if g.Checklist[i].ID == itemID {
			g.Checklist = append(g.Checklist[:i:i], g.Checklist[i+1:]...)
			return true
		}
	}
	return false
}

// AppendSteps adds suggested steps as unchecked items, drawing one id from
// next per step actually added. Returns how many were added.
func AppendSteps(g *models.Goal, next func() int64, steps []string) int {
	added := 0
	for _, step := range steps {
		step = strings.TrimSpace(step)
		if step == "" {
			continue
		}
		g.Checklist = append(g.Checklist, models.ChecklistItem{ID: next(), Text: step})
		added++
	}
	return added
}

// HasItem reports whether the checklist contains itemID.
func HasItem(g models.Goal, itemID int64) bool {
	for _, it := range g.Checklist {
		if it.ID == itemID {
			return true
		}
	}
	return false
}

func countDone(checklist []models.ChecklistItem) int {
	n := 0
	for _, it := range checklist {
		if it.Done {
			n++
		}
	}
	return n
}
