// Package view selects and orders the goals a list shows.
package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/metas/internal/apperr"
	"github.com/starford/metas/internal/models"
)

// Mode picks active or archived goals.
type Mode string

const (
	ModeActive   Mode = "active"
	ModeArchived Mode = "archived"
)

// AllCategories is the synthetic category that disables category filtering.
const AllCategories = "All"

// ParseMode maps a query value to a Mode. Empty means active.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeActive:
		return ModeActive, nil
	case ModeArchived:
		return ModeArchived, nil
	}
	return "", apperr.Invalid(fmt.Sprintf("unknown view %q: want %q or %q", s, ModeActive, ModeArchived))
}

// SortByRecency returns a copy of all ordered by creation time, newest
// first. Goals created at the same instant keep their input order.
func SortByRecency(all []models.Goal) []models.Goal {
	out := slices.Clone(all)
	slices.SortStableFunc(out, func(a, b models.Goal) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// FilterByView keeps goals matching both the view mode and the category.
func FilterByView(all []models.Goal, mode Mode, category string) []models.Goal {
	out := make([]models.Goal, 0, len(all))
	for _, g := range all {
		archived := g.Status == models.StatusCompleted
		if archived != (mode == ModeArchived) {
			continue
		}
		if category != AllCategories && g.Category != category {
			continue
		}
		out = append(out, g)
	}
	return out
}

// ListCategories returns AllCategories followed by each distinct category
// in order of first appearance. It is derived from all on every call.
func ListCategories(all []models.Goal) []string {
	out := []string{AllCategories}
	seen := map[string]struct{}{AllCategories: {}}
	for _, g := range all {
		if _, ok := seen[g.Category]; ok {
			continue
		}
		seen[g.Category] = struct{}{}
		out = append(out, g.Category)
	}
	return out
}
