package view

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/metas/internal/apperr"
	"github.com/starford/metas/internal/models"
)

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func goal(id int64, minutes int, status models.Status, category string) models.Goal {
	return models.Goal{
		ID:        id,
		Title:     "g",
		Status:    status,
		Category:  category,
		CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
	}
}

func ids(gs []models.Goal) []int64 {
	out := make([]int64, len(gs))
	for i, g := range gs {
		out[i] = g.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortByRecency(t *testing.T) {
	in := []models.Goal{
		goal(1, 0, models.StatusPending, "a"),
		goal(2, 10, models.StatusPending, "a"),
		goal(3, 5, models.StatusPending, "a"),
		goal(4, 10, models.StatusPending, "a"),
	}
	got := ids(SortByRecency(in))
	want := []int64{2, 4, 3, 1}
	if !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if in[0].ID != 1 || in[1].ID != 2 {
		t.Error("SortByRecency reordered its input")
	}
}

func TestFilterByView(t *testing.T) {
	all := []models.Goal{
		goal(1, 0, models.StatusPending, "Work"),
		goal(2, 0, models.StatusCompleted, "Work"),
		goal(3, 0, models.StatusInProgress, "Health"),
		goal(4, 0, models.StatusCompleted, "Health"),
	}
	cases := []struct {
		mode     Mode
		category string
		want     []int64
	}{
		{ModeActive, AllCategories, []int64{1, 3}},
		{ModeArchived, AllCategories, []int64{2, 4}},
		{ModeActive, "Work", []int64{1}},
		{ModeArchived, "Health", []int64{4}},
		{ModeActive, "Nope", []int64{}},
		{ModeActive, "work", []int64{}},
	}
	for _, tc := range cases {
		got := ids(FilterByView(all, tc.mode, tc.category))
		if !equalIDs(got, tc.want) {
			t.Errorf("FilterByView(%s, %q) = %v, want %v", tc.mode, tc.category, got, tc.want)
		}
	}
}

func TestActiveAndArchivedPartition(t *testing.T) {
	var all []models.Goal
	statuses := []models.Status{models.StatusPending, models.StatusInProgress, models.StatusCompleted}
	for i := 0; i < 30; i++ {
		all = append(all, goal(int64(i), i, statuses[i%3], "c"))
	}
	active := FilterByView(all, ModeActive, AllCategories)
	archived := FilterByView(all, ModeArchived, AllCategories)
	if len(active)+len(archived) != len(all) {
		t.Fatalf("partition sizes %d + %d != %d", len(active), len(archived), len(all))
	}
	seen := map[int64]bool{}
	for _, g := range append(active, archived...) {
		if seen[g.ID] {
			t.Fatalf("goal %d in both views", g.ID)
		}
		seen[g.ID] = true
	}
}

func TestListCategories(t *testing.T) {
	all := []models.Goal{
		goal(1, 0, models.StatusPending, "Work"),
		goal(2, 0, models.StatusPending, "Health"),
		goal(3, 0, models.StatusPending, "Work"),
	}
	got := ListCategories(all)
	want := []string{"All", "Work", "Health"}
	if len(got) != len(want) {
		t.Fatalf("categories = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("categories = %v, want %v", got, want)
		}
	}

	all = append(all, goal(4, 0, models.StatusPending, "Travel"))
	if got := ListCategories(all); len(got) != 4 || got[3] != "Travel" {
		t.Errorf("new category not picked up: %v", got)
	}
	if got := ListCategories(nil); len(got) != 1 || got[0] != AllCategories {
		t.Errorf("empty = %v", got)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeActive, "active": ModeActive, "Archived": ModeArchived} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	_, err := ParseMode("deleted")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestListCategoriesDoesNotRepeatAll(t *testing.T) {
	all := []models.Goal{
		goal(1, 0, models.StatusPending, AllCategories),
		goal(2, 0, models.StatusPending, "Work"),
	}
	got := ListCategories(all)
	if len(got) != 2 || got[0] != AllCategories || got[1] != "Work" {
		t.Errorf("categories = %v, want [All Work]", got)
	}
}
