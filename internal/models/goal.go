// Package models defines the domain types for metas.
package models

import "time"

// Status is the tri-state progress indicator of a goal.
type Status string

// Persisted status values.
const (
	StatusPending    Status = "Pendente"
	StatusInProgress Status = "Em Andamento"
	StatusCompleted  Status = "Concluída"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the persisted status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// DefaultCategory is assigned when a goal is saved with a blank category.
const DefaultCategory = "General"

// ChecklistItem is a single step of a goal.
type ChecklistItem struct {
	ID   int64  `json:"id"`
	Text string `json:"texto"`
	Done bool   `json:"concluida"`
}

// Goal is a user-defined objective. The JSON tags are the storage contract.
type Goal struct {
	ID          int64           `json:"id"`
	Title       string          `json:"titulo"`
	Description string          `json:"descricao"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"data_criacao"`
	DueDate     *Date           `json:"prazoFinal,omitempty"`
	Category    string          `json:"categoria"`
	Checklist   []ChecklistItem `json:"submetas"`
}

// HasDueDate reports whether a due date is set.
func (g Goal) HasDueDate() bool {
	return g.DueDate != nil && !g.DueDate.IsZero()
}

// Fields are the caller-editable parts of a goal; id and creation time
// are always assigned by the system.
type Fields struct {
	Title       string          `json:"titulo"`
	Description string          `json:"descricao"`
	Status      Status          `json:"status"`
	DueDate     *Date           `json:"prazoFinal,omitempty"`
	Category    string          `json:"categoria"`
	Checklist   []ChecklistItem `json:"submetas"`
}

// Fields returns the editable part of g.
func (g Goal) Fields() Fields {
	return Fields{
		Title:       g.Title,
		Description: g.Description,
		Status:      g.Status,
		DueDate:     g.DueDate,
		Category:    g.Category,
		Checklist:   g.Checklist,
	}
}

// Apply overwrites the editable fields of g with f, leaving ID and
// CreatedAt untouched.
func (g *Goal) Apply(f Fields) {
	g.Title = f.Title
	g.Description = f.Description
	g.Status = f.Status
	g.DueDate = f.DueDate
	g.Category = f.Category
	g.Checklist = f.Checklist
}

// Clone returns a deep copy of g so callers can mutate the checklist
// without aliasing the original.
func (g Goal) Clone() Goal {
	out := g
	if g.Checklist != nil {
		out.Checklist = append([]ChecklistItem(nil), g.Checklist...)
	}
	if g.DueDate != nil {
		d := *g.DueDate
		out.DueDate = &d
	}
	return out
}
