package api

import (
	"strings"

	"github.com/starford/metas/internal/apperr"
	"github.com/starford/metas/internal/goalservice"
	"github.com/starford/metas/internal/models"
)

// GoalRequest is the body for creating or replacing a goal. Field names
// match the stored goal shape.
type GoalRequest struct {
	Title       string                 `json:"titulo" example:"Correr 10 km" validate:"required"`
	Description string                 `json:"descricao" example:"Antes do verão"`
	Status      models.Status          `json:"status" example:"Pendente"`
	DueDate     string                 `json:"prazoFinal" example:"2025-12-31"`
	Category    string                 `json:"categoria" example:"Saúde"`
	Checklist   []models.ChecklistItem `json:"submetas"`
}

// Fields converts the request into service input.
func (r GoalRequest) Fields() (models.Fields, error) {
	f := models.Fields{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Category:    r.Category,
		Checklist:   r.Checklist,
	}
	if strings.TrimSpace(r.DueDate) != "" {
		d, err := models.ParseDate(r.DueDate)
		if err != nil {
			return models.Fields{}, apperr.Invalid(err.Error())
		}
		f.DueDate = &d
	}
	return f, nil
}

// AddItemRequest is the body for adding a checklist step.
type AddItemRequest struct {
	Text string `json:"texto" example:"Comprar tênis" validate:"required"`
}

// SuggestRequest asks for steps without touching any stored goal.
type SuggestRequest struct {
	Title       string `json:"titulo" validate:"required"`
	Description string `json:"descricao"`
}

// SuggestResponse carries suggested steps.
type SuggestResponse struct {
	Steps []string `json:"steps" validate:"required"`
}

// CategoriesResponse lists the category filter options.
type CategoriesResponse struct {
	Categories []string `json:"categories" validate:"required"`
}

// GoalResponse is a goal with its progress and deadline label.
type GoalResponse = goalservice.GoalView

// BoardResponse is the list screen payload.
type BoardResponse = goalservice.Board
