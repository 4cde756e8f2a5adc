package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/metas/internal/apperr"
	"github.com/starford/metas/internal/goalservice"
	"github.com/starford/metas/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *goalservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *goalservice.Service) *Handler {
	return &Handler{svc: svc}
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, apperr.Invalid("invalid " + name)
	}
	return id, nil
}

// ListGoals handles GET /goals.
//
//	@Summary		List goals for a view and category
//	@Tags			goals
//	@Produce		json
//	@Param			view		query		string	false	"View"	Enums(active, archived)
//	@Param			category	query		string	false	"Category, or All"
//	@Success		200			{object}	BoardResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals [get]
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	board, err := h.svc.List(r.Context(), goalservice.ListQuery{
		View:     q.Get("view"),
		Category: q.Get("category"),
	})
	if err != nil {
		writeError(w, "list goals", err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// GetGoal handles GET /goals/{id}.
//
//	@Summary		Get a goal
//	@Tags			goals
//	@Produce		json
//	@Param			id	path		int	true	"Goal id"
//	@Success		200	{object}	GoalResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/{id} [get]
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "get goal", err)
		return
	}
	g, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get goal", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Decorate(g))
}

// CreateGoal handles POST /goals.
//
//	@Summary		Create a goal
//	@Tags			goals
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GoalRequest	true	"Goal to create"
//	@Success		201		{object}	GoalResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals [post]
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	f, err := req.Fields()
	if err != nil {
		writeError(w, "create goal", err)
		return
	}
	g, err := h.svc.Create(r.Context(), f)
	if err != nil {
		writeError(w, "create goal", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.svc.Decorate(g))
}

// UpdateGoal handles PUT /goals/{id}.
//
//	@Summary		Replace the editable fields of a goal
//	@Tags			goals
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int			true	"Goal id"
//	@Param			body	body		GoalRequest	true	"Goal fields"
//	@Success		200		{object}	GoalResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/{id} [put]
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "update goal", err)
		return
	}
	var req GoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	f, err := req.Fields()
	if err != nil {
		writeError(w, "update goal", err)
		return
	}
	g, err := h.svc.Update(r.Context(), id, f)
	if err != nil {
		writeError(w, "update goal", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Decorate(g))
}

// DeleteGoal handles DELETE /goals/{id}. Deleting a missing goal succeeds.
//
//	@Summary		Delete a goal
//	@Tags			goals
//	@Param			id	path	int	true	"Goal id"
//	@Success		204	"Goal deleted"
//	@Security		BearerAuth
//	@Router			/goals/{id} [delete]
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "delete goal", err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, "delete goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /goals/{id}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "add item", err)
		return
	}
	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.svc.AddItem(r.Context(), id, req.Text)
	if err != nil {
		writeError(w, "add item", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.svc.Decorate(g))
}

// ToggleItem handles PATCH /goals/{id}/items/{itemID}/toggle.
func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	h.itemOp(w, r, "toggle item", h.svc.ToggleItem)
}

// RemoveItem handles DELETE /goals/{id}/items/{itemID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.itemOp(w, r, "remove item", h.svc.RemoveItem)
}

type itemFunc func(ctx context.Context, id, itemID int64) (models.Goal, error)

func (h *Handler) itemOp(w http.ResponseWriter, r *http.Request, op string, fn itemFunc) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, op, err)
		return
	}
	itemID, err := idParam(r, "itemID")
	if err != nil {
		writeError(w, op, err)
		return
	}
	g, err := fn(r.Context(), id, itemID)
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Decorate(g))
}

// ApplySuggestions handles POST /goals/{id}/suggestions.
//
//	@Summary		Append AI-suggested steps to a goal
//	@Tags			suggestions
//	@Produce		json
//	@Param			id	path		int	true	"Goal id"
//	@Success		200	{object}	GoalResponse
//	@Failure		404	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/{id}/suggestions [post]
func (h *Handler) ApplySuggestions(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "apply suggestions", err)
		return
	}
	g, err := h.svc.ApplySuggestions(r.Context(), id)
	if err != nil {
		writeError(w, "apply suggestions", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Decorate(g))
}

// Suggest handles POST /suggestions.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	steps, err := h.svc.Suggest(r.Context(), req.Title, req.Description)
	if err != nil {
		writeError(w, "suggest", err)
		return
	}
	if steps == nil {
		steps = []string{}
	}
	writeJSON(w, http.StatusOK, SuggestResponse{Steps: steps})
}

// Categories handles GET /categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: h.svc.Categories(r.Context())})
}
