package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/metas/internal/goalservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events behind the same auth.
func NewRouter(svc *goalservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/goals", func(r chi.Router) {
		r.Get("/", h.ListGoals)
		r.Post("/", h.CreateGoal)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetGoal)
			r.Put("/", h.UpdateGoal)
			r.Delete("/", h.DeleteGoal)
			r.Post("/items", h.AddItem)
			r.Patch("/items/{itemID}/toggle", h.ToggleItem)
			r.Delete("/items/{itemID}", h.RemoveItem)
			r.Post("/suggestions", h.ApplySuggestions)
		})
	})

	r.Post("/suggestions", h.Suggest)
	r.Get("/categories", h.Categories)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
