package users

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users", h.List)
	r.Get("/users/{id}", h.Show)
	r.Put("/users/{id}/profile", h.SetProfile)
}
