package profiles

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profiles", h.List)
	r.Post("/profiles", h.Create)
	r.Put("/profiles/{id}", h.Update)
}
