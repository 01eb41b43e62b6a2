package grants

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users/{id}/grants", h.List)
	r.Get("/users/{id}/grants/stats", h.Stats)
	r.Post("/users/{id}/grants", h.Assign)
	r.Delete("/users/{id}/grants/{moduleID}", h.Revoke)
	r.Put("/users/{id}/grants/{moduleID}/permissions", h.EditPermissions)
}
