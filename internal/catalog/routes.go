package catalog

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/tenants/{tenantID}/catalog/modules", h.ListModules)
	r.Get("/tenants/{tenantID}/catalog/categories", h.ListCategories)
}
