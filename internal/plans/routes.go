package plans

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/tenants/{tenantID}/plan", h.ShowCurrentPlan)
	r.Get("/tenants/{tenantID}/invoices", h.ListInvoices)
	r.Put("/plans/{id}/modules", h.SetModules)
}
