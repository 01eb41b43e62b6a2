package plans

type SetPlanModulesRequest struct {
	ModuleIDs []int64 `json:"module_ids" validate:"required,dive,gt=0"`
}

type ListInvoicesResponse struct {
	Invoices []Invoice `json:"invoices"`
	Total    int       `json:"total"`
}
