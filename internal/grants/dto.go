package grants

type AssignRequest struct {
	ModuleIDs   []int64 `json:"module_ids" validate:"omitempty,dive,gt=0"`
	CategoryIDs []int64 `json:"category_ids" validate:"omitempty,dive,gt=0"`
}

type EditPermissionsRequest struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
	Export bool `json:"export"`
}
