package profiles

import "github.com/campushq/campus-console/internal/permission"

type CreateProfileRequest struct {
	Code       string                    `json:"code" validate:"required,max=50"`
	Name       string                    `json:"name" validate:"required,max=200"`
	TenantID   *int64                    `json:"tenant_id,omitempty" validate:"omitempty,gt=0"`
	Scope      string                    `json:"scope" validate:"max=100"`
	Categories map[string]permission.Set `json:"categories"`
}

type UpdateProfileRequest struct {
	Name       string                    `json:"name" validate:"required,max=200"`
	Scope      string                    `json:"scope" validate:"max=100"`
	Categories map[string]permission.Set `json:"categories"`
}
