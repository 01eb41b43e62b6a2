package users

import "github.com/campushq/campus-console/internal/shared"

type SetProfileRequest struct {
	AccessProfileCode *string `json:"access_profile_code" validate:"omitempty,min=1,max=50"`
}

type ListUsersResponse struct {
	Users      []User            `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}
