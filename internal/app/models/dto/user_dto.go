package dto

// UpdateProfileRequest updates the caller's own profile.
type UpdateProfileRequest struct {
	FullName string `json:"fullName" binding:"required,max=120"`
	Branch   string `json:"branch" binding:"required,max=80"`
	Year     int    `json:"year" binding:"required,min=1,max=6"`
}

// UpdateUserRoleRequest changes a user's role (admin only).
type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=USER ADMIN"`
}

// UpdateUserStatusRequest suspends or reactivates an account (admin only).
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE SUSPENDED"`
}

// UserListResponse is a paginated user listing.
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
}
