package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Avatar   *string `json:"avatar,omitempty"`
	Role     string  `json:"role,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type UpdateUserRequest struct {
	Name   string  `json:"name,omitempty"`
	Email  string  `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	Role   string  `json:"role,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type SearchRequest struct {
	SearchTerm string `json:"search_term"`
	SortBy     string `json:"sort_by"`
	OrderBy    string `json:"order_by"`
	Page       int64  `json:"page"`
	PageSize   int64  `json:"page_size"`
}
