package handler

import "github.com/tokengate/rbac-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// --- Auth ---

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// --- Users ---

type updateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=100"`
}

// userView is the public representation of an account. The password hash is
// never exposed.
type userView struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	IsActive  bool    `json:"is_active"`
	Role      *string `json:"role"`
}

func newUserView(u *domain.User) userView {
	return userView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsActive:  u.IsActive,
		Role:      u.RoleName(),
	}
}

// --- Admin ---

type createRoleRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type createPermissionRequest struct {
	RoleID   int64  `json:"role_id"  validate:"required,gt=0"`
	Resource string `json:"resource" validate:"required,max=100"`
	Action   string `json:"action"   validate:"required,max=100"`
}

type permissionResponse struct {
	ID       int64  `json:"id"`
	RoleID   int64  `json:"role_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

type changeUserRoleRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
	RoleID int64 `json:"role_id" validate:"required,gt=0"`
}

// --- Items ---

type itemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
