package ports

import (
	"context"

	"github.com/tokengate/rbac-api/internal/core/domain"
)

// RegisterInput carries the fields needed to open an account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateProfileInput is a partial update: nil fields are left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

// AuthService covers the account lifecycle seen by an anonymous or
// self-authenticated caller.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

// ProfileService mutates the authenticated user's own account.
type ProfileService interface {
	UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) error
	Deactivate(ctx context.Context, userID int64) error
}

// IdentityResolver turns a session token into the authenticated user.
type IdentityResolver interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AccessEvaluator decides whether a user may perform action on resource.
type AccessEvaluator interface {
	Authorize(ctx context.Context, user *domain.User, resource, action string) (*domain.User, error)
}

// AdminService mutates roles, permissions and role assignments. Every method
// takes the acting user and rejects non-admins with domain.ErrAdminOnly.
type AdminService interface {
	CreateRole(ctx context.Context, actor *domain.User, name string) (bool, error)
	CreatePermission(ctx context.Context, actor *domain.User, roleID int64, resource, action string) (*domain.Permission, error)
	DeletePermission(ctx context.Context, actor *domain.User, permissionID int64) error
	ChangeUserRole(ctx context.Context, actor *domain.User, userID, roleID int64) error
	ListUsers(ctx context.Context, actor *domain.User) ([]*domain.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
