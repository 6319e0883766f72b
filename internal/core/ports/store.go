package ports

import (
	"context"

	"github.com/tokengate/rbac-api/internal/core/domain"
)

// UserRepository persists accounts. Lookups load the user's role.
type UserRepository interface {
	// Create inserts the user and sets its ID. Returns domain.ErrEmailExists when
	// the email is taken.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update writes names, active flag and role reference.
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]*domain.User, error)
}

// SessionRepository persists session tokens.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// FindByToken is an exact-match lookup. Returns domain.ErrSessionNotFound.
	FindByToken(ctx context.Context, token string) (*domain.Session, error)
	// DeleteByToken removes the matching session; a missing token is not an error.
	DeleteByToken(ctx context.Context, token string) error
}

// RoleRepository persists roles.
type RoleRepository interface {
	// Create inserts the role and sets its ID. Returns domain.ErrRoleExists on a
	// duplicate name.
	Create(ctx context.Context, role *domain.Role) error
	FindByID(ctx context.Context, id int64) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
}

// PermissionRepository persists (role, resource, action) grants.
type PermissionRepository interface {
	Create(ctx context.Context, perm *domain.Permission) error
	// Exists reports whether at least one grant matches exactly.
	Exists(ctx context.Context, roleID int64, resource, action string) (bool, error)
	// Delete removes the grant. Returns domain.ErrPermissionMissing.
	Delete(ctx context.Context, id int64) error
}

// Repositories is the set of repositories bound to one transaction.
type Repositories interface {
	Users() UserRepository
	Sessions() SessionRepository
	Roles() RoleRepository
	Permissions() PermissionRepository
}

// Store is the transactional persistence layer. Every logical operation runs
// inside exactly one Tx call; the transaction is committed when fn returns nil
// and rolled back on error or panic.
type Store interface {
	Tx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// SessionCache is an optional read-through cache of token → user id.
type SessionCache interface {
	Get(ctx context.Context, token string) (userID int64, ok bool, err error)
	Set(ctx context.Context, token string, userID int64) error
	Delete(ctx context.Context, token string) error
}
