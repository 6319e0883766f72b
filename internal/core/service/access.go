package service

import (
	"context"
	"fmt"

	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

// Access implements ports.AccessEvaluator as a pure allow-list: a request is
// allowed only when the user's role holds an exact (resource, action) grant.
type Access struct {
	store ports.Store
}

func NewAccess(store ports.Store) *Access {
	return &Access{store: store}
}

func (a *Access) Authorize(ctx context.Context, user *domain.User, resource, action string) (*domain.User, error) {
	if user == nil || user.RoleID == nil {
		return nil, domain.ErrNoRoleAssigned
	}

	var allowed bool
	err := a.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var existsErr error
		allowed, existsErr = r.Permissions().Exists(ctx, *user.RoleID, resource, action)
		return existsErr
	})
	if err != nil {
		return nil, fmt.Errorf("authorize %s/%s: %w", resource, action, err)
	}
	if !allowed {
		return nil, domain.ErrPermissionDenied
	}
	return user, nil
}
