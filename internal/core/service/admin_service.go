package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

// AdminService manages roles, permissions and role assignments. Only users
// holding the admin role may call it.
type AdminService struct {
	store ports.Store
	log   zerolog.Logger
}

func NewAdminService(store ports.Store, log zerolog.Logger) *AdminService {
	return &AdminService{store: store, log: log}
}

func requireAdmin(actor *domain.User) error {
	if actor == nil || !actor.IsAdmin() {
		return domain.ErrAdminOnly
	}
	return nil
}

// CreateRole reports whether a new role was created. An existing name is not
// an error.
func (s *AdminService) CreateRole(ctx context.Context, actor *domain.User, name string) (bool, error) {
	if err := requireAdmin(actor); err != nil {
		return false, err
	}

	created := false
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		if _, err := r.Roles().FindByName(ctx, name); err == nil {
			return nil
		} else if !errors.Is(err, domain.ErrRoleNotFound) {
			return err
		}
		if err := r.Roles().Create(ctx, &domain.Role{Name: name}); err != nil {
			if errors.Is(err, domain.ErrRoleExists) {
				return nil
			}
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("create role %q: %w", name, err)
	}
	if created {
		s.log.Info().Str("role", name).Int64("actor_id", actor.ID).Msg("role created")
	}
	return created, nil
}

func (s *AdminService) CreatePermission(ctx context.Context, actor *domain.User, roleID int64, resource, action string) (*domain.Permission, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	perm := &domain.Permission{RoleID: roleID, Resource: resource, Action: action}
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		if _, err := r.Roles().FindByID(ctx, roleID); err != nil {
			return err
		}
		return r.Permissions().Create(ctx, perm)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("create permission: %w", err)
	}

	s.log.Info().
		Int64("role_id", roleID).
		Str("resource", resource).
		Str("action", action).
		Int64("actor_id", actor.ID).
		Msg("permission granted")
	return perm, nil
}

func (s *AdminService) DeletePermission(ctx context.Context, actor *domain.User, permissionID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		return r.Permissions().Delete(ctx, permissionID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrPermissionMissing) {
			return domain.ErrPermissionMissing
		}
		return fmt.Errorf("delete permission %d: %w", permissionID, err)
	}
	s.log.Info().Int64("permission_id", permissionID).Int64("actor_id", actor.ID).Msg("permission removed")
	return nil
}

// ChangeUserRole assigns roleID to userID. Both must exist.
func (s *AdminService) ChangeUserRole(ctx context.Context, actor *domain.User, userID, roleID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		user, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		role, err := r.Roles().FindByID(ctx, roleID)
		if err != nil {
			return err
		}
		user.RoleID = &role.ID
		user.Role = role
		return r.Users().Update(ctx, user)
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return domain.ErrUserNotFound
		case errors.Is(err, domain.ErrRoleNotFound):
			return domain.ErrRoleNotFound
		}
		return fmt.Errorf("change role of user %d: %w", userID, err)
	}
	s.log.Info().Int64("user_id", userID).Int64("role_id", roleID).Int64("actor_id", actor.ID).Msg("user role changed")
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var users []*domain.User
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var listErr error
		users, listErr = r.Users().List(ctx)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
