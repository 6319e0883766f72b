package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

const defaultAdminPassword = "admin123"

// BootstrapOptions configures the initial data set.
type BootstrapOptions struct {
	AdminEmail      string
	AdminPassword   string
	DefaultRoleName string
}

func (o *BootstrapOptions) withDefaults() {
	if o.AdminEmail == "" {
		o.AdminEmail = domain.AdminEmail
	}
	if o.AdminPassword == "" {
		o.AdminPassword = defaultAdminPassword
	}
	if o.DefaultRoleName == "" {
		o.DefaultRoleName = domain.DefaultRoleName
	}
}

// Bootstrap ensures the admin role, the default role and the admin account
// exist. It runs in a single transaction and is safe to call on every start.
// An existing admin account keeps its password but is given the admin role.
func Bootstrap(ctx context.Context, store ports.Store, hasher ports.PasswordHasher, opts BootstrapOptions, log zerolog.Logger) error {
	opts.withDefaults()

	hash, err := hasher.Hash(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	err = store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		adminRole, err := ensureRole(ctx, r.Roles(), domain.AdminRoleName)
		if err != nil {
			return err
		}
		if _, err := ensureRole(ctx, r.Roles(), opts.DefaultRoleName); err != nil {
			return err
		}

		admin, err := r.Users().FindByEmail(ctx, opts.AdminEmail)
		switch {
		case err == nil:
			if admin.RoleID != nil && *admin.RoleID == adminRole.ID {
				return nil
			}
			admin.RoleID = &adminRole.ID
			admin.Role = adminRole
			admin.UpdatedAt = time.Now().UTC()
			return r.Users().Update(ctx, admin)
		case !errors.Is(err, domain.ErrUserNotFound):
			return err
		}

		now := time.Now().UTC()
		admin = &domain.User{
			FirstName:    "Admin",
			LastName:     "Root",
			Email:        opts.AdminEmail,
			PasswordHash: hash,
			IsActive:     true,
			RoleID:       &adminRole.ID,
			Role:         adminRole,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Users().Create(ctx, admin); err != nil {
			return err
		}
		log.Info().Str("email", opts.AdminEmail).Msg("admin account created")
		return nil
	})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

func ensureRole(ctx context.Context, roles ports.RoleRepository, name string) (*domain.Role, error) {
	role, err := roles.FindByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, domain.ErrRoleNotFound) {
		return nil, err
	}
	role = &domain.Role{Name: name}
	if err := roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}
