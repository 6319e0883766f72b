package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

// Identity implements ports.IdentityResolver.
type Identity struct {
	store    ports.Store
	sessions *SessionManager
}

func NewIdentity(store ports.Store, sessions *SessionManager) *Identity {
	return &Identity{store: store, sessions: sessions}
}

// Authenticate returns the active user owning token. The user's active flag is
// read on every call, so deactivation takes effect without touching sessions.
func (i *Identity) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	session, err := i.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	var user *domain.User
	err = i.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var findErr error
		user, findErr = r.Users().FindByID(ctx, session.UserID)
		return findErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInactiveUser
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}
