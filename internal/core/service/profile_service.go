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

// ProfileService lets users edit or deactivate their own account.
type ProfileService struct {
	store ports.Store
	log   zerolog.Logger
}

func NewProfileService(store ports.Store, log zerolog.Logger) *ProfileService {
	return &ProfileService{store: store, log: log}
}

// UpdateProfile changes the names that are set in in. Email, password and role
// are not editable here.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, in ports.UpdateProfileInput) error {
	return s.modify(ctx, userID, func(u *domain.User) {
		if in.FirstName != nil {
			u.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			u.LastName = *in.LastName
		}
	})
}

// Deactivate disables the account. Existing sessions are kept but stop
// resolving, since identity checks read the active flag on every request.
func (s *ProfileService) Deactivate(ctx context.Context, userID int64) error {
	if err := s.modify(ctx, userID, func(u *domain.User) { u.IsActive = false }); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", userID).Msg("user deactivated")
	return nil
}

func (s *ProfileService) modify(ctx context.Context, userID int64, apply func(*domain.User)) error {
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		user, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		apply(user)
		user.UpdatedAt = time.Now().UTC()
		return r.Users().Update(ctx, user)
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("update user %d: %w", userID, err)
	}
	return nil
}
