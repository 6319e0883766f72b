package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

// AuthService implements registration, login and logout.
type AuthService struct {
	store       ports.Store
	hasher      ports.PasswordHasher
	sessions    *SessionManager
	defaultRole string
	log         zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(store ports.Store, hasher ports.PasswordHasher, sessions *SessionManager, defaultRole string, log zerolog.Logger) *AuthService {
	if defaultRole == "" {
		defaultRole = domain.DefaultRoleName
	}
	return &AuthService{
		store:       store,
		hasher:      hasher,
		sessions:    sessions,
		defaultRole: defaultRole,
		log:         log,
	}
}

// Register opens an active account holding the default role. When the default
// role does not exist the account is created without a role.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrMissingFields
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		if _, err := r.Users().FindByEmail(ctx, in.Email); err == nil {
			return domain.ErrEmailExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		role, err := r.Roles().FindByName(ctx, s.defaultRole)
		switch {
		case err == nil:
			user.RoleID = &role.ID
			user.Role = role
		case errors.Is(err, domain.ErrRoleNotFound):
			s.log.Warn().Str("role", s.defaultRole).Msg("default role missing, registering without role")
		default:
			return err
		}

		return r.Users().Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			return nil, domain.ErrEmailExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies the credentials and issues a new session token. Unknown email,
// wrong password and inactive account all yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user *domain.User
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var findErr error
		user, findErr = r.Users().FindByEmail(ctx, email)
		return findErr
	})
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", fmt.Errorf("login: %w", err)
		}
		s.hasher.Verify(password, s.fallbackHash())
		return "", domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) || !user.IsActive {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", err
	}
	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	return token, nil
}

// Logout invalidates exactly token; other sessions of the same user survive.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Invalidate(ctx, token)
}

// fallbackHash is compared against when the email is unknown so that the
// response time does not reveal whether an account exists.
func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.log.Error().Err(err).Msg("compute fallback hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
