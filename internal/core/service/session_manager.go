package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

// SessionManager creates, resolves and invalidates session tokens.
type SessionManager struct {
	store ports.Store
	cache ports.SessionCache
	log   zerolog.Logger
}

// NewSessionManager returns a SessionManager. cache may be nil.
func NewSessionManager(store ports.Store, cache ports.SessionCache, log zerolog.Logger) *SessionManager {
	if cache == nil {
		cache = nopSessionCache{}
	}
	return &SessionManager{store: store, cache: cache, log: log}
}

// Create issues a new random token for userID. Existing sessions are untouched.
func (m *SessionManager) Create(ctx context.Context, userID int64) (string, error) {
	session := &domain.Session{
		UserID:    userID,
		Token:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	err := m.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		return r.Sessions().Create(ctx, session)
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	if err := m.cache.Set(ctx, session.Token, userID); err != nil {
		m.log.Warn().Err(err).Int64("user_id", userID).Msg("session cache write failed")
	}
	return session.Token, nil
}

// Invalidate deletes the session holding exactly token. Unknown tokens are ignored.
// The cache entry goes first: if it cannot be evicted the store row is kept and
// the error is returned, so a cached token never outlives a successful logout.
func (m *SessionManager) Invalidate(ctx context.Context, token string) error {
	if err := m.cache.Delete(ctx, token); err != nil {
		return fmt.Errorf("evict cached session: %w", err)
	}

	err := m.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		return r.Sessions().DeleteByToken(ctx, token)
	})
	if err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// Resolve looks up the session for token. Returns domain.ErrSessionNotFound.
// A cache hit carries only UserID and Token; ID and CreatedAt are zero.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	userID, ok, err := m.cache.Get(ctx, token)
	if err != nil {
		m.log.Warn().Err(err).Msg("session cache read failed, using store")
	} else if ok {
		return &domain.Session{UserID: userID, Token: token}, nil
	}

	var session *domain.Session
	err = m.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var findErr error
		session, findErr = r.Sessions().FindByToken(ctx, token)
		return findErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	// The cache is only filled by Create: writing it here could resurrect a token
	// that a concurrent Invalidate has just removed.
	return session, nil
}

type nopSessionCache struct{}

func (nopSessionCache) Get(context.Context, string) (int64, bool, error) { return 0, false, nil }
func (nopSessionCache) Set(context.Context, string, int64) error         { return nil }
func (nopSessionCache) Delete(context.Context, string) error             { return nil }
