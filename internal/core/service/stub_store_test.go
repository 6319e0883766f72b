package service

import (
	"context"
	"sync"

	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub store
// ---------------------------------------------------------------------------

type stubStore struct {
	mu     sync.Mutex
	nextID int64
	txErr  error // if set, Tx returns this error without calling fn
	txs    int

	users       map[int64]*domain.User
	sessions    map[string]*domain.Session
	roles       map[int64]*domain.Role
	permissions map[int64]*domain.Permission
}

func newStubStore() *stubStore {
	return &stubStore{
		users:       make(map[int64]*domain.User),
		sessions:    make(map[string]*domain.Session),
		roles:       make(map[int64]*domain.Role),
		permissions: make(map[int64]*domain.Permission),
	}
}

func (s *stubStore) Tx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs++
	if s.txErr != nil {
		return s.txErr
	}
	return fn(ctx, s)
}

func (s *stubStore) Migrate(context.Context) error { return nil }
func (s *stubStore) Ping(context.Context) error    { return nil }
func (s *stubStore) Close(context.Context) error   { return nil }

func (s *stubStore) Users() ports.UserRepository             { return stubUsers{s} }
func (s *stubStore) Sessions() ports.SessionRepository       { return stubSessions{s} }
func (s *stubStore) Roles() ports.RoleRepository             { return stubRoles{s} }
func (s *stubStore) Permissions() ports.PermissionRepository { return stubPermissions{s} }

func (s *stubStore) id() int64 {
	s.nextID++
	return s.nextID
}

// addRole inserts a role outside of any transaction.
func (s *stubStore) addRole(name string) *domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	role := &domain.Role{ID: s.id(), Name: name}
	s.roles[role.ID] = role
	return role
}

func (s *stubStore) grant(roleID int64, resource, action string) *domain.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	perm := &domain.Permission{ID: s.id(), RoleID: roleID, Resource: resource, Action: action}
	s.permissions[perm.ID] = perm
	return perm
}

func (s *stubStore) user(id int64) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return s.withRole(u)
}

func (s *stubStore) withRole(u *domain.User) *domain.User {
	clone := *u
	clone.Role = nil
	if u.RoleID != nil {
		if role, ok := s.roles[*u.RoleID]; ok {
			r := *role
			clone.Role = &r
		}
	}
	return &clone
}

type stubUsers struct{ s *stubStore }

func (r stubUsers) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrEmailExists
		}
	}
	user.ID = r.s.id()
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r stubUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.s.withRole(u), nil
}

func (r stubUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return r.s.withRole(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUsers) Update(_ context.Context, user *domain.User) error {
	stored, ok := r.s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.IsActive = user.IsActive
	stored.RoleID = user.RoleID
	return nil
}

func (r stubUsers) List(context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.s.users))
	for id := int64(1); id <= r.s.nextID; id++ {
		if u, ok := r.s.users[id]; ok {
			out = append(out, r.s.withRole(u))
		}
	}
	return out, nil
}

type stubSessions struct{ s *stubStore }

func (r stubSessions) Create(_ context.Context, session *domain.Session) error {
	session.ID = r.s.id()
	clone := *session
	r.s.sessions[session.Token] = &clone
	return nil
}

func (r stubSessions) FindByToken(_ context.Context, token string) (*domain.Session, error) {
	session, ok := r.s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (r stubSessions) DeleteByToken(_ context.Context, token string) error {
	delete(r.s.sessions, token)
	return nil
}

type stubRoles struct{ s *stubStore }

func (r stubRoles) Create(_ context.Context, role *domain.Role) error {
	for _, existing := range r.s.roles {
		if existing.Name == role.Name {
			return domain.ErrRoleExists
		}
	}
	role.ID = r.s.id()
	clone := *role
	r.s.roles[role.ID] = &clone
	return nil
}

func (r stubRoles) FindByID(_ context.Context, id int64) (*domain.Role, error) {
	role, ok := r.s.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *role
	return &clone, nil
}

func (r stubRoles) FindByName(_ context.Context, name string) (*domain.Role, error) {
	for _, role := range r.s.roles {
		if role.Name == name {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

type stubPermissions struct{ s *stubStore }

func (r stubPermissions) Create(_ context.Context, perm *domain.Permission) error {
	perm.ID = r.s.id()
	clone := *perm
	r.s.permissions[perm.ID] = &clone
	return nil
}

func (r stubPermissions) Exists(_ context.Context, roleID int64, resource, action string) (bool, error) {
	for _, p := range r.s.permissions {
		if p.RoleID == roleID && p.Resource == resource && p.Action == action {
			return true, nil
		}
	}
	return false, nil
}

func (r stubPermissions) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.permissions[id]; !ok {
		return domain.ErrPermissionMissing
	}
	delete(r.s.permissions, id)
	return nil
}

// ---------------------------------------------------------------------------
// In-memory session cache
// ---------------------------------------------------------------------------

type stubCache struct {
	mu        sync.Mutex
	entries   map[string]int64
	getErr    error
	setErr    error
	deleteErr error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]int64)}
}

func (c *stubCache) Get(_ context.Context, token string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	id, ok := c.entries[token]
	return id, ok, nil
}

func (c *stubCache) Set(_ context.Context, token string, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[token] = userID
	return nil
}

func (c *stubCache) Delete(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	delete(c.entries, token)
	return nil
}
