package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tokengate/rbac-api/internal/api/handler"
	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
	"github.com/tokengate/rbac-api/internal/core/service"
	"github.com/tokengate/rbac-api/internal/infrastructure/db/sqldb"
)

const (
	testHeader        = "X-Session-Token"
	testAdminPassword = "admin-secret"
)

type testServer struct {
	e     *echo.Echo
	store *sqldb.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()

	store, err := sqldb.Open(ctx, sqldb.Config{Dialect: sqldb.SQLite, DSN: ":memory:"}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })
	require.NoError(t, store.Migrate(ctx))

	hasher := service.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, service.Bootstrap(ctx, store, hasher, service.BootstrapOptions{AdminPassword: testAdminPassword}, log))

	sessions := service.NewSessionManager(store, nil, log)
	reg := prometheus.NewRegistry()

	e := NewRouter(Deps{
		Auth:          service.NewAuthService(store, hasher, sessions, "", log),
		Profile:       service.NewProfileService(store, log),
		Identity:      service.NewIdentity(store, sessions),
		Access:        service.NewAccess(store),
		Admin:         service.NewAdminService(store, log),
		SessionHeader: testHeader,
		Health:        map[string]handler.Pinger{"store": store},
		Log:           log,
		Registerer:    reg,
		Gatherer:      reg,
	})
	return &testServer{e: e, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(testHeader, token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/login", "", fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusOK, code, string(body))

	var resp struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) register(t *testing.T, first, email, password string) {
	t.Helper()
	body := fmt.Sprintf(`{"first_name":%q,"last_name":"Test","email":%q,"password":%q}`, first, email, password)
	code, resp := s.do(t, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusCreated, code, string(resp))
}

func (s *testServer) roleID(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := s.store.Tx(context.Background(), func(ctx context.Context, r ports.Repositories) error {
		role, err := r.Roles().FindByName(ctx, name)
		if err != nil {
			return err
		}
		id = role.ID
		return nil
	})
	require.NoError(t, err)
	return id
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(body, &resp), string(body))
	return resp.Error
}

func TestRouter_PermissionLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, domain.AdminEmail, testAdminPassword)

	s.register(t, "Alice", "alice@example.com", "wonderland")
	alice := s.login(t, "alice@example.com", "wonderland")

	code, body := s.do(t, http.MethodGet, "/user/me", alice, "")
	require.Equal(t, http.StatusOK, code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "alice@example.com", me["email"])
	assert.Equal(t, domain.DefaultRoleName, me["role"])

	code, body = s.do(t, http.MethodGet, "/items", alice, "")
	require.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden", errorMessage(t, body))

	grant := fmt.Sprintf(`{"role_id":%d,"resource":"items","action":"read"}`, s.roleID(t, domain.DefaultRoleName))
	code, body = s.do(t, http.MethodPost, "/admin/permission", admin, grant)
	require.Equal(t, http.StatusOK, code, string(body))
	var perm struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &perm))

	code, body = s.do(t, http.MethodGet, "/items", alice, "")
	require.Equal(t, http.StatusOK, code, string(body))
	var items []map[string]any
	require.NoError(t, json.Unmarshal(body, &items))
	assert.Len(t, items, 2)

	// read does not imply write
	code, _ = s.do(t, http.MethodPost, "/items", alice, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/admin/permission/%d", perm.ID), admin, "")
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/items", alice, "")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_AdminHasNoImplicitGrants(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, domain.AdminEmail, testAdminPassword)

	code, _ := s.do(t, http.MethodGet, "/items", admin, "")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_AdminEndpointsRejectRegularUsers(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Bob", "bob@example.com", "builder")
	bob := s.login(t, "bob@example.com", "builder")

	requests := []struct{ method, path, body string }{
		{http.MethodPost, "/admin/role", `{"name":"editor"}`},
		{http.MethodPost, "/admin/permission", `{"role_id":1,"resource":"items","action":"read"}`},
		{http.MethodDelete, "/admin/permission/1", ""},
		{http.MethodPut, "/admin/user/role", `{"user_id":2,"role_id":1}`},
		{http.MethodGet, "/admin/users", ""},
	}
	for _, r := range requests {
		code, body := s.do(t, r.method, r.path, bob, r.body)
		assert.Equal(t, http.StatusForbidden, code, "%s %s", r.method, r.path)
		assert.Equal(t, "Admin only", errorMessage(t, body), "%s %s", r.method, r.path)
	}
}

func TestRouter_RoleAssignment(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, domain.AdminEmail, testAdminPassword)
	s.register(t, "Carol", "carol@example.com", "pw")
	carol := s.login(t, "carol@example.com", "pw")

	code, body := s.do(t, http.MethodPost, "/admin/role", admin, `{"name":"editor"}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"role created"}`, string(body))

	code, body = s.do(t, http.MethodPost, "/admin/role", admin, `{"name":"editor"}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"role already exist"}`, string(body))

	editor := s.roleID(t, "editor")
	code, _ = s.do(t, http.MethodPost, "/admin/permission", admin,
		fmt.Sprintf(`{"role_id":%d,"resource":"items","action":"write"}`, editor))
	require.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodGet, "/admin/users", admin, "")
	require.Equal(t, http.StatusOK, code)
	var users []struct {
		ID    int64   `json:"id"`
		Email string  `json:"email"`
		Role  *string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(body, &users))
	var carolID int64
	for _, u := range users {
		if u.Email == "carol@example.com" {
			carolID = u.ID
		}
	}
	require.NotZero(t, carolID)

	code, _ = s.do(t, http.MethodPut, "/admin/user/role", admin, fmt.Sprintf(`{"user_id":%d,"role_id":%d}`, carolID, editor))
	require.Equal(t, http.StatusOK, code)

	// the existing session sees the new role on its next request
	code, _ = s.do(t, http.MethodPost, "/items", carol, "")
	assert.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodPut, "/admin/user/role", admin, fmt.Sprintf(`{"user_id":%d,"role_id":9999}`, carolID))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Role not found", errorMessage(t, body))
}

func TestRouter_SessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Dave", "dave@example.com", "pw")
	first := s.login(t, "dave@example.com", "pw")
	second := s.login(t, "dave@example.com", "pw")
	require.NotEqual(t, first, second)

	code, body := s.do(t, http.MethodGet, "/user/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No session token", errorMessage(t, body))

	code, body = s.do(t, http.MethodGet, "/user/me", "bogus", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid session token", errorMessage(t, body))

	code, _ = s.do(t, http.MethodPost, "/logout", first, "")
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/user/me", first, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(t, http.MethodGet, "/user/me", second, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPut, "/user/update", second, `{"first_name":"David"}`)
	require.Equal(t, http.StatusOK, code)
	_, body = s.do(t, http.MethodGet, "/user/me", second, "")
	assert.Contains(t, string(body), `"first_name":"David"`)

	code, _ = s.do(t, http.MethodDelete, "/user/delete", second, "")
	require.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodGet, "/user/me", second, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Inactive user", errorMessage(t, body))

	code, body = s.do(t, http.MethodPost, "/login", "", `{"email":"dave@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", errorMessage(t, body))
}

func TestRouter_RegistrationErrors(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Erin", "erin@example.com", "pw")

	code, body := s.do(t, http.MethodPost, "/register", "",
		`{"first_name":"Erin","last_name":"Again","email":"erin@example.com","password":"other"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Email already exists", errorMessage(t, body))

	code, _ = s.do(t, http.MethodPost, "/register", "",
		`{"first_name":"X","last_name":"Y","email":"x@example.com","password":"pw","role_id":1}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/login", "", `{"email":"erin@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_Operations(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)

	code, body := s.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"store"`)

	code, _ = s.do(t, http.MethodGet, "/swagger/doc.json", "", "")
	assert.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "rbac_http_requests_total")

	code, body = s.do(t, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not Found", errorMessage(t, body))
}
