package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

type stubProfileService struct {
	updateFn     func(ctx context.Context, userID int64, in ports.UpdateProfileInput) error
	deactivateFn func(ctx context.Context, userID int64) error
}

func (s *stubProfileService) UpdateProfile(ctx context.Context, userID int64, in ports.UpdateProfileInput) error {
	return s.updateFn(ctx, userID, in)
}

func (s *stubProfileService) Deactivate(ctx context.Context, userID int64) error {
	return s.deactivateFn(ctx, userID)
}

func TestUserHandler_Me(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/user/me", "")
	withUser(t, c, &domain.User{ID: 3, FirstName: "Alice", Email: "alice@example.com", IsActive: true}, "tok")

	if err := NewUserHandler(&stubProfileService{}).Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp userView
	decode(t, rec, &resp)
	if resp.ID != 3 || resp.Email != "alice@example.com" || resp.Role != nil {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Me_WithoutAuthentication(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/user/me", "")

	err := NewUserHandler(&stubProfileService{}).Me(c)
	if !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestUserHandler_Update(t *testing.T) {
	cases := map[string]struct {
		body      string
		wantFirst *string
		wantLast  *string
	}{
		"first name only": {`{"first_name":"Alicia"}`, ptr("Alicia"), nil},
		"both names":      {`{"first_name":"A","last_name":"L"}`, ptr("A"), ptr("L")},
		"empty ignored":   {`{"first_name":"","last_name":"L"}`, nil, ptr("L")},
		"nothing":         {`{}`, nil, nil},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var got ports.UpdateProfileInput
			stub := &stubProfileService{
				updateFn: func(ctx context.Context, userID int64, in ports.UpdateProfileInput) error {
					if userID != 5 {
						t.Fatalf("unexpected user id %d", userID)
					}
					got = in
					return nil
				},
			}
			c, rec := newContext(http.MethodPut, "/user/update", tc.body)
			withUser(t, c, &domain.User{ID: 5, IsActive: true}, "tok")

			if err := NewUserHandler(stub).Update(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if !sameString(got.FirstName, tc.wantFirst) || !sameString(got.LastName, tc.wantLast) {
				t.Fatalf("unexpected input: first=%v last=%v", deref(got.FirstName), deref(got.LastName))
			}

			var resp statusResponse
			decode(t, rec, &resp)
			if resp.Status != "updated" {
				t.Fatalf("unexpected status %q", resp.Status)
			}
		})
	}
}

func TestUserHandler_Update_UnknownField(t *testing.T) {
	stub := &stubProfileService{
		updateFn: func(ctx context.Context, userID int64, in ports.UpdateProfileInput) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	c, _ := newContext(http.MethodPut, "/user/update", `{"email":"new@example.com"}`)
	withUser(t, c, &domain.User{ID: 5, IsActive: true}, "tok")

	expectHTTPError(t, NewUserHandler(stub).Update(c), http.StatusBadRequest)
}

func TestUserHandler_Delete(t *testing.T) {
	var deactivated int64
	stub := &stubProfileService{
		deactivateFn: func(ctx context.Context, userID int64) error {
			deactivated = userID
			return nil
		},
	}
	c, rec := newContext(http.MethodDelete, "/user/delete", "")
	withUser(t, c, &domain.User{ID: 9, IsActive: true}, "tok")

	if err := NewUserHandler(stub).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if deactivated != 9 {
		t.Fatalf("expected user 9 deactivated, got %d", deactivated)
	}

	var resp statusResponse
	decode(t, rec, &resp)
	if resp.Status != "disabled" {
		t.Fatalf("unexpected status %q", resp.Status)
	}
}

func TestUserHandler_Delete_ServiceError(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubProfileService{
		deactivateFn: func(ctx context.Context, userID int64) error { return boom },
	}
	c, _ := newContext(http.MethodDelete, "/user/delete", "")
	withUser(t, c, &domain.User{ID: 9, IsActive: true}, "tok")

	if err := NewUserHandler(stub).Delete(c); !errors.Is(err, boom) {
		t.Fatalf("expected service error, got %v", err)
	}
}

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
