package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tokengate/rbac-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := map[string]struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		"echo error":          {echo.NewHTTPError(http.StatusBadRequest, "unknown field \"role\""), http.StatusBadRequest, "unknown field \"role\""},
		"route not found":     {echo.ErrNotFound, http.StatusNotFound, "Not Found"},
		"invalid credentials": {domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		"missing token":       {domain.ErrMissingToken, http.StatusUnauthorized, "No session token"},
		"inactive user":       {domain.ErrInactiveUser, http.StatusUnauthorized, "Inactive user"},
		"permission denied":   {domain.ErrPermissionDenied, http.StatusForbidden, "Forbidden"},
		"admin only":          {domain.ErrAdminOnly, http.StatusForbidden, "Admin only"},
		"wrapped not found":   {fmt.Errorf("change role: %w", domain.ErrRoleNotFound), http.StatusNotFound, "Role not found"},
		"email exists":        {domain.ErrEmailExists, http.StatusConflict, "Email already exists"},
		"invalid input":       {domain.ErrPasswordTooLong, http.StatusBadRequest, "password must be at most 72 bytes"},
		"unexpected":          {errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}

	handle := NewHTTPErrorHandler(zerolog.Nop())

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handle(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tc.wantMsg {
				t.Fatalf("expected %q, got %q", tc.wantMsg, resp.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was rewritten: %d %q", rec.Code, rec.Body.String())
	}
}
