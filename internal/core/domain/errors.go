package domain

import "errors"

// Error categories. Every error returned by the core either is one of these or
// unwraps to one of them; anything else is an internal failure.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

// Error is a categorized error with a client-facing message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrMissingToken = &Error{Kind: ErrUnauthenticated, Msg: "No session token"}
	ErrInvalidToken = &Error{Kind: ErrUnauthenticated, Msg: "Invalid session token"}
	ErrInactiveUser = &Error{Kind: ErrUnauthenticated, Msg: "Inactive user"}

	ErrNoRoleAssigned    = &Error{Kind: ErrForbidden, Msg: "No role assigned"}
	ErrPermissionDenied  = &Error{Kind: ErrForbidden, Msg: "Forbidden"}
	ErrAdminOnly         = &Error{Kind: ErrForbidden, Msg: "Admin only"}
	ErrUserNotFound      = &Error{Kind: ErrNotFound, Msg: "User not found"}
	ErrRoleNotFound      = &Error{Kind: ErrNotFound, Msg: "Role not found"}
	ErrSessionNotFound   = &Error{Kind: ErrNotFound, Msg: "Session not found"}
	ErrPermissionMissing = &Error{Kind: ErrNotFound, Msg: "Permission not found"}

	ErrEmailExists = &Error{Kind: ErrConflict, Msg: "Email already exists"}
	ErrRoleExists  = &Error{Kind: ErrConflict, Msg: "Role already exists"}

	ErrPasswordTooLong = &Error{Kind: ErrInvalidInput, Msg: "password must be at most 72 bytes"}
	ErrMissingFields   = &Error{Kind: ErrInvalidInput, Msg: "email and password are required"}
)
