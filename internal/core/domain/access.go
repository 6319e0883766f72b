package domain

import "time"

// Session proves a successful login. A token resolves to at most one session.
type Session struct {
	ID        int64
	UserID    int64
	Token     string
	CreatedAt time.Time
}

// Role is a named authorization group; a user belongs to at most one.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Permission grants one (resource, action) pair to one role. Duplicate rows are
// allowed and carry no extra meaning.
type Permission struct {
	ID       int64  `json:"id"`
	RoleID   int64  `json:"role_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}
