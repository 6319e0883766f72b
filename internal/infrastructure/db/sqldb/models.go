package sqldb

import (
	"time"

	"github.com/tokengate/rbac-api/internal/core/domain"
)

type roleModel struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:100;not null;uniqueIndex"`
}

func (roleModel) TableName() string { return "roles" }

type userModel struct {
	ID           int64      `gorm:"primaryKey"`
	FirstName    string     `gorm:"size:100"`
	LastName     string     `gorm:"size:100"`
	Email        string     `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string     `gorm:"not null"`
	IsActive     bool       `gorm:"not null"`
	RoleID       *int64     `gorm:"index"`
	Role         *roleModel `gorm:"foreignKey:RoleID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

type sessionModel struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;index"`
	Token     string `gorm:"size:64;not null;uniqueIndex"`
	CreatedAt time.Time
}

func (sessionModel) TableName() string { return "sessions" }

// Permissions carry no unique constraint: duplicate grants are allowed.
type permissionModel struct {
	ID       int64  `gorm:"primaryKey"`
	RoleID   int64  `gorm:"not null;index:idx_permission_lookup"`
	Resource string `gorm:"size:100;not null;index:idx_permission_lookup"`
	Action   string `gorm:"size:100;not null;index:idx_permission_lookup"`
}

func (permissionModel) TableName() string { return "permissions" }

func newUserModel(u *domain.User) userModel {
	return userModel{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		RoleID:       u.RoleID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *userModel) toDomain() *domain.User {
	u := &domain.User{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		IsActive:     m.IsActive,
		RoleID:       m.RoleID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Role != nil {
		u.Role = m.Role.toDomain()
	}
	return u
}

func (m *roleModel) toDomain() *domain.Role {
	return &domain.Role{ID: m.ID, Name: m.Name}
}

func (m *sessionModel) toDomain() *domain.Session {
	return &domain.Session{ID: m.ID, UserID: m.UserID, Token: m.Token, CreatedAt: m.CreatedAt}
}

func (m *permissionModel) toDomain() *domain.Permission {
	return &domain.Permission{ID: m.ID, RoleID: m.RoleID, Resource: m.Resource, Action: m.Action}
}
