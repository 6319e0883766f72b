package sqldb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tokengate/rbac-api/internal/core/domain"
)

type userRepository struct {
	tx *gorm.DB
}

func (r userRepository) Create(ctx context.Context, user *domain.User) error {
	m := newUserModel(user)
	if err := r.tx.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = m.ID
	return nil
}

func (r userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r userRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m userModel
	err := r.tx.WithContext(ctx).Preload("Role").Where(query, arg).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return m.toDomain(), nil
}

func (r userRepository) Update(ctx context.Context, user *domain.User) error {
	m := newUserModel(user)
	res := r.tx.WithContext(ctx).
		Model(&userModel{ID: user.ID}).
		Select("first_name", "last_name", "is_active", "role_id", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r userRepository) List(ctx context.Context) ([]*domain.User, error) {
	var models []userModel
	if err := r.tx.WithContext(ctx).Preload("Role").Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]*domain.User, 0, len(models))
	for i := range models {
		users = append(users, models[i].toDomain())
	}
	return users, nil
}

type sessionRepository struct {
	tx *gorm.DB
}

func (r sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	m := sessionModel{UserID: session.UserID, Token: session.Token, CreatedAt: session.CreatedAt}
	if err := r.tx.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	session.ID = m.ID
	return nil
}

func (r sessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	var m sessionModel
	if err := r.tx.WithContext(ctx).Where("token = ?", token).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return m.toDomain(), nil
}

func (r sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if err := r.tx.WithContext(ctx).Where("token = ?", token).Delete(&sessionModel{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type roleRepository struct {
	tx *gorm.DB
}

// Create inserts role. A duplicate name yields domain.ErrRoleExists and leaves
// the transaction usable, including when a concurrent insert won the race.
func (r roleRepository) Create(ctx context.Context, role *domain.Role) error {
	m := roleModel{Name: role.Name}
	res := r.tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&m)
	if res.Error != nil {
		return fmt.Errorf("insert role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRoleExists
	}
	role.ID = m.ID
	return nil
}

func (r roleRepository) FindByID(ctx context.Context, id int64) (*domain.Role, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r roleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r roleRepository) findOne(ctx context.Context, query string, arg any) (*domain.Role, error) {
	var m roleModel
	if err := r.tx.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return m.toDomain(), nil
}

type permissionRepository struct {
	tx *gorm.DB
}

func (r permissionRepository) Create(ctx context.Context, perm *domain.Permission) error {
	m := permissionModel{RoleID: perm.RoleID, Resource: perm.Resource, Action: perm.Action}
	if err := r.tx.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert permission: %w", err)
	}
	perm.ID = m.ID
	return nil
}

func (r permissionRepository) Exists(ctx context.Context, roleID int64, resource, action string) (bool, error) {
	var n int64
	err := r.tx.WithContext(ctx).
		Model(&permissionModel{}).
		Where("role_id = ? AND resource = ? AND action = ?", roleID, resource, action).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check permission: %w", err)
	}
	return n > 0, nil
}

func (r permissionRepository) Delete(ctx context.Context, id int64) error {
	res := r.tx.WithContext(ctx).Delete(&permissionModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete permission: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPermissionMissing
	}
	return nil
}
