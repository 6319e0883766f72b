package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tokengate/rbac-api/internal/core/domain"
)

type userDoc struct {
	ID           int64     `bson:"_id"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	IsActive     bool      `bson:"is_active"`
	RoleID       *int64    `bson:"role_id"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		IsActive:     d.IsActive,
		RoleID:       d.RoleID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type userRepository struct {
	col   *mongo.Collection
	roles roleRepository
	seq   sequence
}

func (r userRepository) Create(ctx context.Context, user *domain.User) error {
	id, err := r.seq.next(ctx, collectionUsers)
	if err != nil {
		return err
	}
	doc := userDoc{
		ID:           id,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		IsActive:     user.IsActive,
		RoleID:       user.RoleID,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	return nil
}

func (r userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r userRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	user := doc.toDomain()
	if user.RoleID != nil {
		role, err := r.roles.FindByID(ctx, *user.RoleID)
		switch {
		case err == nil:
			user.Role = role
		case !errors.Is(err, domain.ErrRoleNotFound):
			return nil, err
		}
	}
	return user, nil
}

func (r userRepository) Update(ctx context.Context, user *domain.User) error {
	update := bson.M{"$set": bson.M{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"is_active":  user.IsActive,
		"role_id":    user.RoleID,
		"updated_at": user.UpdatedAt,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r userRepository) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	roles, err := r.roles.all(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		u := docs[i].toDomain()
		if u.RoleID != nil {
			u.Role = roles[*u.RoleID]
		}
		users = append(users, u)
	}
	return users, nil
}

type sessionDoc struct {
	ID        int64     `bson:"_id"`
	UserID    int64     `bson:"user_id"`
	Token     string    `bson:"token"`
	CreatedAt time.Time `bson:"created_at"`
}

type sessionRepository struct {
	col *mongo.Collection
	seq sequence
}

func (r sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	id, err := r.seq.next(ctx, collectionSessions)
	if err != nil {
		return err
	}
	doc := sessionDoc{ID: id, UserID: session.UserID, Token: session.Token, CreatedAt: session.CreatedAt}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	session.ID = id
	return nil
}

func (r sessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	var doc sessionDoc
	if err := r.col.FindOne(ctx, bson.M{"token": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &domain.Session{ID: doc.ID, UserID: doc.UserID, Token: doc.Token, CreatedAt: doc.CreatedAt}, nil
}

func (r sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type roleDoc struct {
	ID   int64  `bson:"_id"`
	Name string `bson:"name"`
}

type roleRepository struct {
	col *mongo.Collection
	seq sequence
}

func (r roleRepository) Create(ctx context.Context, role *domain.Role) error {
	id, err := r.seq.next(ctx, collectionRoles)
	if err != nil {
		return err
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"name": role.Name},
		bson.M{"$setOnInsert": roleDoc{ID: id, Name: role.Name}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert role: %w", err)
	}
	if res.UpsertedCount == 0 {
		return domain.ErrRoleExists
	}
	role.ID = id
	return nil
}

func (r roleRepository) FindByID(ctx context.Context, id int64) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r roleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r roleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Role, error) {
	var doc roleDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &domain.Role{ID: doc.ID, Name: doc.Name}, nil
}

func (r roleRepository) all(ctx context.Context) (map[int64]*domain.Role, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	var docs []roleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	roles := make(map[int64]*domain.Role, len(docs))
	for _, d := range docs {
		roles[d.ID] = &domain.Role{ID: d.ID, Name: d.Name}
	}
	return roles, nil
}

type permissionDoc struct {
	ID       int64  `bson:"_id"`
	RoleID   int64  `bson:"role_id"`
	Resource string `bson:"resource"`
	Action   string `bson:"action"`
}

type permissionRepository struct {
	col *mongo.Collection
	seq sequence
}

func (r permissionRepository) Create(ctx context.Context, perm *domain.Permission) error {
	id, err := r.seq.next(ctx, collectionPermissions)
	if err != nil {
		return err
	}
	doc := permissionDoc{ID: id, RoleID: perm.RoleID, Resource: perm.Resource, Action: perm.Action}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert permission: %w", err)
	}
	perm.ID = id
	return nil
}

func (r permissionRepository) Exists(ctx context.Context, roleID int64, resource, action string) (bool, error) {
	filter := bson.M{"role_id": roleID, "resource": resource, "action": action}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check permission: %w", err)
	}
	return n > 0, nil
}

func (r permissionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPermissionMissing
	}
	return nil
}
