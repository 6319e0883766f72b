package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tokengate/rbac-api/internal/core/ports"
)

const (
	collectionUsers       = "users"
	collectionSessions    = "sessions"
	collectionRoles       = "roles"
	collectionPermissions = "permissions"
	collectionCounters    = "counters"

	codeNamespaceExists = 48
)

// Store implements ports.Store on MongoDB. Multi-document transactions require
// a replica set or sharded cluster.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore wraps an already connected client and database.
func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db}
}

// Tx runs fn inside a session transaction. The driver retries fn on transient
// transaction errors, so fn must not keep state across attempts.
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, repositories{db: s.db})
	})
	return err
}

// Migrate creates the collections and their unique indexes. Collections must
// exist before they can be written inside a transaction.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, name := range []string{collectionUsers, collectionSessions, collectionRoles, collectionPermissions, collectionCounters} {
		err := s.db.CreateCollection(ctx, name)
		var cmdErr mongo.CommandError
		if err != nil && !(errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists) {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}

	indexes := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionSessions: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		collectionRoles: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionPermissions: {
			{Keys: bson.D{{Key: "role_id", Value: 1}, {Key: "resource", Value: 1}, {Key: "action", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type repositories struct {
	db *mongo.Database
}

func (r repositories) Users() ports.UserRepository {
	roles := roleRepository{col: r.db.Collection(collectionRoles), seq: r.sequence()}
	return userRepository{col: r.db.Collection(collectionUsers), roles: roles, seq: r.sequence()}
}

func (r repositories) Sessions() ports.SessionRepository {
	return sessionRepository{col: r.db.Collection(collectionSessions), seq: r.sequence()}
}

func (r repositories) Roles() ports.RoleRepository {
	return roleRepository{col: r.db.Collection(collectionRoles), seq: r.sequence()}
}

func (r repositories) Permissions() ports.PermissionRepository {
	return permissionRepository{col: r.db.Collection(collectionPermissions), seq: r.sequence()}
}

func (r repositories) sequence() sequence {
	return sequence{col: r.db.Collection(collectionCounters)}
}

// sequence hands out int64 ids from a per-collection counter document.
type sequence struct {
	col *mongo.Collection
}

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

func (s sequence) next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var c counterDoc
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", name, err)
	}
	return c.Seq, nil
}
