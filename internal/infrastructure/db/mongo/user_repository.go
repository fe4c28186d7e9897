package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

// UserRepository stores accounts in the users collection.
type UserRepository struct {
	db      *mongo.Database
	users   *mongo.Collection
	clients *mongo.Collection
	now     func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		db:      db,
		users:   db.Collection(collectionUsers),
		clients: db.Collection(collectionClients),
		now:     time.Now,
	}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	doc := toUserDocument(u)
	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *u
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*domain.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	set := userPatchSet(patch, r.now().UTC())

	if !patch.RevokesAdmin() {
		return r.findAndSet(ctx, oid, set)
	}

	var updated *domain.User
	err := r.guarded(ctx, oid, func(sc mongo.SessionContext) error {
		var err error
		updated, err = r.findAndSet(sc, oid, set)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	return r.guarded(ctx, oid, func(sc mongo.SessionContext) error {
		if _, err := r.clients.DeleteMany(sc, bson.M{"owner_id": id}); err != nil {
			return fmt.Errorf("delete owned clients: %w", err)
		}
		if _, err := r.users.DeleteOne(sc, bson.M{"_id": oid}); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// guarded runs fn in a transaction. When the target is an active admin, the
// admin guard is claimed first and fn only runs if another active admin remains.
func (r *UserRepository) guarded(ctx context.Context, oid primitive.ObjectID, fn func(sc mongo.SessionContext) error) error {
	return withTransaction(ctx, r.db.Client(), func(sc mongo.SessionContext) error {
		target, err := r.findOne(sc, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		if target.Role == domain.RoleAdmin && target.Active {
			if err := claimAdminGuard(sc, r.db); err != nil {
				return err
			}
			n, err := r.users.CountDocuments(sc, activeAdminFilter())
			if err != nil {
				return fmt.Errorf("count admins: %w", err)
			}
			if n <= 1 {
				return domain.ErrSoleAdmin
			}
		}
		return fn(sc)
	})
}

func (r *UserRepository) findAndSet(ctx context.Context, oid primitive.ObjectID, set bson.M) (*domain.User, error) {
	var doc userDocument
	err := r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrUserExists
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set":   bson.M{"password_hash": hash, "updated_at": r.now().UTC()},
		"$unset": bson.M{"reset_token_hash": "", "reset_token_expires_at": ""},
	})
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"reset_token_hash": tokenHash, "reset_token_expires_at": expiresAt},
	})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	return r.findOne(ctx, bson.M{
		"reset_token_hash":       tokenHash,
		"reset_token_expires_at": bson.M{"$gt": now},
		"active":                 true,
	})
}

func (r *UserRepository) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.users.UpdateMany(ctx,
		bson.M{"reset_token_expires_at": bson.M{"$lte": now}},
		bson.M{"$unset": bson.M{"reset_token_hash": "", "reset_token_expires_at": ""}},
	)
	if err != nil {
		return 0, fmt.Errorf("purge reset tokens: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *UserRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"last_login_at": at}})
}

func (r *UserRepository) Counts(ctx context.Context) (ports.UserCounts, error) {
	var c ports.UserCounts
	var err error
	if c.Total, err = r.users.CountDocuments(ctx, bson.M{}); err != nil {
		return c, fmt.Errorf("count users: %w", err)
	}
	if c.Active, err = r.users.CountDocuments(ctx, bson.M{"active": true}); err != nil {
		return c, fmt.Errorf("count active users: %w", err)
	}
	if c.Admins, err = r.users.CountDocuments(ctx, activeAdminFilter()); err != nil {
		return c, fmt.Errorf("count admins: %w", err)
	}
	return c, nil
}
