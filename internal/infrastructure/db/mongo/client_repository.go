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

// ClientRepository stores client records in the clients collection.
type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(collectionClients)}
}

var _ ports.ClientRepository = (*ClientRepository)(nil)

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	doc := toClientDocument(c)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrClientExists
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ClientRepository) FindByOwnerAndEmail(ctx context.Context, ownerID, email string) (*domain.Client, error) {
	return r.findOne(ctx, bson.M{"owner_id": ownerID, "email": email})
}

func (r *ClientRepository) findOne(ctx context.Context, filter bson.M) (*domain.Client, error) {
	var doc clientDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns matching clients, newest first.
func (r *ClientRepository) List(ctx context.Context, f ports.ClientFilter) ([]*domain.Client, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, clientListFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	var docs []clientDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	out := make([]*domain.Client, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *ClientRepository) Update(ctx context.Context, id string, patch ports.ClientPatch, now time.Time) (*domain.Client, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrClientNotFound
	}

	var doc clientDocument
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": clientPatchSet(patch, now)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.ErrClientNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrClientExists
	case err != nil:
		return nil, fmt.Errorf("update client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrClientNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Count(ctx context.Context, f ports.ClientCountFilter) (int64, error) {
	n, err := r.col.CountDocuments(ctx, clientCountFilter(f))
	if err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return n, nil
}

func (r *ClientRepository) CountBy(ctx context.Context, ownerID string, field ports.ClientGroupField) (map[string]int64, error) {
	cur, err := r.col.Aggregate(ctx, groupPipeline(ownerID, field))
	if err != nil {
		return nil, fmt.Errorf("group clients by %s: %w", field, err)
	}
	var rows []struct {
		Value string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s groups: %w", field, err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Value] = row.Count
	}
	return out, nil
}
