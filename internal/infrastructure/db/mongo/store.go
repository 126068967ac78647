package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sessionlab/identity-system/internal/core/domain"
	"github.com/sessionlab/identity-system/internal/core/ports"
)

// Store implements the document-store contract over a MongoDB database.
// Document ids map onto _id; application-generated string ids are used as-is.
type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, collection, id string) (ports.Document, bool, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return ports.Document{}, false, nil
	}
	if err != nil {
		return ports.Document{}, false, fmt.Errorf("%w: get %s/%s: %v", domain.ErrStoreUnavailable, collection, id, err)
	}
	return docFromRaw(id, raw), true, nil
}

// Set is a full overwrite (replace, not merge) with upsert semantics.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	doc := bson.M{"_id": id}
	for k, v := range normalizeFields(fields) {
		doc[k] = v
	}
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: set %s/%s: %v", domain.ErrStoreUnavailable, collection, id, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, filters []ports.Filter, limit int) ([]ports.Document, error) {
	filter := bson.M{}
	for _, f := range filters {
		filter[f.Field] = f.Value
	}

	// Sort by _id so limit truncation is deterministic for a fixed state.
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", domain.ErrStoreUnavailable, collection, err)
	}
	defer cur.Close(ctx)

	var results []ports.Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: decode %s document: %v", domain.ErrStoreUnavailable, collection, err)
		}
		id, _ := raw["_id"].(string)
		results = append(results, docFromRaw(id, raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", domain.ErrStoreUnavailable, collection, err)
	}
	return results, nil
}

func docFromRaw(id string, raw bson.M) ports.Document {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = v
	}
	return ports.Document{ID: id, Fields: fields}
}

// normalizeFields mirrors the simulator's serialization rules so a document
// reads back identically from either backend: timestamps persist as RFC 3339
// strings, nested maps recurse.
func normalizeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch tv := v.(type) {
		case time.Time:
			out[k] = tv.Format(time.RFC3339Nano)
		case map[string]any:
			out[k] = normalizeFields(tv)
		default:
			out[k] = v
		}
	}
	return out
}
