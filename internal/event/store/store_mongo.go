package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"felicity/internal/event"
	platformmongo "felicity/internal/platform/mongo"
	"felicity/pkg/platform/sentinel"
)

// MongoStore persists the catalog in the events collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(platformmongo.CollEvents)}
}

func (s *MongoStore) Insert(ctx context.Context, e *event.Event) error {
	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, e); err != nil {
		if platformmongo.IsDuplicateKey(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*event.Event, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindBySlug(ctx context.Context, slug string) (*event.Event, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*event.Event, error) {
	var e event.Event
	err := s.coll.FindOne(ctx, filter).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &e, nil
}

func (s *MongoStore) List(ctx context.Context, category string, liveOnly bool) ([]*event.Event, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	if liveOnly {
		filter["is_live"] = true
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*event.Event
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return out, nil
}

func (s *MongoStore) FindLive(ctx context.Context) ([]*event.Event, error) {
	return s.List(ctx, "", true)
}
