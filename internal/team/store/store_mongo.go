package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	platformmongo "felicity/internal/platform/mongo"
	"felicity/internal/team"
	"felicity/pkg/platform/sentinel"
)

// MongoStore persists teams in the teams collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(platformmongo.CollTeams)}
}

func (s *MongoStore) Insert(ctx context.Context, t *team.Team) error {
	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		if platformmongo.IsDuplicateKey(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, t *team.Team) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	if res.MatchedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if res.DeletedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*team.Team, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByName(ctx context.Context, name string) (*team.Team, error) {
	return s.findOne(ctx, bson.M{"name": name})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*team.Team, error) {
	var t team.Team
	err := s.coll.FindOne(ctx, filter).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find team: %w", err)
	}
	return &t, nil
}
