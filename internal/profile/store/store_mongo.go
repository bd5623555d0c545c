package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"felicity/internal/profile"
	platformmongo "felicity/internal/platform/mongo"
	"felicity/pkg/platform/sentinel"
)

// MongoStore persists profiles in the profiles collection. Ids are ObjectID
// hex strings stored as string _id so domain types stay driver-free.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(platformmongo.CollProfiles)}
}

func (s *MongoStore) Insert(ctx context.Context, p *profile.Profile) error {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		if platformmongo.IsDuplicateKey(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, p *profile.Profile) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		if platformmongo.IsDuplicateKey(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindByAuthID(ctx context.Context, authID string) (*profile.Profile, error) {
	return s.findOne(ctx, bson.M{"auth_id": authID})
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*profile.Profile, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*profile.Profile, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*profile.Profile, error) {
	var p profile.Profile
	err := s.coll.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) FindByIDs(ctx context.Context, ids []string) ([]*profile.Profile, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*profile.Profile
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return out, nil
}

func (s *MongoStore) SetTeam(ctx context.Context, profileID string, esports bool, teamID string) error {
	field := "current_team_id"
	if esports {
		field = "esports_team_id"
	}
	var update bson.M
	if teamID == "" {
		update = bson.M{"$unset": bson.M{field: ""}}
	} else {
		update = bson.M{"$set": bson.M{field: teamID}}
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": profileID}, update)
	if err != nil {
		return fmt.Errorf("set team ref: %w", err)
	}
	if res.MatchedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *MongoStore) ClearTeamForMembers(ctx context.Context, memberIDs []string, esports bool) error {
	field := "current_team_id"
	if esports {
		field = "esports_team_id"
	}
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": memberIDs}},
		bson.M{"$unset": bson.M{field: ""}},
	)
	if err != nil {
		return fmt.Errorf("clear team refs: %w", err)
	}
	return nil
}

func (s *MongoStore) PullInvite(ctx context.Context, teamID string) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"pending_invites": teamID},
		bson.M{"$pull": bson.M{"pending_invites": teamID}},
	)
	if err != nil {
		return fmt.Errorf("pull invites: %w", err)
	}
	return nil
}

func (s *MongoStore) AddEventRefs(ctx context.Context, profileIDs []string, eventID string, paid bool) error {
	update := bson.M{"$addToSet": bson.M{"registered_events": eventID}}
	if paid {
		update = bson.M{"$addToSet": bson.M{
			"registered_events": eventID,
			"paid_events":       eventID,
		}}
	}
	_, err := s.coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": profileIDs}}, update)
	if err != nil {
		return fmt.Errorf("add event refs: %w", err)
	}
	return nil
}
