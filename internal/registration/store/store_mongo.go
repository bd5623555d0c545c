package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	platformmongo "felicity/internal/platform/mongo"
	"felicity/internal/registration"
	"felicity/pkg/platform/sentinel"
)

// MongoStore persists registrations. The (owner_id, event_id) unique index
// is created at startup by EnsureIndexes.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(platformmongo.CollRegistrations)}
}

func (s *MongoStore) Insert(ctx context.Context, r *registration.Registration) error {
	if r.ID == "" {
		r.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		if platformmongo.IsDuplicateKey(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, r *registration.Registration) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, r)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if res.MatchedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*registration.Registration, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByOwnerAndEvent(ctx context.Context, ownerID, eventID string) (*registration.Registration, error) {
	return s.findOne(ctx, bson.M{"owner_id": ownerID, "event_id": eventID})
}

func (s *MongoStore) FindByMember(ctx context.Context, profileID string) ([]*registration.Registration, error) {
	return s.findMany(ctx, bson.M{"selected_members": profileID})
}

func (s *MongoStore) FindByEventAndMember(ctx context.Context, eventID, profileID string) ([]*registration.Registration, error) {
	return s.findMany(ctx, bson.M{"event_id": eventID, "selected_members": profileID})
}

func (s *MongoStore) List(ctx context.Context, f registration.ListFilter) ([]*registration.Registration, error) {
	filter := bson.M{}
	if f.EventID != "" {
		filter["event_id"] = f.EventID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return s.findMany(ctx, filter)
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*registration.Registration, error) {
	var r registration.Registration
	err := s.coll.FindOne(ctx, filter).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &r, nil
}

func (s *MongoStore) findMany(ctx context.Context, filter bson.M) ([]*registration.Registration, error) {
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find registrations: %w", err)
	}
	var out []*registration.Registration
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode registrations: %w", err)
	}
	return out, nil
}

// MongoSubmissionStore persists user-reported manual payments.
type MongoSubmissionStore struct {
	coll *mongo.Collection
}

func NewMongoSubmissionStore(db *mongo.Database) *MongoSubmissionStore {
	return &MongoSubmissionStore{coll: db.Collection(platformmongo.CollPaymentSubmissions)}
}

func (s *MongoSubmissionStore) Insert(ctx context.Context, sub *registration.PaymentSubmission) error {
	if sub.ID == "" {
		sub.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, sub); err != nil {
		return fmt.Errorf("insert payment submission: %w", err)
	}
	return nil
}

func (s *MongoSubmissionStore) ListPending(ctx context.Context) ([]*registration.PaymentSubmission, error) {
	cur, err := s.coll.Find(ctx, bson.M{"review_status": "pending"}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find payment submissions: %w", err)
	}
	var out []*registration.PaymentSubmission
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode payment submissions: %w", err)
	}
	return out, nil
}
