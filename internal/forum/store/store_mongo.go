package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"felicity/internal/forum"
	platformmongo "felicity/internal/platform/mongo"
	"felicity/pkg/platform/sentinel"
)

// MongoChannelStore persists channels; the unique event_id index keeps
// provisioning idempotent under races.
type MongoChannelStore struct {
	coll *mongo.Collection
}

func NewMongoChannelStore(db *mongo.Database) *MongoChannelStore {
	return &MongoChannelStore{coll: db.Collection(platformmongo.CollChannels)}
}

func (s *MongoChannelStore) Insert(ctx context.Context, c *forum.Channel) error {
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if platformmongo.IsDuplicateKey(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert channel: %w", err)
	}
	return nil
}

func (s *MongoChannelStore) FindByEventID(ctx context.Context, eventID string) (*forum.Channel, error) {
	var c forum.Channel
	err := s.coll.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find channel: %w", err)
	}
	return &c, nil
}

// MongoPostStore persists posts.
type MongoPostStore struct {
	coll *mongo.Collection
}

func NewMongoPostStore(db *mongo.Database) *MongoPostStore {
	return &MongoPostStore{coll: db.Collection(platformmongo.CollPosts)}
}

func (s *MongoPostStore) Insert(ctx context.Context, p *forum.Post) error {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *MongoPostStore) Update(ctx context.Context, p *forum.Post) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *MongoPostStore) FindByID(ctx context.Context, id string) (*forum.Post, error) {
	var p forum.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

func (s *MongoPostStore) ListByChannel(ctx context.Context, channelID string, limit int) ([]*forum.Post, error) {
	// Pinned first, then newest first; ordering must precede the limit so a
	// pinned post never falls off the page.
	opts := options.Find().SetSort(bson.D{{Key: "pinned", Value: -1}, {Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.M{"channel_id": channelID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	var out []*forum.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return out, nil
}

// MongoCommentStore persists comments.
type MongoCommentStore struct {
	coll *mongo.Collection
}

func NewMongoCommentStore(db *mongo.Database) *MongoCommentStore {
	return &MongoCommentStore{coll: db.Collection(platformmongo.CollComments)}
}

func (s *MongoCommentStore) Insert(ctx context.Context, c *forum.Comment) error {
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *MongoCommentStore) Update(ctx context.Context, c *forum.Comment) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *MongoCommentStore) FindByID(ctx context.Context, id string) (*forum.Comment, error) {
	var c forum.Comment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return &c, nil
}

func (s *MongoCommentStore) ListByPost(ctx context.Context, postID string) ([]*forum.Comment, error) {
	cur, err := s.coll.Find(ctx, bson.M{"post_id": postID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	var out []*forum.Comment
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return out, nil
}
