// Package mongo owns the document-store bootstrap: connecting the client and
// creating the unique indexes that back every race-sensitive invariant in the
// system. Index creation is explicit and runs once at startup; there is no
// implicit schema registry.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names, kept in one place so stores and index setup agree.
const (
	CollProfiles           = "profiles"
	CollTeams              = "teams"
	CollEvents             = "events"
	CollRegistrations      = "registrations"
	CollChannels           = "channels"
	CollPosts              = "posts"
	CollComments           = "comments"
	CollPaymentSubmissions = "payment_submissions"
)

// Connect dials the server and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique indexes that serve as the sole concurrency
// backstop (§ concurrency model): a lost read-then-write race becomes a
// rejected duplicate instead of silent corruption.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		CollProfiles: {
			{Keys: bson.D{{Key: "auth_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.D{{Key: "username", Value: bson.D{{Key: "$type", Value: "string"}}}})},
		},
		CollTeams: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		CollRegistrations: {
			// owner_id is always set: the team id for team events, the
			// registrant's profile id for individual events. team_id is
			// omitted on solo documents and would index as null.
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "event_id", Value: 1}}, Options: unique},
		},
		CollEvents: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		CollChannels: {
			{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: unique},
		},
		CollPosts: {
			{Keys: bson.D{{Key: "channel_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollComments: {
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", coll, err)
		}
	}
	return nil
}

// IsDuplicateKey reports whether err is a unique-index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
