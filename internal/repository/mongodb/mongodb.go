// Package mongodb implements the repository interfaces on MongoDB.
//
// The user record is a single document: identity fields plus the array of
// currently-valid refresh tokens. Every token mutation is one atomic update
// ($push / $pull / $set) on that document, so login, refresh, and logout
// never race each other into a lost write.
//
// DRIVER NOTES:
// mongo.Connect does not dial eagerly — the first real round trip happens
// on demand. We Ping at startup so a bad URI or unreachable server fails
// fast and loudly instead of surfacing on the first request.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 15 * time.Second

// DB wraps a mongo client and the users collection.
type DB struct {
	client *mongo.Client
	users  *mongo.Collection
}

// New connects to MongoDB, verifies the connection, and ensures indexes.
//
// uri examples:
//   - "mongodb://localhost:27017"        → local dev
//   - "mongodb+srv://...mongodb.net/..." → Atlas
func New(uri, dbName string) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connecting: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: pinging: %w", err)
	}

	db := &DB{
		client: client,
		users:  client.Database(dbName).Collection("users"),
	}

	if err := db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: creating indexes: %w", err)
	}

	return db, nil
}

// Close disconnects the client. Wherever New() is called, defer Close().
func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return db.client.Disconnect(ctx)
}

// ensureIndexes creates the unique email index.
//
// The service layer pre-checks ExistsByEmail for a friendly 409, but the
// index is what actually enforces uniqueness: two concurrent registrations
// for the same email both pass the pre-check, and the second insert fails
// here with a duplicate-key error instead of creating a second account.
func (db *DB) ensureIndexes(ctx context.Context) error {
	_, err := db.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique_idx"),
	})
	return err
}
