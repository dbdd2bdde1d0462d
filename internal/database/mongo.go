package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// OpenMongo connects to MongoDB, verifies the connection and returns the
// named database handle. The caller owns the client and must disconnect it.
func OpenMongo(uri, name string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, client.Database(name), nil
}

// EnsureMongoIndexes creates the unique indexes the repositories rely on for
// duplicate detection, plus the sort indexes used by the catalog listings.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	idx := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{"users", mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{"genres", mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{"movies", mongo.IndexModel{Keys: bson.D{{Key: "tier", Value: 1}, {Key: "created_at", Value: -1}}}},
		{"movies", mongo.IndexModel{Keys: bson.D{{Key: "tier", Value: 1}, {Key: "rating", Value: -1}}}},
	}
	for _, ix := range idx {
		if _, err := db.Collection(ix.coll).Indexes().CreateOne(ctx, ix.model); err != nil {
			return fmt.Errorf("index on %s: %w", ix.coll, err)
		}
	}
	return nil
}
