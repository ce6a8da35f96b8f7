package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the services rely on. CreateMany is a
// no-op for indexes that already exist with the same spec.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		EventsCollection: {
			{Keys: bson.D{{Key: "is_deleted", Value: 1}, {Key: "is_published", Value: 1}, {Key: "event_date", Value: 1}}},
		},
		RegistrationsCollection: {
			// one registration per (user, event)
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_user_event")},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		DepartmentsCollection: {
			{Keys: bson.D{{Key: "institute_id", Value: 1}}},
		},
	}

	for name, idx := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
