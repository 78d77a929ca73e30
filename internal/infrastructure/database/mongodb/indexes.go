package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"bookstore-api/internal/logger"
)

// EnsureIndexes creates the unique indexes the stores rely on for
// duplicate detection. It is safe to run on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string]mongo.IndexModel{
		UsersCollection: {
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_1"),
		},
		BooksCollection: {
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("name_1"),
		},
	}

	for coll, model := range indexes {
		name, err := db.Collection(coll).Indexes().CreateOne(ctx, model)
		if err != nil {
			return errors.Wrapf(err, "failed to create index on %s", coll)
		}
		logger.Debug("Index ensured", zap.String("collection", coll), zap.String("index", name))
	}

	return nil
}
