package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookstore-api/internal/query"
)

func findOptions(spec *query.Spec) *options.FindOptions {
	opts := options.Find()
	if len(spec.Sort) > 0 {
		opts.SetSort(spec.Sort)
	}
	if spec.Skip > 0 {
		opts.SetSkip(spec.Skip)
	}
	if spec.Limit > 0 {
		opts.SetLimit(spec.Limit)
	}
	if len(spec.Projection) > 0 {
		opts.SetProjection(spec.Projection)
	}
	return opts
}

func find(ctx context.Context, coll *mongo.Collection, filter bson.M, spec *query.Spec) ([]query.Document, error) {
	cursor, err := coll.Find(ctx, filter, findOptions(spec))
	if err != nil {
		return nil, err
	}

	docs := []query.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
