package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"bookstore-api/internal/config"
	"bookstore-api/internal/logger"
)

const (
	UsersCollection = "users"
	BooksCollection = "books"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewDB(ctx context.Context, cfg *config.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout())
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetMaxPoolSize(25).
		SetMinPoolSize(5).
		SetAppName("bookstore-api")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	logger.Info("Database connection established",
		zap.String("database", cfg.Database.Name),
		zap.Uint64("max_pool_size", 25),
		zap.Uint64("min_pool_size", 5),
	)

	return &DB{Client: client, Database: client.Database(cfg.Database.Name)}, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

func (d *DB) Health(ctx context.Context) error {
	return d.Client.Ping(ctx, readpref.Primary())
}
