// Package store provides the MongoDB-backed document store.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portfolio-backend/internal/config"
)

// ErrNotConfigured is returned by New when no database URL is set.
var ErrNotConfigured = errors.New("database not configured")

// Mongo is an explicitly constructed document store handle. Connect with
// New, verify with Ping and release with Close.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// New creates a client for cfg.URL and selects cfg.Name. The driver connects
// lazily, so New succeeds even while the server is unreachable; use Ping to
// check connectivity.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Mongo, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}

	timeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
	opts := options.Client().ApplyURI(cfg.URL)
	if timeout > 0 {
		opts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &Mongo{
		client: client,
		db:     client.Database(cfg.Name),
		logger: logger.With("component", "mongo_store"),
	}, nil
}

// Name returns the selected database name.
func (m *Mongo) Name() string {
	return m.db.Name()
}

// Ping verifies the server is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

// CreateDocument inserts data into collection and returns the new document id.
func (m *Mongo) CreateDocument(ctx context.Context, collection string, data any) (string, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, data)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	m.logger.Debug("document created", "collection", collection)
	return idString(res.InsertedID), nil
}

// GetDocuments returns up to limit documents of collection matching filter.
// A nil filter matches everything; a limit of 0 means no limit.
func (m *Mongo) GetDocuments(ctx context.Context, collection string, filter any, limit int64) ([]bson.M, error) {
	if filter == nil {
		filter = bson.D{}
	}

	cur, err := m.db.Collection(collection).Find(ctx, filter, findOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}

	docs := make([]bson.M, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return docs, nil
}

// CollectionNames lists the collections of the selected database.
func (m *Mongo) CollectionNames(ctx context.Context) ([]string, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

func findOptions(limit int64) *options.FindOptions {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return opts
}

func idString(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}
