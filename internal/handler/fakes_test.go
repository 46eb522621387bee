package handler

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory DocumentStore.
type fakeStore struct {
	mu sync.Mutex

	name        string
	created     []any
	docs        []bson.M
	collections []string

	createErr error
	getErr    error
	listErr   error

	lastCollection string
	lastLimit      int64
}

func (f *fakeStore) CreateDocument(_ context.Context, collection string, data any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCollection = collection
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, data)
	return "64b7f0c2a1b2c3d4e5f60718", nil
}

func (f *fakeStore) GetDocuments(_ context.Context, collection string, _ any, limit int64) ([]bson.M, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCollection = collection
	f.lastLimit = limit
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.docs, nil
}

func (f *fakeStore) Name() string { return f.name }

func (f *fakeStore) CollectionNames(context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.collections, nil
}
