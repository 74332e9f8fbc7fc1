// Package mongodb stores posts as single documents with embedded comments,
// mirroring the API's document model: likes are incremented with $inc and
// comments appended with $push, both atomic per document.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	postsCollection      = "posts"
	usersCollection      = "users"
	categoriesCollection = "categories"
)

// Connect dials the server and verifies the connection before returning the
// client handle. The handle is passed explicitly to the storages, never held
// as a package global.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}
