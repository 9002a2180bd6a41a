// Package mongodb connects to the MongoDB deployment of the mongodb document store.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Mongo holds a connected client and the database documents live in.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect opens a client for url, pings it and selects database.
func Connect(ctx context.Context, url, database string) (*Mongo, error) {
	if url == "" {
		return nil, fmt.Errorf("mongo URL is empty")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database name is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(url).
		SetServerSelectionTimeout(connectTimeout)
	if err := clientOptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mongo URL: %w", err)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	return &Mongo{Client: client, Database: client.Database(database)}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck verifies the mongo connection is alive.
func (m *Mongo) HealthCheck(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}
