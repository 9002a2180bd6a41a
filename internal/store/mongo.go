package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentsCollection = "documents"

type mongoDocument struct {
	ID        string    `bson:"_id"`
	Namespace string    `bson:"namespace"`
	Key       string    `bson:"key"`
	Document  string    `bson:"document"` // raw JSON keeps the timetable key order
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoBackend stores documents in the "documents" collection, one per namespace and key
type MongoBackend struct {
	collection *mongo.Collection
	namespace  string
}

func NewMongoBackend(database *mongo.Database, namespace string) *MongoBackend {
	return &MongoBackend{
		collection: database.Collection(documentsCollection),
		namespace:  namespace,
	}
}

func (backend *MongoBackend) id(key string) string {
	return backend.namespace + ":" + key
}

func (backend *MongoBackend) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var document mongoDocument
	err := backend.collection.FindOne(ctx, bson.M{"_id": backend.id(key)}).Decode(&document)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("finding document %v: %w", key, err)
	}
	return []byte(document.Document), nil
}

func (backend *MongoBackend) Put(ctx context.Context, key string, document []byte) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	replacement := mongoDocument{
		ID:        backend.id(key),
		Namespace: backend.namespace,
		Key:       key,
		Document:  string(document),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := backend.collection.ReplaceOne(ctx,
		bson.M{"_id": replacement.ID},
		replacement,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("replacing document %v: %w", key, err)
	}
	return nil
}
