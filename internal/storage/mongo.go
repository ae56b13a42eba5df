package storage

import (
	"context"
	"fmt"

	"pdf-qa-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists document metadata/content and the append-only query
// log. It knows nothing about the in-memory vector index, which does not
// survive restarts.
type MongoStore struct {
	documents    *mongo.Collection
	queryRecords *mongo.Collection
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		documents:    db.Collection("documents"),
		queryRecords: db.Collection("query_records"),
	}
}

// SaveDocument inserts a new document row. Documents are immutable;
// duplicate filenames are permitted because identity is the upload event.
func (s *MongoStore) SaveDocument(ctx context.Context, doc *models.Document) error {
	if _, err := s.documents.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// AppendQueryRecord appends to the query log. Records are never updated
// or deleted.
func (s *MongoStore) AppendQueryRecord(ctx context.Context, rec *models.QueryRecord) error {
	if _, err := s.queryRecords.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert query record: %w", err)
	}
	return nil
}

// ListDocuments returns uploaded documents, newest first.
func (s *MongoStore) ListDocuments(ctx context.Context, limit int64) ([]models.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	cursor, err := s.documents.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cursor.Close(ctx)

	docs := make([]models.Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

// ListQueryRecords returns the question log, newest first, optionally
// filtered by document.
func (s *MongoStore) ListQueryRecords(ctx context.Context, documentID string, limit int64) ([]models.QueryRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	filter := bson.M{}
	if documentID != "" {
		filter["document_id"] = documentID
	}
	cursor, err := s.queryRecords.Find(ctx, filter,
		options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list query records: %w", err)
	}
	defer cursor.Close(ctx)

	recs := make([]models.QueryRecord, 0)
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode query records: %w", err)
	}
	return recs, nil
}
