package knowledge

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements VectorStore on a MongoDB collection. Similarity is
// computed client-side, which is adequate for the snippet volumes the portal
// indexes per tenant.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

const mongoCloseTimeout = 5 * time.Second

func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("mongo collection name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (ms *MongoStore) StoreSnippet(ctx context.Context, source, content string, embedding []float32) error {
	if ms == nil || ms.collection == nil {
		return nil
	}
	doc := bson.M{
		"source":     source,
		"content":    content,
		"embedding":  append([]float32(nil), embedding...),
		"created_at": time.Now().UTC(),
	}
	_, err := ms.collection.InsertOne(ctx, doc)
	return err
}

func (ms *MongoStore) SearchSnippets(ctx context.Context, queryEmbedding []float32, limit int) ([]Snippet, error) {
	if ms == nil || ms.collection == nil {
		return nil, nil
	}
	if limit <= 0 {
		return nil, nil
	}
	cursor, err := ms.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snippets []Snippet
	var id int64
	for cursor.Next(ctx) {
		var doc struct {
			Source    string    `bson:"source"`
			Content   string    `bson:"content"`
			Embedding []float32 `bson:"embedding"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		id++
		snippets = append(snippets, Snippet{
			ID:        id,
			Source:    doc.Source,
			Content:   doc.Content,
			Embedding: doc.Embedding,
			Score:     cosineSimilarity(queryEmbedding, doc.Embedding),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	sort.Slice(snippets, func(i, j int) bool { return snippets[i].Score > snippets[j].Score })
	if len(snippets) > limit {
		snippets = snippets[:limit]
	}
	return snippets, nil
}

func (ms *MongoStore) Close() error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

var _ VectorStore = (*MongoStore)(nil)
