package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finance-tracker/backend/internal/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores documents in a single MongoDB collection.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	broker     *Broker
}

type mongoDocument struct {
	Path      string    `bson:"_id"`
	Parent    string    `bson:"parent"`
	Data      bson.M    `bson:"data"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMongo connects to the MongoDB server at uri and uses the documents
// collection of database dbName.
func NewMongo(ctx context.Context, uri, dbName string, broker *Broker) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(dbName).Collection("documents")
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "parent", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB index: %w", err)
	}

	log.Info().Str("database", dbName).Msg("connected to MongoDB")

	return &Mongo{
		client:     client,
		collection: collection,
		broker:     broker,
	}, nil
}

func (m *Mongo) Get(ctx context.Context, path string) (Document, error) {
	if _, _, err := documentPath(path); err != nil {
		return Document{}, err
	}

	var doc mongoDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": path}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if err != nil {
		return Document{}, fmt.Errorf("loading %s: %w", path, err)
	}

	return doc.document(), nil
}

func (m *Mongo) Set(ctx context.Context, path string, data map[string]any, opts SetOptions) error {
	parent, _, err := documentPath(path)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	set := bson.M{"parent": parent, "updatedAt": now}
	if opts.Merge {
		for k, v := range data {
			set["data."+k] = v
		}
	} else {
		set["data"] = data
	}

	_, err = m.collection.UpdateOne(ctx,
		bson.M{"_id": path},
		bson.M{"$set": set, "$setOnInsert": bson.M{"createdAt": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	m.broker.Publish(Change{Operation: OperationSet, Path: path, Data: data})
	return nil
}

func (m *Mongo) Update(ctx context.Context, path string, fields map[string]any) error {
	if _, _, err := documentPath(path); err != nil {
		return err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set["data."+k] = v
	}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": path}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	m.broker.Publish(Change{Operation: OperationUpdate, Path: path, Data: fields})
	return nil
}

func (m *Mongo) Delete(ctx context.Context, path string) error {
	if _, _, err := documentPath(path); err != nil {
		return err
	}

	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": path})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	m.broker.Publish(Change{Operation: OperationDelete, Path: path})
	return nil
}

func (m *Mongo) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := collectionPath(collection); err != nil {
		return "", err
	}

	id := uuid.NewString()
	path := RecordPath(collection, id)
	now := time.Now().UTC()

	_, err := m.collection.InsertOne(ctx, mongoDocument{
		Path:      path,
		Parent:    collection,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}

	m.broker.Publish(Change{Operation: OperationAdd, Path: path, Data: data})
	return id, nil
}

func (m *Mongo) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := collectionPath(collection); err != nil {
		return nil, err
	}

	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	filter := bson.M{"parent": collection}
	for _, f := range filters {
		filter["data."+f.Field] = f.Value
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	docs := []Document{}
	for cursor.Next(ctx) {
		var doc mongoDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding document in %s: %w", collection, err)
		}
		docs = append(docs, doc.document())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}

	return docs, nil
}

func (m *Mongo) Subscribe(ctx context.Context, path string, onChange func([]Document), onError func(error)) (Unsubscribe, error) {
	return subscribe(ctx, m.broker, m, path, onChange, onError)
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (d mongoDocument) document() Document {
	_, id, _ := documentPath(d.Path)
	return Document{
		ID:        id,
		Path:      d.Path,
		Data:      d.Data,
		CreatedAt: d.CreatedAt,
	}
}
