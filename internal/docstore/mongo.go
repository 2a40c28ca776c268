package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "documents"

// mongoDocument is the envelope stored in MongoDB. Every FoodHive collection
// shares one Mongo collection, keyed by (user_id, collection, doc_id).
type mongoDocument struct {
	UserID     string    `bson:"user_id"`
	Collection string    `bson:"collection"`
	DocID      string    `bson:"doc_id"`
	Data       bson.M    `bson:"data"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// MongoStore is the remote document backend.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects to uri and prepares the documents collection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(mongoCollection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "collection", Value: 1}, {Key: "doc_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "collection", Value: 1}, {Key: "created_at", Value: 1}},
		},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
	}

	return &MongoStore{client: client, coll: coll, now: time.Now}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func docFilter(userID, collection, id string) bson.M {
	return bson.M{"user_id": userID, "collection": collection, "doc_id": id}
}

func (s *MongoStore) Get(ctx context.Context, userID, collection, id string) (Document, error) {
	var md mongoDocument
	err := s.coll.FindOne(ctx, docFilter(userID, collection, id)).Decode(&md)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return md.toDocument(), nil
}

func (s *MongoStore) Set(ctx context.Context, userID, collection, id string, data map[string]any) error {
	now := s.now().UTC()
	update := bson.M{
		"$set":         bson.M{"data": data, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := s.coll.UpdateOne(ctx, docFilter(userID, collection, id), update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Add(ctx context.Context, userID, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, userID, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MongoStore) Update(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	set := bson.M{"updated_at": s.now().UTC()}
	for k, v := range fields {
		set["data."+k] = v
	}
	res, err := s.coll.UpdateOne(ctx, docFilter(userID, collection, id), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, userID, collection, id string) error {
	if _, err := s.coll.DeleteOne(ctx, docFilter(userID, collection, id)); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, userID, collection string) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"user_id": userID, "collection": collection}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []Document
	for cur.Next(ctx) {
		var md mongoDocument
		if err := cur.Decode(&md); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
		}
		docs = append(docs, md.toDocument())
	}
	return docs, cur.Err()
}

func (s *MongoStore) DeleteCollection(ctx context.Context, userID, collection string) error {
	filter := bson.M{
		"user_id": userID,
		"$or": bson.A{
			bson.M{"collection": collection},
			bson.M{"collection": bson.M{"$regex": "^" + regexp.QuoteMeta(collection+"/")}},
		},
	}
	if _, err := s.coll.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) Users(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "user_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]string, 0, len(values))
	for _, v := range values {
		if u, ok := v.(string); ok {
			users = append(users, u)
		}
	}
	sort.Strings(users)
	return users, nil
}

func (md mongoDocument) toDocument() Document {
	data, _ := normalizeBSON(md.Data).(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	return Document{
		ID:        md.DocID,
		Data:      data,
		CreatedAt: md.CreatedAt,
		UpdatedAt: md.UpdatedAt,
	}
}

// normalizeBSON converts driver types into the plain Go shapes the JSON
// backend produces, so the field getters see the same values everywhere.
func normalizeBSON(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeBSON(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeBSON(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeBSON(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeBSON(val)
		}
		return out
	case int32:
		return int64(t)
	case primitive.DateTime:
		return t.Time().UnixMilli()
	case primitive.ObjectID:
		return t.Hex()
	default:
		return v
	}
}
