package deadletter

import (
	"context"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const DeadLetterCollectionName = "dead_letters"

// MongoStore keeps dead letters in a MongoDB collection, which makes manual recovery
// queries (by product, by cause, by age) straightforward for operators.
type MongoStore struct {
	logger     *zap.Logger
	collection *mongo.Collection
}

const (
	keyRecordedAt = "recorded_at"
	keyProductId  = "event.product_id"
)

// Compile-time type validation
var _ Store = (*MongoStore)(nil)

func NewMongoStore(logger *zap.Logger, db *mongo.Database) *MongoStore {
	return &MongoStore{
		logger:     logger,
		collection: db.Collection(DeadLetterCollectionName),
	}
}

func (m *MongoStore) InitSchema(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.M{keyRecordedAt: -1},
		},
		{
			Keys: bson.M{keyProductId: 1},
		},
	})

	return err
}

func (m *MongoStore) Record(ctx context.Context, letter DeadLetter) error {
	_, err := m.collection.InsertOne(ctx, letter)
	return err
}

func (m *MongoStore) List(ctx context.Context, limit int) ([]DeadLetter, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	opts := options.Find().
		SetSort(bson.M{keyRecordedAt: -1}).
		SetLimit(int64(limit))

	cursor, err := m.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var letters []DeadLetter
	if err := cursor.All(ctx, &letters); err != nil {
		return nil, err
	}

	return letters, nil
}

func (m *MongoStore) Count(ctx context.Context) (int, error) {
	count, err := m.collection.CountDocuments(ctx, bson.D{})
	return int(count), err
}

// Close is a no-op: the store does not own the client connection.
func (m *MongoStore) Close(ctx context.Context) error {
	return nil
}
