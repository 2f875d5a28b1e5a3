package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/farrow9/user-api/internal/models"
)

const usersCollection = "users"

// Mongo is the MongoDB-backed UserStore. The underlying client pools
// connections and is safe for concurrent use; every operation runs under the
// configured timeout.
type Mongo struct {
	client  *mongo.Client
	col     *mongo.Collection
	timeout time.Duration
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Mongo{
		client:  client,
		col:     client.Database(dbName).Collection(usersCollection),
		timeout: timeout,
	}, nil
}

// EnsureIndexes creates the unique index on user_id. The index closes the
// check-then-insert race between concurrent signups: the second insert fails
// with a duplicate-key error instead of creating a second record. The index
// is partial so records without a user_id (arbitrary profile documents) do
// not collide with each other.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"user_id": bson.M{"$exists": true}}),
	})
	if err != nil {
		return fmt.Errorf("create user_id index: %w", err)
	}
	return nil
}

func (m *Mongo) FindByUserID(ctx context.Context, userID string) (*models.User, error) {
	return m.findOne(ctx, bson.M{"user_id": userID})
}

func (m *Mongo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *Mongo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	var u models.User
	err := m.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("find user", err)
	}
	return &u, nil
}

func (m *Mongo) Insert(ctx context.Context, u *models.User) (primitive.ObjectID, error) {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	res, err := m.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, ErrDuplicateUserID
	}
	if err != nil {
		return primitive.NilObjectID, unavailable("insert user", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, unavailable("insert user", fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	return id, nil
}

func (m *Mongo) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (int64, error) {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	res, err := m.col.UpdateByID(ctx, id, bson.M{"$set": fields})
	if mongo.IsDuplicateKeyError(err) {
		return 0, ErrDuplicateUserID
	}
	if err != nil {
		return 0, unavailable("update user", err)
	}
	return res.MatchedCount, nil
}

func (m *Mongo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, unavailable("delete user", err)
	}
	return res.DeletedCount, nil
}

func (m *Mongo) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, unavailable("list users", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, unavailable("list users", err)
	}
	return users, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	if err := m.client.Ping(ctx, nil); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close releases the client's connection pool.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
