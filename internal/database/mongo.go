package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// hides the backend's own _id from every read
var noObjectID = bson.M{"_id": 0}

type MongoStore struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// NewMongoStore connects to MongoDB and verifies the connection
func NewMongoStore(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	store := &MongoStore{
		client:  client,
		db:      client.Database(database),
		timeout: timeout,
	}

	if err := store.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return store, nil
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name), timeout: s.timeout}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Ping(ctx, nil); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the repositories rely on
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	for _, name := range Collections {
		models := []mongo.IndexModel{{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}}
		for _, field := range uniqueFields[name] {
			models = append(models, mongo.IndexModel{
				Keys:    bson.D{{Key: field, Value: 1}},
				Options: options.Index().SetUnique(true),
			})
		}

		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, classifyMongoError(err))
		}
	}

	return nil
}

type mongoCollection struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func (c *mongoCollection) FindOne(ctx context.Context, filter Filter, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.coll.FindOne(ctx, toBSON(filter), options.FindOne().SetProjection(noObjectID)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return classifyMongoError(err)
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter, opts FindOptions, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	findOpts := options.Find().SetProjection(noObjectID)
	if opts.SortBy != "" {
		order := opts.Order
		if order == 0 {
			order = SortAsc
		}
		findOpts.SetSort(bson.D{{Key: opts.SortBy, Value: int(order)}, {Key: "id", Value: 1}})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := c.coll.Find(ctx, toBSON(filter), findOpts)
	if err != nil {
		return classifyMongoError(err)
	}
	defer cursor.Close(ctx)

	return classifyMongoError(cursor.All(ctx, out))
}

func (c *mongoCollection) Insert(ctx context.Context, doc interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return classifyMongoError(err)
	}
	return nil
}

func (c *mongoCollection) Update(ctx context.Context, filter Filter, set Fields) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// An empty $set is rejected by the server, so only report whether it matched
	if len(set) == 0 {
		count, err := c.coll.CountDocuments(ctx, toBSON(filter), options.Count().SetLimit(1))
		return count, classifyMongoError(err)
	}

	result, err := c.coll.UpdateOne(ctx, toBSON(filter), bson.M{"$set": bson.M(set)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, ErrDuplicate
		}
		return 0, classifyMongoError(err)
	}
	return result.MatchedCount, nil
}

func (c *mongoCollection) Upsert(ctx context.Context, filter Filter, set Fields) error {
	if _, ok := filter["id"]; !ok {
		return errors.New("upsert filter must contain id")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.coll.UpdateOne(ctx, toBSON(filter), bson.M{"$set": bson.M(set)}, options.Update().SetUpsert(true))
	return classifyMongoError(err)
}

func (c *mongoCollection) Delete(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.coll.DeleteOne(ctx, toBSON(filter))
	if err != nil {
		return 0, classifyMongoError(err)
	}
	return result.DeletedCount, nil
}

func toBSON(filter Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}

func classifyMongoError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return unavailable(err)
	}
	return err
}
