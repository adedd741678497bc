// Package mongostore implements the repository stores on MongoDB. It is
// selected with STORE_BACKEND=mongo.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"sewa/internal/logger"
	"sewa/repository"
)

const (
	readTimeout  = 3 * time.Second
	listTimeout  = 5 * time.Second
	writeTimeout = 3 * time.Second
)

// Store owns the client and database handle shared by every collection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

// Connect dials MongoDB, pings it and ensures indexes.
func Connect(ctx context.Context, uri, dbName string, log *zap.Logger) (*Store, error) {
	log = logger.OrNop(log)
	if dbName == "" {
		dbName = "sewa"
	}
	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName), log: log}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info("connected to MongoDB", zap.String("database", dbName))
	return s, nil
}

// Stores returns the repository stores backed by this database.
func (s *Store) Stores() repository.Stores {
	return repository.Stores{
		Donations: &DonationStore{coll: s.db.Collection("donations")},
		Pickups:   &PickupStore{coll: s.db.Collection("pickups")},
		Hotels:    &HotelStore{coll: s.db.Collection("hotels")},
		Ngos:      &NgoStore{coll: s.db.Collection("ngos")},
	}
}

// EnsureIndexes creates the uniqueness and lookup indexes the stores rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		"donations": {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiry_at", Value: 1}}},
			{Keys: bson.D{{Key: "hotel_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "accepted_by_ngo_id", Value: 1}, {Key: "accepted_at", Value: -1}}},
		},
		"pickups": {
			// A pending (ngo, otp) pair must be unique so verification is unambiguous.
			{
				Keys: bson.D{{Key: "ngo_id", Value: 1}, {Key: "otp", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": "pending"}).
					SetName("pending_ngo_otp"),
			},
			{Keys: bson.D{{Key: "hotel_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"hotels": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "license_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"ngos": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "license_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, idx := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("cannot create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// Drop removes the whole database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
	}
	s.log.Info("disconnected from MongoDB")
	return nil
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}, {Key: "_id", Value: -1}})
}

func wrapInsert(what string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return fmt.Errorf("cannot insert %s: %w", what, err)
}

func notFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// findAll runs a query and decodes every document into a slice of T.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions) ([]*T, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find in %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)
	out := []*T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", coll.Name(), err)
	}
	return out, nil
}
