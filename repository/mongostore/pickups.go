package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"sewa/models"
	"sewa/repository"
)

// PickupStore implements repository.PickupStore.
type PickupStore struct {
	coll *mongo.Collection
}

var _ repository.PickupStore = (*PickupStore)(nil)

// Create relies on the pending_ngo_otp partial unique index for ErrDuplicate.
func (s *PickupStore) Create(ctx context.Context, p *models.Pickup) (*models.Pickup, error) {
	if p == nil {
		return nil, errors.New("pickup is nil")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.PickupPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return nil, wrapInsert("pickup", err)
	}
	return s.GetByID(ctx, p.ID)
}

func (s *PickupStore) GetByID(ctx context.Context, id string) (*models.Pickup, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *PickupStore) FindPending(ctx context.Context, ngoID, otp string) (*models.Pickup, error) {
	return s.findOne(ctx, bson.M{"ngo_id": ngoID, "otp": otp, "status": models.PickupPending})
}

func (s *PickupStore) findOne(ctx context.Context, filter bson.M) (*models.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	var p models.Pickup
	if err := s.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find pickup: %w", err)
	}
	return &p, nil
}

// Confirm flips pending to confirmed only while the code is still valid at now.
func (s *PickupStore) Confirm(ctx context.Context, id, otp string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	res, err := s.coll.UpdateOne(ctx,
		bson.M{
			"_id":            id,
			"otp":            otp,
			"status":         models.PickupPending,
			"otp_expires_at": bson.M{"$gte": now},
		},
		bson.M{"$set": bson.M{"status": models.PickupConfirmed, "confirmed_at": now}},
	)
	if err != nil {
		return false, fmt.Errorf("cannot confirm pickup: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (s *PickupStore) ListByHotel(ctx context.Context, hotelID string) ([]*models.Pickup, error) {
	return findAll[models.Pickup](ctx, s.coll, bson.M{"hotel_id": hotelID}, newestFirst("created_at"))
}

func (s *PickupStore) ListByNgo(ctx context.Context, ngoID string) ([]*models.Pickup, error) {
	return findAll[models.Pickup](ctx, s.coll, bson.M{"ngo_id": ngoID}, newestFirst("created_at"))
}
