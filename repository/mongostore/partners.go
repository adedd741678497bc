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

// HotelStore implements repository.HotelStore.
type HotelStore struct {
	coll *mongo.Collection
}

var _ repository.HotelStore = (*HotelStore)(nil)

func (s *HotelStore) Create(ctx context.Context, h *models.Hotel) (*models.Hotel, error) {
	if h == nil {
		return nil, errors.New("hotel is nil")
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.VerificationStatus == "" {
		h.VerificationStatus = models.VerificationPending
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if _, err := s.coll.InsertOne(ctx, h); err != nil {
		return nil, wrapInsert("hotel", err)
	}
	return s.GetByID(ctx, h.ID)
}

func (s *HotelStore) GetByID(ctx context.Context, id string) (*models.Hotel, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	var h models.Hotel
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&h); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find hotel: %w", err)
	}
	return &h, nil
}

func (s *HotelStore) List(ctx context.Context, status *models.VerificationStatus) ([]*models.Hotel, error) {
	return findAll[models.Hotel](ctx, s.coll, statusFilter(status), newestFirst("created_at"))
}

func (s *HotelStore) UpdateVerification(ctx context.Context, id string, status models.VerificationStatus) (bool, error) {
	return updateVerification(ctx, s.coll, id, status)
}

// NgoStore implements repository.NgoStore.
type NgoStore struct {
	coll *mongo.Collection
}

var _ repository.NgoStore = (*NgoStore)(nil)

func (s *NgoStore) Create(ctx context.Context, n *models.Ngo) (*models.Ngo, error) {
	if n == nil {
		return nil, errors.New("ngo is nil")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.VerificationStatus == "" {
		n.VerificationStatus = models.VerificationPending
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return nil, wrapInsert("ngo", err)
	}
	return s.GetByID(ctx, n.ID)
}

func (s *NgoStore) GetByID(ctx context.Context, id string) (*models.Ngo, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	var n models.Ngo
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find ngo: %w", err)
	}
	return &n, nil
}

func (s *NgoStore) List(ctx context.Context, status *models.VerificationStatus) ([]*models.Ngo, error) {
	return findAll[models.Ngo](ctx, s.coll, statusFilter(status), newestFirst("created_at"))
}

func (s *NgoStore) UpdateVerification(ctx context.Context, id string, status models.VerificationStatus) (bool, error) {
	return updateVerification(ctx, s.coll, id, status)
}

func statusFilter(status *models.VerificationStatus) bson.M {
	if status == nil {
		return bson.M{}
	}
	return bson.M{"verification_status": *status}
}

func updateVerification(ctx context.Context, coll *mongo.Collection, id string, status models.VerificationStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"verification_status": status}})
	if err != nil {
		return false, fmt.Errorf("cannot update verification: %w", err)
	}
	return res.MatchedCount > 0, nil
}
