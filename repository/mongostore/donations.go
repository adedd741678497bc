package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sewa/models"
	"sewa/repository"
)

// DonationStore implements repository.DonationStore.
type DonationStore struct {
	coll *mongo.Collection
}

var _ repository.DonationStore = (*DonationStore)(nil)

func normalizeDonation(d *models.Donation) *models.Donation {
	if d.Images == nil {
		d.Images = []string{}
	}
	if d.RejectedBy == nil {
		d.RejectedBy = []string{}
	}
	return d
}

func (s *DonationStore) Create(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	if d == nil {
		return nil, errors.New("donation is nil")
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = models.DonationAvailable
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}
	// $addToSet needs an array, never null.
	normalizeDonation(d)

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if _, err := s.coll.InsertOne(ctx, d); err != nil {
		return nil, wrapInsert("donation", err)
	}
	return s.GetByID(ctx, d.ID)
}

func (s *DonationStore) GetByID(ctx context.Context, id string) (*models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	var d models.Donation
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find donation: %w", err)
	}
	return normalizeDonation(&d), nil
}

func (s *DonationStore) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"status": models.DonationAvailable, "expiry_at": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"status": models.DonationExpired, "updated_at": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("cannot mark donations expired: %w", err)
	}
	return res.ModifiedCount, nil
}

// Accept is a single FindOneAndUpdate guarded by status and expiry, so
// concurrent accepts have exactly one winner.
func (s *DonationStore) Accept(ctx context.Context, id string, a repository.Acceptance) (*models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	filter := bson.M{
		"_id":       id,
		"status":    models.DonationAvailable,
		"expiry_at": bson.M{"$gt": a.At},
	}
	update := bson.M{"$set": bson.M{
		"status":             models.DonationTaken,
		"accepted_at":        a.At,
		"accepted_by_ngo":    a.NgoName,
		"accepted_by_ngo_id": a.NgoID,
		"updated_at":         a.At,
	}}
	var d models.Donation
	err := s.coll.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot accept donation: %w", err)
	}
	return normalizeDonation(&d), nil
}

func (s *DonationStore) AddRejection(ctx context.Context, id, ngoID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"rejected_by": ngoID}})
	if err != nil {
		return false, fmt.Errorf("cannot add rejection: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *DonationStore) ListAvailable(ctx context.Context, f repository.AvailableFilter) ([]*models.Donation, error) {
	filter := bson.M{"status": models.DonationAvailable}
	if city := strings.TrimSpace(f.City); city != "" {
		filter["city"] = city
	}
	if f.ExcludeRejectedBy != "" {
		filter["rejected_by"] = bson.M{"$ne": f.ExcludeRejectedBy}
	}
	return s.list(ctx, filter, newestFirst("created_at"))
}

func (s *DonationStore) ListByHotel(ctx context.Context, hotelID string) ([]*models.Donation, error) {
	return s.list(ctx, bson.M{"hotel_id": hotelID}, newestFirst("created_at"))
}

func (s *DonationStore) ListAcceptedByNgo(ctx context.Context, ngoID string) ([]*models.Donation, error) {
	return s.list(ctx, bson.M{"accepted_by_ngo_id": ngoID, "status": models.DonationTaken}, newestFirst("accepted_at"))
}

func (s *DonationStore) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Donation, error) {
	out, err := findAll[models.Donation](ctx, s.coll, filter, opts)
	if err != nil {
		return nil, err
	}
	for _, d := range out {
		normalizeDonation(d)
	}
	return out, nil
}
