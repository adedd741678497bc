package repository

import (
	"context"
	"errors"
	"time"

	"sewa/models"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint
// (partner email/license, or a pending (ngo, otp) pair).
var ErrDuplicate = errors.New("duplicate record")

// Acceptance carries the fields written on the available -> taken transition.
type Acceptance struct {
	NgoID   string
	NgoName string
	At      time.Time
}

// AvailableFilter narrows available-donation listings for a requesting NGO.
type AvailableFilter struct {
	City              string // exact city match when non-empty
	ExcludeRejectedBy string // NGO id whose rejections are hidden
}

// DonationStore persists donations. Lookups return (nil, nil) when absent.
type DonationStore interface {
	Create(ctx context.Context, d *models.Donation) (*models.Donation, error)
	GetByID(ctx context.Context, id string) (*models.Donation, error)
	// MarkExpired moves every available donation with expiry_at <= now to expired.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	// Accept atomically moves an available, unexpired donation to taken.
	// It returns (nil, nil) when no donation matched those conditions.
	Accept(ctx context.Context, id string, a Acceptance) (*models.Donation, error)
	// AddRejection adds ngoID to the rejected set. found is false when the donation does not exist.
	AddRejection(ctx context.Context, id, ngoID string) (found bool, err error)
	ListAvailable(ctx context.Context, f AvailableFilter) ([]*models.Donation, error)
	ListByHotel(ctx context.Context, hotelID string) ([]*models.Donation, error)
	ListAcceptedByNgo(ctx context.Context, ngoID string) ([]*models.Donation, error)
}

// PickupStore persists pickup/OTP records.
type PickupStore interface {
	// Create inserts a pending pickup. It returns ErrDuplicate when the
	// (ngo, otp) pair is already held by another pending pickup.
	Create(ctx context.Context, p *models.Pickup) (*models.Pickup, error)
	GetByID(ctx context.Context, id string) (*models.Pickup, error)
	FindPending(ctx context.Context, ngoID, otp string) (*models.Pickup, error)
	// Confirm atomically moves a pending pickup with a matching otp that has
	// not lapsed at now to confirmed. ok is false when nothing matched.
	Confirm(ctx context.Context, id, otp string, now time.Time) (ok bool, err error)
	ListByHotel(ctx context.Context, hotelID string) ([]*models.Pickup, error)
	ListByNgo(ctx context.Context, ngoID string) ([]*models.Pickup, error)
}

// HotelStore persists donor hotels.
type HotelStore interface {
	Create(ctx context.Context, h *models.Hotel) (*models.Hotel, error)
	GetByID(ctx context.Context, id string) (*models.Hotel, error)
	// List returns hotels newest first, optionally restricted to one verification status.
	List(ctx context.Context, status *models.VerificationStatus) ([]*models.Hotel, error)
	UpdateVerification(ctx context.Context, id string, status models.VerificationStatus) (found bool, err error)
}

// NgoStore persists recipient organizations.
type NgoStore interface {
	Create(ctx context.Context, n *models.Ngo) (*models.Ngo, error)
	GetByID(ctx context.Context, id string) (*models.Ngo, error)
	List(ctx context.Context, status *models.VerificationStatus) ([]*models.Ngo, error)
	UpdateVerification(ctx context.Context, id string, status models.VerificationStatus) (found bool, err error)
}

// Stores groups the store implementations selected at startup.
type Stores struct {
	Donations DonationStore
	Pickups   PickupStore
	Hotels    HotelStore
	Ngos      NgoStore
}
