package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sewa/models"
)

// DonationRepository is the SQLite DonationStore.
type DonationRepository struct {
	db *sql.DB
}

// NewDonationRepository creates a new DonationRepository.
func NewDonationRepository(db *sql.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

var _ DonationStore = (*DonationRepository)(nil)

// donationColumns selects a donation row aliased as d. Rejections are folded
// into a comma-delimited list.
const donationColumns = `d.id, d.hotel_id, d.hotel_name, d.food_type, d.quantity, d.serves_people, d.description,
d.pickup_address, d.city, d.latitude, d.longitude, d.images,
d.prepared_at, d.hotel_expiry_at, d.auto_expiry_at, d.expiry_at,
d.expiry_difference_hours, d.expiry_mismatch_warning, d.expected_shelf_life_hours,
d.status, d.accepted_at, d.accepted_by_ngo, d.accepted_by_ngo_id, d.created_at, d.updated_at,
(SELECT json_group_array(r.ngo_id) FROM donation_rejections r WHERE r.donation_id = d.id)`

// Create inserts a new donation. Status defaults to 'available' and the id to a new UUID.
func (r *DonationRepository) Create(ctx context.Context, d *models.Donation) (*models.Donation, error) {
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
	if d.Images == nil {
		d.Images = []string{}
	}
	images, err := json.Marshal(d.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_, err = r.db.ExecContext(ctx, `
INSERT INTO donations (
  id, hotel_id, hotel_name, food_type, quantity, serves_people, description,
  pickup_address, city, latitude, longitude, images,
  prepared_at, hotel_expiry_at, auto_expiry_at, expiry_at,
  expiry_difference_hours, expiry_mismatch_warning, expected_shelf_life_hours,
  status, created_at, updated_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.HotelID, d.HotelName, string(d.FoodType), d.Quantity, d.ServesPeople, d.Description,
		d.PickupAddress, nullString(d.City), nullFloat(d.Latitude), nullFloat(d.Longitude), string(images),
		toMillis(d.PreparedAt), toMillis(d.HotelExpiryAt), toMillis(d.AutoExpiryAt), toMillis(d.ExpiryAt),
		d.ExpiryDifferenceHours, boolInt(d.ExpiryMismatchWarning), d.ExpectedShelfLifeHours,
		string(d.Status), toMillis(d.CreatedAt), toMillis(d.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert donation: %w", err)
	}
	created, err := r.GetByID(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("created donation not found: id=%s", d.ID)
	}
	return created, nil
}

// GetByID fetches a donation by its ID.
func (r *DonationRepository) GetByID(ctx context.Context, id string) (*models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations d WHERE d.id = ?`, id)
	d, err := scanDonation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// MarkExpired transitions every overdue available donation to expired in one statement.
func (r *DonationRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE donations SET status = ?, updated_at = ? WHERE status = ? AND expiry_at <= ?`,
		string(models.DonationExpired), toMillis(now), string(models.DonationAvailable), toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("mark expired: %w", err)
	}
	return res.RowsAffected()
}

// Accept performs the available -> taken transition as a single conditional
// UPDATE so that concurrent accepts have exactly one winner.
func (r *DonationRepository) Accept(ctx context.Context, id string, a Acceptance) (*models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `
UPDATE donations
SET status = ?, accepted_at = ?, accepted_by_ngo = ?, accepted_by_ngo_id = ?, updated_at = ?
WHERE id = ? AND status = ? AND expiry_at > ?`,
		string(models.DonationTaken), toMillis(a.At), a.NgoName, a.NgoID, toMillis(a.At),
		id, string(models.DonationAvailable), toMillis(a.At))
	if err != nil {
		return nil, fmt.Errorf("accept donation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// AddRejection records that ngoID declined the donation. Repeated calls are no-ops.
func (r *DonationRepository) AddRejection(ctx context.Context, id, ngoID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM donations WHERE id = ?`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO donation_rejections (donation_id, ngo_id) VALUES (?, ?)`, id, ngoID); err != nil {
		return true, fmt.Errorf("add rejection: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(s rowScanner) (*models.Donation, error) {
	var d models.Donation
	var foodType, status, images string
	var city, acceptedBy, acceptedByID, rejected sql.NullString
	var lat, lng sql.NullFloat64
	var preparedAt, hotelExpiryAt, autoExpiryAt, expiryAt, createdAt, updatedAt int64
	var acceptedAt sql.NullInt64
	var mismatch int
	err := s.Scan(&d.ID, &d.HotelID, &d.HotelName, &foodType, &d.Quantity, &d.ServesPeople, &d.Description,
		&d.PickupAddress, &city, &lat, &lng, &images,
		&preparedAt, &hotelExpiryAt, &autoExpiryAt, &expiryAt,
		&d.ExpiryDifferenceHours, &mismatch, &d.ExpectedShelfLifeHours,
		&status, &acceptedAt, &acceptedBy, &acceptedByID, &createdAt, &updatedAt,
		&rejected)
	if err != nil {
		return nil, err
	}
	d.FoodType = models.FoodCategory(foodType)
	d.Status = models.DonationStatus(status)
	d.City = city.String
	d.Latitude = floatPtr(lat)
	d.Longitude = floatPtr(lng)
	d.Images = []string{}
	if images != "" {
		if err := json.Unmarshal([]byte(images), &d.Images); err != nil {
			return nil, fmt.Errorf("decode images for %s: %w", d.ID, err)
		}
	}
	d.PreparedAt = fromMillis(preparedAt)
	d.HotelExpiryAt = fromMillis(hotelExpiryAt)
	d.AutoExpiryAt = fromMillis(autoExpiryAt)
	d.ExpiryAt = fromMillis(expiryAt)
	d.ExpiryMismatchWarning = mismatch != 0
	d.AcceptedAt = timePtr(acceptedAt)
	d.AcceptedByNgo = acceptedBy.String
	d.AcceptedByNgoID = acceptedByID.String
	d.CreatedAt = fromMillis(createdAt)
	d.UpdatedAt = fromMillis(updatedAt)
	d.RejectedBy = []string{}
	if rejected.Valid && rejected.String != "" {
		if err := json.Unmarshal([]byte(rejected.String), &d.RejectedBy); err != nil {
			return nil, fmt.Errorf("decode rejections for %s: %w", d.ID, err)
		}
	}
	return &d, nil
}
