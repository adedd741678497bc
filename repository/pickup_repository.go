package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sewa/models"
)

// PickupRepository is the SQLite PickupStore.
type PickupRepository struct {
	db *sql.DB
}

// NewPickupRepository creates a new PickupRepository.
func NewPickupRepository(db *sql.DB) *PickupRepository {
	return &PickupRepository{db: db}
}

var _ PickupStore = (*PickupRepository)(nil)

const pickupColumns = `id, hotel_id, ngo_id, donation_id, otp, otp_expires_at, status, confirmed_at, created_at`

// Create inserts a pending pickup.
func (r *PickupRepository) Create(ctx context.Context, p *models.Pickup) (*models.Pickup, error) {
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
	_, err := r.db.ExecContext(ctx, `INSERT INTO pickups (id, hotel_id, ngo_id, donation_id, otp, otp_expires_at, status, confirmed_at, created_at) VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.HotelID, p.NgoID, p.DonationID, p.OTP, toMillis(p.OTPExpiresAt), string(p.Status), nullMillis(p.ConfirmedAt), toMillis(p.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert pickup: %w", err)
	}
	out := *p
	out.OTPExpiresAt = fromMillis(toMillis(p.OTPExpiresAt))
	out.CreatedAt = fromMillis(toMillis(p.CreatedAt))
	return &out, nil
}

// GetByID fetches a pickup by its ID.
func (r *PickupRepository) GetByID(ctx context.Context, id string) (*models.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	p, err := scanPickup(r.db.QueryRowContext(ctx, `SELECT `+pickupColumns+` FROM pickups WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// FindPending returns the pending pickup holding (ngoID, otp), if any.
func (r *PickupRepository) FindPending(ctx context.Context, ngoID, otp string) (*models.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	p, err := scanPickup(r.db.QueryRowContext(ctx, `SELECT `+pickupColumns+` FROM pickups WHERE ngo_id = ? AND otp = ? AND status = ?`,
		ngoID, otp, string(models.PickupPending)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Confirm is the guarded pending -> confirmed write.
func (r *PickupRepository) Confirm(ctx context.Context, id, otp string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `
UPDATE pickups SET status = ?, confirmed_at = ?
WHERE id = ? AND otp = ? AND status = ? AND otp_expires_at >= ?`,
		string(models.PickupConfirmed), toMillis(now), id, otp, string(models.PickupPending), toMillis(now))
	if err != nil {
		return false, fmt.Errorf("confirm pickup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListByHotel returns a hotel's pickups, newest first.
func (r *PickupRepository) ListByHotel(ctx context.Context, hotelID string) ([]*models.Pickup, error) {
	return r.queryPickups(ctx, `SELECT `+pickupColumns+` FROM pickups WHERE hotel_id = ? ORDER BY created_at DESC, rowid DESC`, hotelID)
}

// ListByNgo returns an NGO's pickups, newest first.
func (r *PickupRepository) ListByNgo(ctx context.Context, ngoID string) ([]*models.Pickup, error) {
	return r.queryPickups(ctx, `SELECT `+pickupColumns+` FROM pickups WHERE ngo_id = ? ORDER BY created_at DESC, rowid DESC`, ngoID)
}

func (r *PickupRepository) queryPickups(ctx context.Context, query string, args ...any) ([]*models.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Pickup{}
	for rows.Next() {
		p, err := scanPickup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanPickup(s rowScanner) (*models.Pickup, error) {
	var p models.Pickup
	var status string
	var expiresAt, createdAt int64
	var confirmedAt sql.NullInt64
	if err := s.Scan(&p.ID, &p.HotelID, &p.NgoID, &p.DonationID, &p.OTP, &expiresAt, &status, &confirmedAt, &createdAt); err != nil {
		return nil, err
	}
	p.Status = models.PickupStatus(status)
	p.OTPExpiresAt = fromMillis(expiresAt)
	p.ConfirmedAt = timePtr(confirmedAt)
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}
