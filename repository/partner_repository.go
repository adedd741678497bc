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

// HotelRepository is the SQLite HotelStore.
type HotelRepository struct {
	db *sql.DB
}

func NewHotelRepository(db *sql.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

var _ HotelStore = (*HotelRepository)(nil)

const hotelColumns = `id, hotel_name, manager_name, email, phone, address, city, license_number, verification_status, created_at`

// Create inserts a hotel. Verification status defaults to 'pending'.
// ErrDuplicate is returned when the email or license number is taken.
func (r *HotelRepository) Create(ctx context.Context, h *models.Hotel) (*models.Hotel, error) {
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
	_, err := r.db.ExecContext(ctx, `INSERT INTO hotels (`+hotelColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		h.ID, h.HotelName, h.ManagerName, h.Email, h.Phone, h.Address, nullString(h.City), h.LicenseNumber,
		string(h.VerificationStatus), toMillis(h.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert hotel: %w", err)
	}
	return r.GetByID(ctx, h.ID)
}

func (r *HotelRepository) GetByID(ctx context.Context, id string) (*models.Hotel, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	h, err := scanHotel(r.db.QueryRowContext(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}

// List returns hotels newest first; a nil status lists all of them.
func (r *HotelRepository) List(ctx context.Context, status *models.VerificationStatus) ([]*models.Hotel, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	query := `SELECT ` + hotelColumns + ` FROM hotels`
	var args []any
	if status != nil {
		query += ` WHERE verification_status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *HotelRepository) UpdateVerification(ctx context.Context, id string, status models.VerificationStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE hotels SET verification_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanHotel(s rowScanner) (*models.Hotel, error) {
	var h models.Hotel
	var city sql.NullString
	var status string
	var createdAt int64
	if err := s.Scan(&h.ID, &h.HotelName, &h.ManagerName, &h.Email, &h.Phone, &h.Address, &city, &h.LicenseNumber, &status, &createdAt); err != nil {
		return nil, err
	}
	h.City = city.String
	h.VerificationStatus = models.VerificationStatus(status)
	h.CreatedAt = fromMillis(createdAt)
	return &h, nil
}

// NgoRepository is the SQLite NgoStore.
type NgoRepository struct {
	db *sql.DB
}

func NewNgoRepository(db *sql.DB) *NgoRepository {
	return &NgoRepository{db: db}
}

var _ NgoStore = (*NgoRepository)(nil)

const ngoColumns = `id, organization_name, contact_person, email, phone, address, city, license_number, latitude, longitude, verification_status, created_at`

// Create inserts an NGO. Verification status defaults to 'pending'.
func (r *NgoRepository) Create(ctx context.Context, n *models.Ngo) (*models.Ngo, error) {
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
	_, err := r.db.ExecContext(ctx, `INSERT INTO ngos (`+ngoColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		n.ID, n.OrganizationName, n.ContactPerson, n.Email, n.Phone, n.Address, n.City, n.LicenseNumber,
		nullFloat(n.Latitude), nullFloat(n.Longitude), string(n.VerificationStatus), toMillis(n.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert ngo: %w", err)
	}
	return r.GetByID(ctx, n.ID)
}

func (r *NgoRepository) GetByID(ctx context.Context, id string) (*models.Ngo, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	n, err := scanNgo(r.db.QueryRowContext(ctx, `SELECT `+ngoColumns+` FROM ngos WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// List returns NGOs newest first; a nil status lists all of them.
func (r *NgoRepository) List(ctx context.Context, status *models.VerificationStatus) ([]*models.Ngo, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	query := `SELECT ` + ngoColumns + ` FROM ngos`
	var args []any
	if status != nil {
		query += ` WHERE verification_status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Ngo{}
	for rows.Next() {
		n, err := scanNgo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NgoRepository) UpdateVerification(ctx context.Context, id string, status models.VerificationStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE ngos SET verification_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanNgo(s rowScanner) (*models.Ngo, error) {
	var n models.Ngo
	var lat, lng sql.NullFloat64
	var status string
	var createdAt int64
	if err := s.Scan(&n.ID, &n.OrganizationName, &n.ContactPerson, &n.Email, &n.Phone, &n.Address, &n.City, &n.LicenseNumber,
		&lat, &lng, &status, &createdAt); err != nil {
		return nil, err
	}
	n.Latitude = floatPtr(lat)
	n.Longitude = floatPtr(lng)
	n.VerificationStatus = models.VerificationStatus(status)
	n.CreatedAt = fromMillis(createdAt)
	return &n, nil
}
