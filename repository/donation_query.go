package repository

import (
	"context"
	"database/sql"
	"strings"

	"sewa/models"
)

// ListAvailable returns available donations, newest first, narrowed by f.
func (r *DonationRepository) ListAvailable(ctx context.Context, f AvailableFilter) ([]*models.Donation, error) {
	where := []string{"d.status = ?"}
	args := []any{string(models.DonationAvailable)}
	if city := strings.TrimSpace(f.City); city != "" {
		where = append(where, "d.city = ?")
		args = append(args, city)
	}
	if f.ExcludeRejectedBy != "" {
		where = append(where, "NOT EXISTS (SELECT 1 FROM donation_rejections r WHERE r.donation_id = d.id AND r.ngo_id = ?)")
		args = append(args, f.ExcludeRejectedBy)
	}
	query := `SELECT ` + donationColumns + ` FROM donations d WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY d.created_at DESC, d.rowid DESC`
	return r.queryDonations(ctx, query, args...)
}

// ListByHotel returns every donation of a hotel ordered by creation time desc.
func (r *DonationRepository) ListByHotel(ctx context.Context, hotelID string) ([]*models.Donation, error) {
	return r.queryDonations(ctx, `SELECT `+donationColumns+` FROM donations d WHERE d.hotel_id = ? ORDER BY d.created_at DESC, d.rowid DESC`, hotelID)
}

// ListAcceptedByNgo returns donations the NGO has taken, most recently accepted first.
func (r *DonationRepository) ListAcceptedByNgo(ctx context.Context, ngoID string) ([]*models.Donation, error) {
	return r.queryDonations(ctx, `
SELECT `+donationColumns+`
FROM donations d
WHERE d.accepted_by_ngo_id = ? AND d.status = ?
ORDER BY d.accepted_at DESC, d.rowid DESC`, ngoID, string(models.DonationTaken))
}

func (r *DonationRepository) queryDonations(ctx context.Context, query string, args ...any) ([]*models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDonationRows(rows)
}

func scanDonationRows(rows *sql.Rows) ([]*models.Donation, error) {
	out := []*models.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
