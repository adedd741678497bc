package donation

import (
	"context"
	"fmt"
	"strings"

	"sewa/internal/apperr"
	"sewa/internal/expiry"
	"sewa/internal/geo"
	"sewa/models"
	"sewa/repository"
)

// AllCities is reported as the applied filter when no NGO city narrowed the listing.
const AllCities = "Showing all available donations (no NGO filter)"

// Listing is an available donation annotated for an NGO.
type Listing struct {
	*models.Donation
	HoursRemaining  int      `json:"hours_remaining"`
	ExpiresIn       string   `json:"expires_in"`
	ShowExactExpiry bool     `json:"show_exact_expiry"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
}

// AvailableList is the result of ListAvailable.
type AvailableList struct {
	Donations      []Listing `json:"donations"`
	FilteredByCity string    `json:"filtered_by_city"`
}

// ListAvailable returns donations an NGO can still accept, newest first.
// With an ngoID, donations that NGO rejected are hidden and, when the NGO
// has a city on file, only that city's donations are listed.
func (s *Service) ListAvailable(ctx context.Context, ngoID string) (*AvailableList, error) {
	s.sweep(ctx)

	filter := repository.AvailableFilter{ExcludeRejectedBy: strings.TrimSpace(ngoID)}
	var origin *geo.Point
	if filter.ExcludeRejectedBy != "" && s.ngos != nil {
		ngo, err := s.ngos.GetByID(ctx, filter.ExcludeRejectedBy)
		if err != nil {
			return nil, apperr.Internal(err, "could not load ngo")
		}
		if ngo != nil {
			filter.City = strings.TrimSpace(ngo.City)
			if p, ok := geo.PointOf(ngo.Latitude, ngo.Longitude); ok {
				origin = &p
			}
		}
	}

	rows, err := s.donations.ListAvailable(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err, "could not list donations")
	}
	now := s.clock.Now()
	out := &AvailableList{Donations: make([]Listing, 0, len(rows)), FilteredByCity: filter.City}
	if out.FilteredByCity == "" {
		out.FilteredByCity = AllCities
	}
	for _, d := range rows {
		// A failed sweep can leave overdue rows marked available.
		if !d.ExpiryAt.After(now) {
			continue
		}
		hours := expiry.HoursRemaining(d.ExpiryAt, now)
		l := Listing{
			Donation:        d,
			HoursRemaining:  hours,
			ExpiresIn:       fmt.Sprintf("%d hours", hours),
			ShowExactExpiry: d.ExpiryMismatchWarning,
		}
		if origin != nil {
			if p, ok := geo.PointOf(d.Latitude, d.Longitude); ok {
				km := geo.RoundedKm(*origin, p)
				l.DistanceKm = &km
			}
		}
		out.Donations = append(out.Donations, l)
	}
	return out, nil
}
