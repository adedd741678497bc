// Package expiry computes the effective expiry of a donation from the donor's
// declared times and the food category's assumed shelf life.
package expiry

import (
	"math"
	"strings"
	"time"

	"sewa/internal/apperr"
	"sewa/models"
)

const (
	// DefaultShelfLifeHours applies to categories missing from the table.
	DefaultShelfLifeHours = 6
	// MismatchThresholdHours is the rounded divergence above which donors and
	// readers are warned that the two expiry estimates disagree.
	MismatchThresholdHours = 2
)

var shelfLifeHours = map[models.FoodCategory]int{
	models.FoodVegan:  24,
	models.FoodVeg:    12,
	models.FoodNonVeg: 6,
}

// ShelfLife returns the assumed safe-consumption window for a category.
func ShelfLife(c models.FoodCategory) time.Duration {
	return time.Duration(ShelfLifeHours(c)) * time.Hour
}

// ShelfLifeHours returns the shelf life of c in whole hours.
func ShelfLifeHours(c models.FoodCategory) int {
	if h, ok := shelfLifeHours[c]; ok {
		return h
	}
	return DefaultShelfLifeHours
}

// Assessment is the outcome of evaluating a donor submission.
type Assessment struct {
	ShelfLifeHours  int
	AutoExpiryAt    time.Time
	ExpiryAt        time.Time
	DifferenceHours int
	MismatchWarning bool
	Status          models.DonationStatus
}

// Evaluate validates the donor-declared times against now and derives the
// effective expiry. The earlier of the donor's and the category's expiry wins.
func Evaluate(preparedAt, hotelExpiryAt time.Time, category models.FoodCategory, now time.Time) (Assessment, error) {
	if preparedAt.IsZero() {
		return Assessment{}, apperr.Validation("invalid preparedAt timestamp")
	}
	if hotelExpiryAt.IsZero() {
		return Assessment{}, apperr.Validation("invalid hotelExpiryAt timestamp")
	}
	if preparedAt.After(now) {
		return Assessment{}, apperr.Validation("preparation time cannot be in the future")
	}
	if !hotelExpiryAt.After(preparedAt) {
		return Assessment{}, apperr.Validation("expiry must be after preparation time")
	}
	if !hotelExpiryAt.After(now) {
		return Assessment{}, apperr.Validation("food has already expired")
	}

	hours := ShelfLifeHours(category)
	auto := preparedAt.Add(time.Duration(hours) * time.Hour)

	effective := auto
	if hotelExpiryAt.Before(auto) {
		effective = hotelExpiryAt
	}

	diff := hotelExpiryAt.Sub(auto)
	if diff < 0 {
		diff = -diff
	}
	diffHours := int(math.Round(diff.Hours()))

	status := models.DonationAvailable
	if effective.Before(now) {
		status = models.DonationExpired
	}

	return Assessment{
		ShelfLifeHours:  hours,
		AutoExpiryAt:    auto,
		ExpiryAt:        effective,
		DifferenceHours: diffHours,
		MismatchWarning: diffHours > MismatchThresholdHours,
		Status:          status,
	}, nil
}

// HoursRemaining returns whole hours until expiryAt, floored at zero.
func HoursRemaining(expiryAt, now time.Time) int {
	left := expiryAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / time.Hour)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp accepts the timestamp shapes browsers and API clients send.
// Values without a zone are read as UTC.
func ParseTimestamp(field, raw string) (time.Time, error) {
	return ParseTimestampIn(field, raw, time.UTC)
}

// ParseTimestampIn is ParseTimestamp with zone-less values (a browser
// datetime-local field, say) read in loc. The result is always UTC.
func ParseTimestampIn(field, raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, apperr.MissingFields(field)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("invalid %s date format: %q", field, raw)
}
