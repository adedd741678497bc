package expiry

import (
	"testing"
	"time"

	"sewa/internal/apperr"
	"sewa/models"
)

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func TestEvaluate_VegScenario(t *testing.T) {
	now := t0.Add(time.Hour)
	a, err := Evaluate(t0, t0.Add(20*time.Hour), models.FoodVeg, now)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !a.AutoExpiryAt.Equal(t0.Add(12 * time.Hour)) {
		t.Fatalf("AutoExpiryAt = %v, want T+12h", a.AutoExpiryAt)
	}
	if !a.ExpiryAt.Equal(t0.Add(12 * time.Hour)) {
		t.Fatalf("ExpiryAt = %v, want T+12h", a.ExpiryAt)
	}
	if a.DifferenceHours != 8 || !a.MismatchWarning {
		t.Fatalf("difference=%d warning=%v, want 8/true", a.DifferenceHours, a.MismatchWarning)
	}
	if a.Status != models.DonationAvailable {
		t.Fatalf("Status = %q, want available", a.Status)
	}
	if a.ShelfLifeHours != 12 {
		t.Fatalf("ShelfLifeHours = %d, want 12", a.ShelfLifeHours)
	}
}

func TestEvaluate_EffectiveExpiryIsEarlier(t *testing.T) {
	now := t0.Add(30 * time.Minute)
	cases := []struct {
		name     string
		category models.FoodCategory
		hotelExp time.Duration
	}{
		{"vegan-donor-earlier", models.FoodVegan, 5 * time.Hour},
		{"vegan-auto-earlier", models.FoodVegan, 30 * time.Hour},
		{"veg-equal", models.FoodVeg, 12 * time.Hour},
		{"nonveg-donor-earlier", models.FoodNonVeg, 2 * time.Hour},
		{"nonveg-auto-earlier", models.FoodNonVeg, 9 * time.Hour},
		{"unknown-defaults-to-6h", models.FoodCategory("dessert"), 7 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hotelExpiry := t0.Add(tc.hotelExp)
			a, err := Evaluate(t0, hotelExpiry, tc.category, now)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			auto := t0.Add(ShelfLife(tc.category))
			want := auto
			if hotelExpiry.Before(auto) {
				want = hotelExpiry
			}
			if !a.ExpiryAt.Equal(want) {
				t.Fatalf("ExpiryAt = %v, want %v", a.ExpiryAt, want)
			}
			wantStatus := models.DonationAvailable
			if !want.After(now) {
				wantStatus = models.DonationExpired
			}
			if a.Status != wantStatus {
				t.Fatalf("Status = %q, want %q", a.Status, wantStatus)
			}
		})
	}
}

func TestEvaluate_MismatchThreshold(t *testing.T) {
	now := t0
	cases := []struct {
		offset   time.Duration // hotel expiry relative to auto expiry (non-veg: T+6h)
		wantDiff int
		wantWarn bool
	}{
		{2 * time.Hour, 2, false},
		{2*time.Hour + 29*time.Minute, 2, false},
		{2*time.Hour + 30*time.Minute, 3, true},
		{3 * time.Hour, 3, true},
		{-(2*time.Hour + 31*time.Minute), 3, true},
		{-2 * time.Hour, 2, false},
	}
	for _, tc := range cases {
		hotelExpiry := t0.Add(6*time.Hour + tc.offset)
		a, err := Evaluate(t0, hotelExpiry, models.FoodNonVeg, now)
		if err != nil {
			t.Fatalf("offset %v: %v", tc.offset, err)
		}
		if a.DifferenceHours != tc.wantDiff || a.MismatchWarning != tc.wantWarn {
			t.Fatalf("offset %v: diff=%d warn=%v, want %d/%v", tc.offset, a.DifferenceHours, a.MismatchWarning, tc.wantDiff, tc.wantWarn)
		}
	}
}

func TestEvaluate_ValidationFailures(t *testing.T) {
	now := t0.Add(2 * time.Hour)
	cases := []struct {
		name       string
		prepared   time.Time
		hotelExpir time.Time
	}{
		{"zero-prepared", time.Time{}, now.Add(time.Hour)},
		{"zero-hotel-expiry", t0, time.Time{}},
		{"prepared-in-future", now.Add(time.Minute), now.Add(5 * time.Hour)},
		{"expiry-equals-prepared", t0, t0},
		{"expiry-before-prepared", t0, t0.Add(-time.Hour)},
		{"expiry-equals-now", t0, now},
		{"already-expired", t0, now.Add(-time.Minute)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(tc.prepared, tc.hotelExpir, models.FoodVeg, now)
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestEvaluate_ImmediatelyExpiredWhenAutoExpiryPassed(t *testing.T) {
	// Prepared 8h ago, non-veg shelf life is 6h, donor claims 1h more.
	now := t0.Add(8 * time.Hour)
	a, err := Evaluate(t0, now.Add(time.Hour), models.FoodNonVeg, now)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if a.Status != models.DonationExpired {
		t.Fatalf("Status = %q, want expired", a.Status)
	}
}

func TestHoursRemaining(t *testing.T) {
	if got := HoursRemaining(t0.Add(150*time.Minute), t0); got != 2 {
		t.Fatalf("HoursRemaining = %d, want 2", got)
	}
	if got := HoursRemaining(t0.Add(-time.Hour), t0); got != 0 {
		t.Fatalf("HoursRemaining past = %d, want 0", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, raw := range []string{
		"2025-03-10T08:00:00Z",
		"2025-03-10T08:00:00.000Z",
		"2025-03-10T09:30:00+01:30",
		"2025-03-10T08:00",
		"2025-03-10 08:00:00",
	} {
		got, err := ParseTimestamp("preparedAt", raw)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", raw, err)
		}
		if !got.Equal(t0) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", raw, got, t0)
		}
	}
	if _, err := ParseTimestamp("preparedAt", "yesterday"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseTimestampIn("preparedAt", "yesterday", time.UTC); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseTimestamp("preparedAt", " "); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for blank value, got %v", err)
	}
}

func TestParseTimestampIn_ZoneLessUsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	got, err := ParseTimestampIn("preparedAt", "2025-03-10T13:30", ist)
	if err != nil {
		t.Fatalf("ParseTimestampIn: %v", err)
	}
	if !got.Equal(t0) || got.Location() != time.UTC {
		t.Fatalf("got %v, want %v in UTC", got, t0)
	}
	// An explicit offset wins over loc.
	got, err = ParseTimestampIn("preparedAt", "2025-03-10T08:00:00Z", ist)
	if err != nil || !got.Equal(t0) {
		t.Fatalf("explicit zone: got %v err %v", got, err)
	}
	// nil falls back to UTC.
	got, err = ParseTimestampIn("preparedAt", "2025-03-10T08:00", nil)
	if err != nil || !got.Equal(t0) {
		t.Fatalf("nil loc: got %v err %v", got, err)
	}
}
