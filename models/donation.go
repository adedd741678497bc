package models

import "time"

// FoodCategory classifies a donation for shelf-life purposes.
type FoodCategory string

const (
	FoodVegan  FoodCategory = "vegan"
	FoodVeg    FoodCategory = "veg"
	FoodNonVeg FoodCategory = "non-veg"
)

// Valid reports whether c is one of the accepted categories.
func (c FoodCategory) Valid() bool {
	switch c {
	case FoodVegan, FoodVeg, FoodNonVeg:
		return true
	}
	return false
}

// DonationStatus represents where a donation is in its lifecycle.
// available -> taken and available -> expired are the only transitions.
type DonationStatus string

const (
	DonationAvailable DonationStatus = "available"
	DonationTaken     DonationStatus = "taken"
	DonationExpired   DonationStatus = "expired"
)

// MaxDonationImages is the maximum number of image references per donation.
const MaxDonationImages = 4

// Donation is one batch of surplus food offered by a hotel.
type Donation struct {
	ID           string       `db:"id" json:"id" bson:"_id"`
	HotelID      string       `db:"hotel_id" json:"hotel_id" bson:"hotel_id"`
	HotelName    string       `db:"hotel_name" json:"hotel_name" bson:"hotel_name"`
	FoodType     FoodCategory `db:"food_type" json:"food_type" bson:"food_type"`
	Quantity     float64      `db:"quantity" json:"quantity" bson:"quantity"`
	ServesPeople int          `db:"serves_people" json:"serves_people" bson:"serves_people"`
	Description  string       `db:"description" json:"description" bson:"description"`

	PickupAddress string   `db:"pickup_address" json:"pickup_address" bson:"pickup_address"`
	City          string   `db:"city" json:"city,omitempty" bson:"city,omitempty"`
	Latitude      *float64 `db:"latitude" json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude     *float64 `db:"longitude" json:"longitude,omitempty" bson:"longitude,omitempty"`
	Images        []string `db:"images" json:"images" bson:"images"`

	PreparedAt             time.Time `db:"prepared_at" json:"prepared_at" bson:"prepared_at"`
	HotelExpiryAt          time.Time `db:"hotel_expiry_at" json:"hotel_expiry_at" bson:"hotel_expiry_at"`
	AutoExpiryAt           time.Time `db:"auto_expiry_at" json:"auto_expiry_at" bson:"auto_expiry_at"`
	ExpiryAt               time.Time `db:"expiry_at" json:"expiry_at" bson:"expiry_at"`
	ExpiryDifferenceHours  int       `db:"expiry_difference_hours" json:"expiry_difference_hours" bson:"expiry_difference_hours"`
	ExpiryMismatchWarning  bool      `db:"expiry_mismatch_warning" json:"expiry_mismatch_warning" bson:"expiry_mismatch_warning"`
	ExpectedShelfLifeHours int       `db:"expected_shelf_life_hours" json:"expected_shelf_life_hours" bson:"expected_shelf_life_hours"`

	Status DonationStatus `db:"status" json:"status" bson:"status"`

	// Acceptance fields are written once, on the available -> taken transition.
	AcceptedAt      *time.Time `db:"accepted_at" json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
	AcceptedByNgo   string     `db:"accepted_by_ngo" json:"accepted_by_ngo,omitempty" bson:"accepted_by_ngo,omitempty"`
	AcceptedByNgoID string     `db:"accepted_by_ngo_id" json:"accepted_by_ngo_id,omitempty" bson:"accepted_by_ngo_id,omitempty"`

	// RejectedBy holds NGO ids that declined this donation. It only filters listings.
	RejectedBy []string `db:"rejected_by" json:"rejected_by" bson:"rejected_by"`

	CreatedAt time.Time `db:"created_at" json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" bson:"updated_at"`
}

// RejectedByNgo reports whether ngoID has declined the donation.
func (d *Donation) RejectedByNgo(ngoID string) bool {
	for _, id := range d.RejectedBy {
		if id == ngoID {
			return true
		}
	}
	return false
}
