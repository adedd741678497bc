package models

import "time"

// PickupStatus is the stored status of a pickup handoff.
type PickupStatus string

const (
	PickupPending   PickupStatus = "pending"
	PickupConfirmed PickupStatus = "confirmed"
)

// PickupState is the status as seen by readers. It adds the derived
// "expired" state for pending pickups whose code has lapsed.
type PickupState string

const (
	PickupStatePending   PickupState = "pending"
	PickupStateConfirmed PickupState = "confirmed"
	PickupStateExpired   PickupState = "expired"
)

// Pickup is one OTP-confirmed handoff attempt between a hotel and an NGO.
type Pickup struct {
	ID           string       `db:"id" json:"id" bson:"_id"`
	HotelID      string       `db:"hotel_id" json:"hotel_id" bson:"hotel_id"`
	NgoID        string       `db:"ngo_id" json:"ngo_id" bson:"ngo_id"`
	DonationID   string       `db:"donation_id" json:"donation_id" bson:"donation_id"`
	OTP          string       `db:"otp" json:"-" bson:"otp"`
	OTPExpiresAt time.Time    `db:"otp_expires_at" json:"otp_expires_at" bson:"otp_expires_at"`
	Status       PickupStatus `db:"status" json:"status" bson:"status"`
	ConfirmedAt  *time.Time   `db:"confirmed_at" json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at" bson:"created_at"`
}

// StateAt classifies the pickup at the given instant.
func (p *Pickup) StateAt(now time.Time) PickupState {
	if p.Status == PickupConfirmed {
		return PickupStateConfirmed
	}
	if p.OTPExpiresAt.Before(now) {
		return PickupStateExpired
	}
	return PickupStatePending
}
