// Package sewav1 holds the request and response shapes shared by the gRPC
// services (JSON content subtype) and the REST API.
package sewav1

import (
	"strings"
	"time"

	"sewa/internal/donation"
	"sewa/internal/expiry"
	"sewa/internal/pickup"
	"sewa/models"
)

// Service names as they appear in gRPC method paths.
const (
	HotelService        = "sewa.v1.HotelService"
	NgoService          = "sewa.v1.NgoService"
	AdminService        = "sewa.v1.AdminService"
	RegistrationService = "sewa.v1.RegistrationService"
)

type Empty struct{}

// SubmitDonationRequest is a hotel's donation offer. The hotel id and name
// come from the authenticated hotel, not the request.
type SubmitDonationRequest struct {
	FoodType      string   `json:"food_type"`
	Quantity      float64  `json:"quantity"`
	ServesPeople  int      `json:"serves_people"`
	Description   string   `json:"description,omitempty"`
	PickupAddress string   `json:"pickup_address"`
	City          string   `json:"city,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Images        []string `json:"images,omitempty"`
	PreparedAt    string   `json:"prepared_at"`
	HotelExpiryAt string   `json:"hotel_expiry_at"`
}

// Input converts the request for the given hotel. Empty timestamps are left
// zero so the service reports every missing field at once; timestamps without
// a zone are read in loc.
func (r *SubmitDonationRequest) Input(hotel *models.Hotel, loc *time.Location) (donation.SubmitInput, error) {
	in := donation.SubmitInput{
		HotelID:       hotel.ID,
		HotelName:     hotel.HotelName,
		FoodType:      models.FoodCategory(strings.ToLower(strings.TrimSpace(r.FoodType))),
		Quantity:      r.Quantity,
		ServesPeople:  r.ServesPeople,
		Description:   r.Description,
		PickupAddress: r.PickupAddress,
		City:          r.City,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		Images:        r.Images,
	}
	if in.City == "" {
		in.City = hotel.City
	}
	var err error
	if strings.TrimSpace(r.PreparedAt) != "" {
		if in.PreparedAt, err = expiry.ParseTimestampIn("preparedAt", r.PreparedAt, loc); err != nil {
			return in, err
		}
	}
	if strings.TrimSpace(r.HotelExpiryAt) != "" {
		if in.HotelExpiryAt, err = expiry.ParseTimestampIn("hotelExpiryAt", r.HotelExpiryAt, loc); err != nil {
			return in, err
		}
	}
	return in, nil
}

// DonationRef names a single donation.
type DonationRef struct {
	DonationID string `json:"donation_id"`
}

type GenerateOTPRequest struct {
	NgoID      string `json:"ngo_id"`
	DonationID string `json:"donation_id"`
}

type VerifyOTPRequest struct {
	OTP string `json:"otp"`
}

// VerifyPartnerRequest carries an admin decision; Action is "verify" or "reject".
type VerifyPartnerRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DonationList struct {
	Donations []*models.Donation `json:"donations"`
}

type PickupList struct {
	Pickups []pickup.View `json:"pickups"`
}

type SweepResponse struct {
	Expired int64 `json:"expired"`
}
