package models

import "time"

// VerificationStatus tracks the admin review of a registered partner.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// PartnerKind distinguishes the two registrable partner types.
type PartnerKind string

const (
	PartnerHotel PartnerKind = "hotel"
	PartnerNgo   PartnerKind = "ngo"
)

// Hotel is a food donor.
type Hotel struct {
	ID                 string             `db:"id" json:"id" bson:"_id"`
	HotelName          string             `db:"hotel_name" json:"hotel_name" bson:"hotel_name"`
	ManagerName        string             `db:"manager_name" json:"manager_name" bson:"manager_name"`
	Email              string             `db:"email" json:"email" bson:"email"`
	Phone              string             `db:"phone" json:"phone" bson:"phone"`
	Address            string             `db:"address" json:"address" bson:"address"`
	City               string             `db:"city" json:"city,omitempty" bson:"city,omitempty"`
	LicenseNumber      string             `db:"license_number" json:"license_number" bson:"license_number"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status" bson:"verification_status"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at" bson:"created_at"`
}

// Ngo is a food recipient organization.
// Latitude/Longitude are optional and only used to annotate listings with distance.
type Ngo struct {
	ID                 string             `db:"id" json:"id" bson:"_id"`
	OrganizationName   string             `db:"organization_name" json:"organization_name" bson:"organization_name"`
	ContactPerson      string             `db:"contact_person" json:"contact_person" bson:"contact_person"`
	Email              string             `db:"email" json:"email" bson:"email"`
	Phone              string             `db:"phone" json:"phone" bson:"phone"`
	Address            string             `db:"address" json:"address" bson:"address"`
	City               string             `db:"city" json:"city" bson:"city"`
	LicenseNumber      string             `db:"license_number" json:"license_number" bson:"license_number"`
	Latitude           *float64           `db:"latitude" json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude          *float64           `db:"longitude" json:"longitude,omitempty" bson:"longitude,omitempty"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status" bson:"verification_status"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at" bson:"created_at"`
}
