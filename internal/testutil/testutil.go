package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"sewa/internal/db"
	"sewa/models"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache keeps the schema alive across pooled connections.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// OpenTempDB opens a file-backed SQLite database under t.TempDir.
func OpenTempDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "sewa-test.db"))
	if err != nil {
		t.Fatalf("open temp db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// GenerateJWTHS256 returns a signed JWT with the sub/kind claims the app reads.
func GenerateJWTHS256(t *testing.T, secret, subject, kind string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  subject,
		"kind": kind,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// CtxWithBearer returns a context containing gRPC metadata Authorization header with the given token.
func CtxWithBearer(ctx context.Context, token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(ctx, md)
}

// Hotel returns a verified hotel fixture; suffix keeps email and license unique.
func Hotel(suffix string) *models.Hotel {
	return &models.Hotel{
		HotelName:          "Hotel " + suffix,
		ManagerName:        "Manager " + suffix,
		Email:              fmt.Sprintf("hotel-%s@example.com", suffix),
		Phone:              "555-0100",
		Address:            "1 Main Road",
		City:               "haldwani",
		LicenseNumber:      "H-LIC-" + suffix,
		VerificationStatus: models.VerificationVerified,
	}
}

// Ngo returns a verified NGO fixture located in city.
func Ngo(suffix, city string) *models.Ngo {
	return &models.Ngo{
		OrganizationName:   "NGO " + suffix,
		ContactPerson:      "Contact " + suffix,
		Email:              fmt.Sprintf("ngo-%s@example.com", suffix),
		Phone:              "555-0200",
		Address:            "2 Side Street",
		City:               city,
		LicenseNumber:      "N-LIC-" + suffix,
		VerificationStatus: models.VerificationVerified,
	}
}

// Donation returns an available veg donation prepared at now-1h that
// expires at expiryAt (used for both declared and effective expiry).
func Donation(hotel *models.Hotel, now, expiryAt time.Time) *models.Donation {
	return &models.Donation{
		HotelID:                hotel.ID,
		HotelName:              hotel.HotelName,
		FoodType:               models.FoodVeg,
		Quantity:               10,
		ServesPeople:           25,
		Description:            "rice and dal",
		PickupAddress:          hotel.Address,
		City:                   hotel.City,
		PreparedAt:             now.Add(-time.Hour),
		HotelExpiryAt:          expiryAt,
		AutoExpiryAt:           now.Add(11 * time.Hour),
		ExpiryAt:               expiryAt,
		ExpectedShelfLifeHours: 12,
		Status:                 models.DonationAvailable,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}
