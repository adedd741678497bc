package mongostore

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"sewa/internal/testutil"
	"sewa/models"
	"sewa/repository"
)

// openStores connects to MONGO_URI with a throwaway database.
func openStores(t *testing.T) repository.Stores {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	name := "sewa_test_" + uuid.NewString()[:8]
	s, err := Connect(ctx, uri, name, nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s.Stores()
}

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestDonationStore_AcceptOnceAndSweep(t *testing.T) {
	st := openStores(t)
	ctx := context.Background()
	h, err := st.Hotels.Create(ctx, testutil.Hotel("m1"))
	if err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	d, err := st.Donations.Create(ctx, testutil.Donation(h, base, base.Add(3*time.Hour)))
	if err != nil {
		t.Fatalf("create donation: %v", err)
	}
	stale, err := st.Donations.Create(ctx, testutil.Donation(h, base, base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("create donation: %v", err)
	}

	var wg sync.WaitGroup
	wins := make(chan string, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ngo := string(rune('a' + i))
			got, err := st.Donations.Accept(ctx, d.ID, repository.Acceptance{NgoID: ngo, NgoName: ngo, At: base})
			if err != nil {
				t.Errorf("Accept: %v", err)
				return
			}
			if got != nil {
				wins <- got.AcceptedByNgoID
			}
		}(i)
	}
	wg.Wait()
	close(wins)
	if len(wins) != 1 {
		t.Fatalf("expected exactly one winner, got %d", len(wins))
	}

	n, err := st.Donations.MarkExpired(ctx, base.Add(2*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("MarkExpired: %d %v", n, err)
	}
	if n, _ := st.Donations.MarkExpired(ctx, base.Add(2*time.Hour)); n != 0 {
		t.Fatalf("second sweep changed %d", n)
	}
	got, _ := st.Donations.GetByID(ctx, stale.ID)
	if got.Status != models.DonationExpired {
		t.Fatalf("stale donation status = %s", got.Status)
	}
	if got, _ := st.Donations.Accept(ctx, stale.ID, repository.Acceptance{NgoID: "z", At: base}); got != nil {
		t.Fatalf("expired donation accepted")
	}
}

func TestDonationStore_Rejections(t *testing.T) {
	st := openStores(t)
	ctx := context.Background()
	h, _ := st.Hotels.Create(ctx, testutil.Hotel("m2"))
	d, _ := st.Donations.Create(ctx, testutil.Donation(h, base, base.Add(3*time.Hour)))

	for i := 0; i < 2; i++ {
		found, err := st.Donations.AddRejection(ctx, d.ID, "ngo-1")
		if err != nil || !found {
			t.Fatalf("AddRejection: %v %v", found, err)
		}
	}
	if found, _ := st.Donations.AddRejection(ctx, "missing", "ngo-1"); found {
		t.Fatalf("rejection on missing donation reported found")
	}
	got, _ := st.Donations.GetByID(ctx, d.ID)
	if len(got.RejectedBy) != 1 {
		t.Fatalf("rejected_by = %v", got.RejectedBy)
	}
	list, err := st.Donations.ListAvailable(ctx, repository.AvailableFilter{City: "haldwani", ExcludeRejectedBy: "ngo-1"})
	if err != nil || len(list) != 0 {
		t.Fatalf("ListAvailable for rejecting ngo: %v %d", err, len(list))
	}
	list, _ = st.Donations.ListAvailable(ctx, repository.AvailableFilter{City: "haldwani", ExcludeRejectedBy: "ngo-2"})
	if len(list) != 1 {
		t.Fatalf("ListAvailable for other ngo: %d", len(list))
	}
}

func TestPickupStore_PendingUniqueAndConfirm(t *testing.T) {
	st := openStores(t)
	ctx := context.Background()
	p := &models.Pickup{HotelID: "h", NgoID: "n", DonationID: "d", OTP: "123456", OTPExpiresAt: base.Add(10 * time.Minute), CreatedAt: base}
	created, err := st.Pickups.Create(ctx, p)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := &models.Pickup{HotelID: "h", NgoID: "n", DonationID: "d2", OTP: "123456", OTPExpiresAt: base.Add(10 * time.Minute), CreatedAt: base}
	if _, err := st.Pickups.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if ok, _ := st.Pickups.Confirm(ctx, created.ID, "123456", base.Add(11*time.Minute)); ok {
		t.Fatalf("lapsed code confirmed")
	}
	ok, err := st.Pickups.Confirm(ctx, created.ID, "123456", base.Add(10*time.Minute))
	if err != nil || !ok {
		t.Fatalf("Confirm at boundary: %v %v", ok, err)
	}
	if ok, _ := st.Pickups.Confirm(ctx, created.ID, "123456", base.Add(time.Minute)); ok {
		t.Fatalf("confirmed twice")
	}
	if pending, _ := st.Pickups.FindPending(ctx, "n", "123456"); pending != nil {
		t.Fatalf("confirmed pickup still pending")
	}
	// The code is free again once the first pickup left pending.
	dup.ID = ""
	if _, err := st.Pickups.Create(ctx, dup); err != nil {
		t.Fatalf("reuse after confirm: %v", err)
	}
}

func TestPartnerStores(t *testing.T) {
	st := openStores(t)
	ctx := context.Background()
	h := testutil.Hotel("m4")
	h.VerificationStatus = models.VerificationPending
	created, err := st.Hotels.Create(ctx, h)
	if err != nil {
		t.Fatalf("Create hotel: %v", err)
	}
	again := testutil.Hotel("m4")
	if _, err := st.Hotels.Create(ctx, again); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	pending := models.VerificationPending
	list, err := st.Hotels.List(ctx, &pending)
	if err != nil || len(list) != 1 {
		t.Fatalf("List pending: %v %d", err, len(list))
	}
	if found, err := st.Hotels.UpdateVerification(ctx, created.ID, models.VerificationVerified); err != nil || !found {
		t.Fatalf("UpdateVerification: %v %v", found, err)
	}
	if list, _ := st.Hotels.List(ctx, &pending); len(list) != 0 {
		t.Fatalf("hotel still pending")
	}

	lat, lng := 29.2, 79.5
	n := testutil.Ngo("m4", "haldwani")
	n.Latitude, n.Longitude = &lat, &lng
	gotN, err := st.Ngos.Create(ctx, n)
	if err != nil {
		t.Fatalf("Create ngo: %v", err)
	}
	if gotN.Latitude == nil || *gotN.Latitude != lat {
		t.Fatalf("coordinates lost: %+v", gotN)
	}
	if found, _ := st.Ngos.UpdateVerification(ctx, "missing", models.VerificationRejected); found {
		t.Fatalf("missing ngo reported found")
	}
}
