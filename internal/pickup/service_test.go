package pickup

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"sewa/internal/apperr"
	"sewa/internal/clock"
	"sewa/internal/notify"
	"sewa/internal/testutil"
	"sewa/models"
	"sewa/repository"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	clock  *clock.Fake
	rec    *notify.Recorder
	stores repository.Stores
	hotel  *models.Hotel
	ngo    *models.Ngo
}

func newFixture(t *testing.T, name string, codes func() (string, error)) *fixture {
	t.Helper()
	ctx := context.Background()
	stores := repository.NewSQLiteStores(testutil.OpenInMemoryDB(t, name))
	h, err := stores.Hotels.Create(ctx, testutil.Hotel(name))
	if err != nil {
		t.Fatalf("seed hotel: %v", err)
	}
	n, err := stores.Ngos.Create(ctx, testutil.Ngo(name, h.City))
	if err != nil {
		t.Fatalf("seed ngo: %v", err)
	}
	fc := clock.NewFake(t0)
	rec := &notify.Recorder{}
	svc := NewService(Options{Stores: stores, Notifier: rec, Clock: fc, CodeSource: codes})
	return &fixture{svc: svc, clock: fc, rec: rec, stores: stores, hotel: h, ngo: n}
}

// acceptedDonation stores a donation expiring at expiryAt already taken by the fixture's NGO.
func (f *fixture) acceptedDonation(t *testing.T, expiryAt time.Time) *models.Donation {
	t.Helper()
	ctx := context.Background()
	d, err := f.stores.Donations.Create(ctx, testutil.Donation(f.hotel, t0, expiryAt))
	if err != nil {
		t.Fatalf("create donation: %v", err)
	}
	taken, err := f.stores.Donations.Accept(ctx, d.ID, repository.Acceptance{NgoID: f.ngo.ID, NgoName: f.ngo.OrganizationName, At: t0})
	if err != nil || taken == nil {
		t.Fatalf("accept donation: %v", err)
	}
	return taken
}

func fixedCodes(codes ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

func TestWindow(t *testing.T) {
	if w := Window(t0.Add(40*time.Minute), t0); w != 10*time.Minute {
		t.Fatalf("window = %v, want 10m", w)
	}
	if w := Window(t0.Add(10*time.Hour), t0); w != MaxTravelWindow {
		t.Fatalf("window = %v, want cap", w)
	}
	if w := Window(t0.Add(20*time.Minute), t0); w > 0 {
		t.Fatalf("window = %v, want non-positive", w)
	}
}

func TestGenerateCode_SixDigits(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 200; i++ {
		c, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if !re.MatchString(c) {
			t.Fatalf("bad code %q", c)
		}
	}
}

func TestIssue_FortyMinutesLeft(t *testing.T) {
	f := newFixture(t, "issue_40", fixedCodes("004217"))
	d := f.acceptedDonation(t, t0.Add(40*time.Minute))

	res, err := f.svc.Issue(context.Background(), f.hotel.ID, f.ngo.ID, d.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !res.Pickup.OTPExpiresAt.Equal(t0.Add(10 * time.Minute)) {
		t.Fatalf("otpExpiresAt = %v, want t0+10m", res.Pickup.OTPExpiresAt)
	}
	if res.Pickup.Status != models.PickupPending || res.Pickup.OTP != "004217" {
		t.Fatalf("unexpected pickup: %+v", res.Pickup)
	}
	emails := f.rec.CallsTo("EmailOTP")
	if len(emails) != 1 || emails[0].Target != f.hotel.Email || emails[0].OTP != "004217" {
		t.Fatalf("unexpected emails: %+v", emails)
	}
	if !emails[0].ExpiresAt.Equal(res.Pickup.OTPExpiresAt) {
		t.Fatalf("email expiry %v != pickup expiry %v", emails[0].ExpiresAt, res.Pickup.OTPExpiresAt)
	}
}

func TestIssue_WindowIsCapped(t *testing.T) {
	f := newFixture(t, "issue_cap", nil)
	d := f.acceptedDonation(t, t0.Add(9*time.Hour))
	res, err := f.svc.Issue(context.Background(), f.hotel.ID, f.ngo.ID, d.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	window := res.Pickup.OTPExpiresAt.Sub(t0)
	if window != MaxTravelWindow {
		t.Fatalf("window = %v, want 3h", window)
	}
	if res.Pickup.OTPExpiresAt.After(d.ExpiryAt.Add(-SafetyBuffer)) {
		t.Fatalf("code outlives donation safety margin")
	}
}

func TestIssue_Failures(t *testing.T) {
	f := newFixture(t, "issue_fail", nil)
	ctx := context.Background()
	d := f.acceptedDonation(t, t0.Add(5*time.Hour))
	late := f.acceptedDonation(t, t0.Add(20*time.Minute))

	if _, err := f.svc.Issue(ctx, "missing", f.ngo.ID, d.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("unknown hotel: %v", err)
	}
	if _, err := f.svc.Issue(ctx, f.hotel.ID, f.ngo.ID, "missing"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("unknown donation: %v", err)
	}
	if _, err := f.svc.Issue(ctx, f.hotel.ID, "other-ngo", d.ID); !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Fatalf("other ngo: %v", err)
	}
	if _, err := f.svc.Issue(ctx, f.hotel.ID, f.ngo.ID, late.ID); !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Fatalf("no window left: %v", err)
	}
	if _, err := f.svc.Issue(ctx, "", "", ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("missing ids: %v", err)
	}

	noMail := testutil.Hotel("nomail")
	noMail.Email = ""
	h, err := f.stores.Hotels.Create(ctx, noMail)
	if err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	if _, err := f.svc.Issue(ctx, h.ID, f.ngo.ID, d.ID); !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Fatalf("hotel without email: %v", err)
	}
}

func TestIssue_RegeneratesCollidingCode(t *testing.T) {
	f := newFixture(t, "issue_collide", fixedCodes("111111", "111111", "222222"))
	ctx := context.Background()
	a := f.acceptedDonation(t, t0.Add(5*time.Hour))
	b := f.acceptedDonation(t, t0.Add(5*time.Hour))

	first, err := f.svc.Issue(ctx, f.hotel.ID, f.ngo.ID, a.ID)
	if err != nil {
		t.Fatalf("first Issue: %v", err)
	}
	second, err := f.svc.Issue(ctx, f.hotel.ID, f.ngo.ID, b.ID)
	if err != nil {
		t.Fatalf("second Issue: %v", err)
	}
	if first.Pickup.OTP != "111111" || second.Pickup.OTP != "222222" {
		t.Fatalf("codes = %s, %s", first.Pickup.OTP, second.Pickup.OTP)
	}
}

func TestIssue_EmailFailureKeepsPickup(t *testing.T) {
	f := newFixture(t, "issue_mailfail", nil)
	f.rec.Err = errors.New("smtp down")
	d := f.acceptedDonation(t, t0.Add(5*time.Hour))
	res, err := f.svc.Issue(context.Background(), f.hotel.ID, f.ngo.ID, d.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	got, _ := f.stores.Pickups.GetByID(context.Background(), res.Pickup.ID)
	if got == nil || got.Status != models.PickupPending {
		t.Fatalf("pickup should persist: %+v", got)
	}
}

func TestVerify_ConfirmsOnce(t *testing.T) {
	f := newFixture(t, "verify", fixedCodes("654321"))
	ctx := context.Background()
	d := f.acceptedDonation(t, t0.Add(5*time.Hour))
	if _, err := f.svc.Issue(ctx, f.hotel.ID, f.ngo.ID, d.ID); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := f.svc.Verify(ctx, f.ngo.ID, "000000"); !apperr.IsKind(err, apperr.KindInvalidCredential) {
		t.Fatalf("wrong code: %v", err)
	}
	res, err := f.svc.Verify(ctx, f.ngo.ID, "654321")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Pickup.Status != models.PickupConfirmed || res.NgoName != f.ngo.OrganizationName || res.Message != MsgConfirmed {
		t.Fatalf("unexpected result: %+v", res)
	}
	calls := f.rec.CallsTo("NotifyHotel")
	if len(calls) != 1 || calls[0].Event != notify.EventPickupConfirmed || calls[0].Payload["ngoName"] != f.ngo.OrganizationName {
		t.Fatalf("unexpected notifications: %+v", calls)
	}
	if _, err := f.svc.Verify(ctx, f.ngo.ID, "654321"); !apperr.IsKind(err, apperr.KindInvalidCredential) {
		t.Fatalf("second verify: %v", err)
	}
}

func TestVerify_ExpiredCodeStaysPending(t *testing.T) {
	f := newFixture(t, "verify_expired", fixedCodes("777777"))
	ctx := context.Background()
	d := f.acceptedDonation(t, t0.Add(40*time.Minute))
	issued, err := f.svc.Issue(ctx, f.hotel.ID, f.ngo.ID, d.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	f.clock.Advance(10*time.Minute + time.Second)
	if _, err := f.svc.Verify(ctx, f.ngo.ID, "777777"); !apperr.IsKind(err, apperr.KindExpired) {
		t.Fatalf("expected Expired, got %v", err)
	}
	got, _ := f.stores.Pickups.GetByID(ctx, issued.Pickup.ID)
	if got.Status != models.PickupPending {
		t.Fatalf("stored status = %q, want pending", got.Status)
	}
	views, err := f.svc.ListForNgo(ctx, f.ngo.ID)
	if err != nil || len(views) != 1 || views[0].State != models.PickupStateExpired {
		t.Fatalf("ListForNgo: %v %+v", err, views)
	}
}

func TestVerify_ConcurrentDuplicatesConfirmOnce(t *testing.T) {
	stores := repository.NewSQLiteStores(testutil.OpenTempDB(t))
	ctx := context.Background()
	h, _ := stores.Hotels.Create(ctx, testutil.Hotel("dupverify"))
	n, _ := stores.Ngos.Create(ctx, testutil.Ngo("dupverify", h.City))
	d, _ := stores.Donations.Create(ctx, testutil.Donation(h, t0, t0.Add(5*time.Hour)))
	if _, err := stores.Donations.Accept(ctx, d.ID, repository.Acceptance{NgoID: n.ID, NgoName: "n", At: t0}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	svc := NewService(Options{Stores: stores, Notifier: &notify.Recorder{}, Clock: clock.NewFake(t0), CodeSource: fixedCodes("135790")})
	if _, err := svc.Issue(ctx, h.ID, n.ID, d.ID); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	confirmed := 0
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Verify(ctx, n.ID, "135790")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				confirmed++
			} else if !apperr.IsKind(err, apperr.KindInvalidCredential) && !apperr.IsKind(err, apperr.KindConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if confirmed != 1 {
		t.Fatalf("confirmed = %d, want 1", confirmed)
	}
}

func TestListForHotel(t *testing.T) {
	f := newFixture(t, "list_hotel", fixedCodes("100001", "100002"))
	ctx := context.Background()
	a := f.acceptedDonation(t, t0.Add(5*time.Hour))
	b := f.acceptedDonation(t, t0.Add(5*time.Hour))
	if _, err := f.svc.Issue(ctx, f.hotel.ID, f.ngo.ID, a.ID); err != nil {
		t.Fatalf("Issue a: %v", err)
	}
	f.clock.Advance(time.Minute)
	if _, err := f.svc.Issue(ctx, f.hotel.ID, f.ngo.ID, b.ID); err != nil {
		t.Fatalf("Issue b: %v", err)
	}
	if _, err := f.svc.Verify(ctx, f.ngo.ID, "100001"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	views, err := f.svc.ListForHotel(ctx, f.hotel.ID)
	if err != nil || len(views) != 2 {
		t.Fatalf("ListForHotel: %v (%d)", err, len(views))
	}
	if views[0].DonationID != b.ID || views[0].State != models.PickupStatePending {
		t.Fatalf("newest first: %+v", views[0])
	}
	if views[1].State != models.PickupStateConfirmed {
		t.Fatalf("confirmed pickup state = %q", views[1].State)
	}
}
