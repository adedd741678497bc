package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"sewa/internal/apperr"
	"sewa/internal/clock"
	"sewa/internal/notify"
	"sewa/internal/testutil"
	"sewa/models"
	"sewa/repository"
)

func newService(t *testing.T, name string) (*Service, *notify.Recorder, *clock.Fake) {
	t.Helper()
	stores := repository.NewSQLiteStores(testutil.OpenInMemoryDB(t, name))
	rec := &notify.Recorder{}
	fc := clock.NewFake(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	return NewService(Options{Hotels: stores.Hotels, Ngos: stores.Ngos, Notifier: rec, Clock: fc}), rec, fc
}

func hotelInput(suffix string) HotelInput {
	return HotelInput{
		HotelName:     "Hotel " + suffix,
		ManagerName:   "Manager",
		Email:         "Hotel-" + suffix + "@Example.com",
		Phone:         "555",
		Address:       "1 Main Road",
		City:          "haldwani",
		LicenseNumber: "LIC-" + suffix,
	}
}

func ngoInput(suffix string) NgoInput {
	return NgoInput{
		OrganizationName: "NGO " + suffix,
		ContactPerson:    "Contact",
		Email:            "ngo-" + suffix + "@example.com",
		Phone:            "555",
		Address:          "2 Side Street",
		City:             "haldwani",
		LicenseNumber:    "NLIC-" + suffix,
	}
}

func TestRegisterHotel_PendingAndAdminNotified(t *testing.T) {
	svc, rec, _ := newService(t, "reg_hotel")
	ctx := context.Background()

	res, err := svc.RegisterHotel(ctx, hotelInput("a"))
	if err != nil {
		t.Fatalf("RegisterHotel: %v", err)
	}
	if res.Hotel.VerificationStatus != models.VerificationPending || res.Hotel.Email != "hotel-a@example.com" {
		t.Fatalf("unexpected hotel: %+v", res.Hotel)
	}
	if res.Message != MsgRegistered || len(res.Warnings) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	calls := rec.CallsTo("NotifyAdmin")
	if len(calls) != 1 || calls[0].Event != notify.EventRegistrationReceived || calls[0].Payload["kind"] != "hotel" {
		t.Fatalf("unexpected admin notifications: %+v", calls)
	}

	if _, err := svc.RegisterHotel(ctx, hotelInput("a")); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("duplicate registration: %v", err)
	}
	dupLicense := hotelInput("b")
	dupLicense.LicenseNumber = "LIC-a"
	if _, err := svc.RegisterHotel(ctx, dupLicense); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("duplicate license: %v", err)
	}
}

func TestRegister_MissingAndInvalid(t *testing.T) {
	svc, _, _ := newService(t, "reg_invalid")
	ctx := context.Background()

	_, err := svc.RegisterNgo(ctx, NgoInput{Email: "x@example.com"})
	var ae *apperr.Error
	if !errors.As(err, &ae) || len(ae.Fields) != 6 {
		t.Fatalf("expected six missing fields, got %v", err)
	}
	bad := ngoInput("bad")
	bad.Email = "not-an-email"
	if _, err := svc.RegisterNgo(ctx, bad); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("invalid email: %v", err)
	}
	lat := 1.0
	half := ngoInput("half")
	half.Latitude = &lat
	if _, err := svc.RegisterNgo(ctx, half); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("half coordinates: %v", err)
	}
}

func TestRegister_AdminNotificationFailureIsWarning(t *testing.T) {
	svc, rec, _ := newService(t, "reg_warn")
	rec.Err = errors.New("mail down")
	res, err := svc.RegisterNgo(context.Background(), ngoInput("w"))
	if err != nil {
		t.Fatalf("RegisterNgo: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestVerify_FlowAndOverview(t *testing.T) {
	svc, rec, fc := newService(t, "verify_flow")
	ctx := context.Background()

	h, _ := svc.RegisterHotel(ctx, hotelInput("v"))
	fc.Advance(time.Second)
	n1, _ := svc.RegisterNgo(ctx, ngoInput("one"))
	fc.Advance(time.Second)
	n2, _ := svc.RegisterNgo(ctx, ngoInput("two"))

	pending, err := svc.Pending(ctx)
	if err != nil || pending.Total != 3 {
		t.Fatalf("Pending: %v %+v", err, pending)
	}

	if _, err := svc.ActiveHotel(ctx, h.Hotel.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("pending hotel must not be active: %v", err)
	}

	res, err := svc.VerifyHotel(ctx, h.Hotel.ID, ActionVerify)
	if err != nil {
		t.Fatalf("VerifyHotel: %v", err)
	}
	if res.Hotel.VerificationStatus != models.VerificationVerified || res.Message != "Hotel verified successfully" {
		t.Fatalf("unexpected verify result: %+v", res)
	}
	if _, err := svc.ActiveHotel(ctx, h.Hotel.ID); err != nil {
		t.Fatalf("verified hotel should be active: %v", err)
	}
	mails := rec.CallsTo("NotifyPartner")
	if len(mails) != 1 || mails[0].Target != "hotel-v@example.com" || mails[0].Payload["status"] != "verified" {
		t.Fatalf("unexpected partner emails: %+v", mails)
	}

	if _, err := svc.VerifyNgo(ctx, n1.Ngo.ID, ActionReject); err != nil {
		t.Fatalf("VerifyNgo reject: %v", err)
	}
	if _, err := svc.ActiveNgo(ctx, n1.Ngo.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("rejected ngo must not be active: %v", err)
	}
	if _, err := svc.VerifyNgo(ctx, n2.Ngo.ID, "approve"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("invalid action: %v", err)
	}
	if _, err := svc.VerifyNgo(ctx, "missing", ActionVerify); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("missing ngo: %v", err)
	}

	ov, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	want := Stats{TotalHotels: 1, TotalNgos: 2, VerifiedHotels: 1, VerifiedNgos: 0, PendingHotels: 0, PendingNgos: 1}
	if ov.Stats != want {
		t.Fatalf("stats = %+v, want %+v", ov.Stats, want)
	}
	if ov.Ngos[0].ID != n2.Ngo.ID {
		t.Fatalf("overview should list newest first")
	}
}
