// Package pickup implements the one-time-code handoff between a hotel and
// the NGO that accepted its donation.
package pickup

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"sewa/internal/apperr"
	"sewa/internal/clock"
	"sewa/internal/logger"
	"sewa/internal/notify"
	"sewa/models"
	"sewa/repository"
)

const (
	// MaxTravelWindow caps how long a code stays valid.
	MaxTravelWindow = 3 * time.Hour
	// SafetyBuffer is how long before the donation's expiry a code must lapse.
	SafetyBuffer = 30 * time.Minute

	codeDigits      = 6
	maxCodeAttempts = 5

	MsgConfirmed = "Pickup confirmed successfully"
)

// Window returns how long a code issued at now may stay valid for a
// donation expiring at donationExpiry. A non-positive result means no
// pickup can be arranged.
func Window(donationExpiry, now time.Time) time.Duration {
	w := donationExpiry.Sub(now) - SafetyBuffer
	if w > MaxTravelWindow {
		return MaxTravelWindow
	}
	return w
}

// GenerateCode returns a uniformly random 6-digit code, zero padded.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

// Service issues and verifies pickup codes.
type Service struct {
	pickups       repository.PickupStore
	donations     repository.DonationStore
	hotels        repository.HotelStore
	ngos          repository.NgoStore
	notifier      notify.Notifier
	clock         clock.Clock
	log           *zap.Logger
	notifyTimeout time.Duration
	newCode       func() (string, error)
}

// Options configures NewService. All stores are required.
type Options struct {
	Stores        repository.Stores
	Notifier      notify.Notifier
	Clock         clock.Clock
	Logger        *zap.Logger
	NotifyTimeout time.Duration
	// CodeSource overrides GenerateCode.
	CodeSource func() (string, error)
}

func NewService(opts Options) *Service {
	s := &Service{
		pickups:       opts.Stores.Pickups,
		donations:     opts.Stores.Donations,
		hotels:        opts.Stores.Hotels,
		ngos:          opts.Stores.Ngos,
		notifier:      opts.Notifier,
		clock:         opts.Clock,
		log:           opts.Logger,
		notifyTimeout: opts.NotifyTimeout,
		newCode:       opts.CodeSource,
	}
	if s.clock == nil {
		s.clock = clock.System()
	}
	s.log = logger.OrNop(s.log)
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.log)
	}
	if s.newCode == nil {
		s.newCode = GenerateCode
	}
	return s
}

// IssueResult reports a newly issued code. The code itself only travels by email.
type IssueResult struct {
	Pickup   *models.Pickup   `json:"pickup"`
	Message  string           `json:"message"`
	Warnings []notify.Warning `json:"warnings,omitempty"`
}

// Issue creates a pending pickup for a donation the NGO has accepted and
// emails its code to the hotel.
func (s *Service) Issue(ctx context.Context, hotelID, ngoID, donationID string) (*IssueResult, error) {
	var missing []string
	for _, f := range []struct{ name, v string }{{"hotelId", hotelID}, {"ngoId", ngoID}, {"foodId", donationID}} {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}

	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if err != nil {
		return nil, apperr.Internal(err, "could not load hotel")
	}
	if hotel == nil {
		return nil, apperr.NotFound("hotel not found")
	}
	if strings.TrimSpace(hotel.Email) == "" {
		return nil, apperr.InvalidState("hotel has no email on file")
	}
	d, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, apperr.Internal(err, "could not load donation")
	}
	if d == nil || d.HotelID != hotelID {
		return nil, apperr.NotFound("food not found")
	}
	if d.Status != models.DonationTaken || d.AcceptedByNgoID != ngoID {
		return nil, apperr.InvalidState("donation has not been accepted by this NGO")
	}

	now := s.clock.Now()
	window := Window(d.ExpiryAt, now)
	if window <= 0 {
		return nil, apperr.InvalidState("donation expires within %s; no pickup window left", SafetyBuffer)
	}
	expiresAt := now.Add(window)

	var p *models.Pickup
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, apperr.Internal(err, "could not generate code")
		}
		p, err = s.pickups.Create(ctx, &models.Pickup{
			HotelID:      hotelID,
			NgoID:        ngoID,
			DonationID:   donationID,
			OTP:          code,
			OTPExpiresAt: expiresAt,
			Status:       models.PickupPending,
			CreatedAt:    now,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Internal(err, "could not save pickup")
		}
		p = nil
		s.log.Debug("pickup code collided, regenerating", zap.String("ngo_id", ngoID), zap.Int("attempt", attempt+1))
	}
	if p == nil {
		return nil, apperr.Conflict("could not allocate a unique pickup code")
	}
	s.log.Info("pickup code issued",
		zap.String("pickup_id", p.ID),
		zap.String("donation_id", donationID),
		zap.Time("expires_at", expiresAt))

	res := &IssueResult{
		Pickup:  p,
		Message: fmt.Sprintf("OTP sent to %s, valid until %s", hotel.Email, expiresAt.Format("02 Jan 2006 15:04 MST")),
	}
	if w := notify.Deliver(ctx, s.notifyTimeout, s.log, "otp email", func(ctx context.Context) error {
		return s.notifier.EmailOTP(ctx, hotel.Email, p.OTP, expiresAt)
	}); w != nil {
		res.Warnings = append(res.Warnings, *w)
	}
	return res, nil
}

// VerifyResult reports a confirmed pickup.
type VerifyResult struct {
	Pickup   *models.Pickup   `json:"pickup"`
	NgoName  string           `json:"ngo_name"`
	Message  string           `json:"message"`
	Warnings []notify.Warning `json:"warnings,omitempty"`
}

// Verify confirms the NGO's pending pickup holding otp. A lapsed code is
// refused with Expired and the pickup stays pending.
func (s *Service) Verify(ctx context.Context, ngoID, otp string) (*VerifyResult, error) {
	otp = strings.TrimSpace(otp)
	var missing []string
	if strings.TrimSpace(ngoID) == "" {
		missing = append(missing, "ngoId")
	}
	if otp == "" {
		missing = append(missing, "enteredOtp")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}

	p, err := s.pickups.FindPending(ctx, ngoID, otp)
	if err != nil {
		return nil, apperr.Internal(err, "could not load pickup")
	}
	if p == nil {
		return nil, apperr.InvalidCredential("invalid OTP")
	}
	now := s.clock.Now()
	if p.OTPExpiresAt.Before(now) {
		return nil, apperr.Expired("OTP expired")
	}
	ok, err := s.pickups.Confirm(ctx, p.ID, otp, now)
	if err != nil {
		return nil, apperr.Internal(err, "could not confirm pickup")
	}
	if !ok {
		return nil, apperr.Conflict("pickup is no longer pending")
	}
	p.Status = models.PickupConfirmed
	p.ConfirmedAt = &now

	ngoName := "Unknown NGO"
	if ngo, err := s.ngos.GetByID(ctx, ngoID); err != nil {
		s.log.Warn("could not load ngo for pickup notification", zap.String("ngo_id", ngoID), zap.Error(err))
	} else if ngo != nil {
		ngoName = ngo.OrganizationName
	}
	s.log.Info("pickup confirmed", zap.String("pickup_id", p.ID), zap.String("ngo_id", ngoID))

	res := &VerifyResult{Pickup: p, NgoName: ngoName, Message: MsgConfirmed}
	payload := notify.Payload{
		"message": "NGO has confirmed the pickup",
		"ngoId":   ngoID,
		"ngoName": ngoName,
		"foodId":  p.DonationID,
	}
	if w := notify.Deliver(ctx, s.notifyTimeout, s.log, "hotel notification", func(ctx context.Context) error {
		return s.notifier.NotifyHotel(ctx, p.HotelID, notify.EventPickupConfirmed, payload)
	}); w != nil {
		res.Warnings = append(res.Warnings, *w)
	}
	return res, nil
}

// View is a pickup with its state classified at read time.
type View struct {
	*models.Pickup
	State models.PickupState `json:"state"`
}

// ListForHotel returns a hotel's pickups, newest first.
func (s *Service) ListForHotel(ctx context.Context, hotelID string) ([]View, error) {
	if strings.TrimSpace(hotelID) == "" {
		return nil, apperr.MissingFields("hotelId")
	}
	rows, err := s.pickups.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, apperr.Internal(err, "could not list pickups")
	}
	return s.views(rows), nil
}

// ListForNgo returns an NGO's pickups, newest first.
func (s *Service) ListForNgo(ctx context.Context, ngoID string) ([]View, error) {
	if strings.TrimSpace(ngoID) == "" {
		return nil, apperr.MissingFields("ngoId")
	}
	rows, err := s.pickups.ListByNgo(ctx, ngoID)
	if err != nil {
		return nil, apperr.Internal(err, "could not list pickups")
	}
	return s.views(rows), nil
}

func (s *Service) views(rows []*models.Pickup) []View {
	now := s.clock.Now()
	out := make([]View, 0, len(rows))
	for _, p := range rows {
		out = append(out, View{Pickup: p, State: p.StateAt(now)})
	}
	return out
}
