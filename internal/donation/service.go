// Package donation implements the donation lifecycle: submission, lazy
// expiry, listing, acceptance and rejection.
package donation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sewa/internal/apperr"
	"sewa/internal/clock"
	"sewa/internal/expiry"
	"sewa/internal/logger"
	"sewa/internal/notify"
	"sewa/models"
	"sewa/repository"
)

const (
	MsgCreated         = "Food availability added successfully"
	MsgCreatedMismatch = "Food added with expiry mismatch warning"
	MsgAccepted        = "Donation accepted successfully"
	MsgRejected        = "Donation rejected successfully"
)

// Service coordinates donations between hotels and NGOs.
type Service struct {
	donations     repository.DonationStore
	ngos          repository.NgoStore
	notifier      notify.Notifier
	clock         clock.Clock
	log           *zap.Logger
	notifyTimeout time.Duration
}

// Options configures NewService. Donations and Ngos are required.
type Options struct {
	Donations     repository.DonationStore
	Ngos          repository.NgoStore
	Notifier      notify.Notifier
	Clock         clock.Clock
	Logger        *zap.Logger
	NotifyTimeout time.Duration
}

func NewService(opts Options) *Service {
	s := &Service{
		donations:     opts.Donations,
		ngos:          opts.Ngos,
		notifier:      opts.Notifier,
		clock:         opts.Clock,
		log:           opts.Logger,
		notifyTimeout: opts.NotifyTimeout,
	}
	if s.clock == nil {
		s.clock = clock.System()
	}
	s.log = logger.OrNop(s.log)
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.log)
	}
	return s
}

// SubmitInput is a hotel's donation offer. Zero values count as missing for
// the required fields.
type SubmitInput struct {
	HotelID       string
	HotelName     string
	FoodType      models.FoodCategory
	Quantity      float64
	ServesPeople  int
	Description   string
	PickupAddress string
	City          string
	Latitude      *float64
	Longitude     *float64
	Images        []string
	PreparedAt    time.Time
	HotelExpiryAt time.Time
}

func (in SubmitInput) missing() []string {
	var fields []string
	check := func(name string, absent bool) {
		if absent {
			fields = append(fields, name)
		}
	}
	check("hotelId", strings.TrimSpace(in.HotelID) == "")
	check("hotelName", strings.TrimSpace(in.HotelName) == "")
	check("foodType", in.FoodType == "")
	check("quantity", in.Quantity == 0)
	check("servesPeople", in.ServesPeople == 0)
	check("preparedAt", in.PreparedAt.IsZero())
	check("hotelExpiryAt", in.HotelExpiryAt.IsZero())
	check("pickupAddress", strings.TrimSpace(in.PickupAddress) == "")
	return fields
}

// Result is returned by state-changing operations. Warnings lists
// best-effort side effects that failed after the change committed.
type Result struct {
	Donation *models.Donation `json:"donation"`
	Message  string           `json:"message"`
	Warnings []notify.Warning `json:"warnings,omitempty"`
}

// Submit validates a donation offer, derives its expiry and stores it.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Result, error) {
	if missing := in.missing(); len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}
	if !in.FoodType.Valid() {
		return nil, apperr.Validation("invalid foodType %q: must be vegan, veg or non-veg", in.FoodType)
	}
	if in.Quantity < 0 {
		return nil, apperr.Validation("quantity must be positive")
	}
	if in.ServesPeople < 0 {
		return nil, apperr.Validation("servesPeople must be positive")
	}
	if len(in.Images) > models.MaxDonationImages {
		return nil, apperr.Validation("at most %d images are allowed", models.MaxDonationImages)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, apperr.Validation("latitude and longitude must be given together")
	}

	now := s.clock.Now()
	a, err := expiry.Evaluate(in.PreparedAt, in.HotelExpiryAt, in.FoodType, now)
	if err != nil {
		return nil, err
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}
	d, err := s.donations.Create(ctx, &models.Donation{
		HotelID:                strings.TrimSpace(in.HotelID),
		HotelName:              strings.TrimSpace(in.HotelName),
		FoodType:               in.FoodType,
		Quantity:               in.Quantity,
		ServesPeople:           in.ServesPeople,
		Description:            in.Description,
		PickupAddress:          strings.TrimSpace(in.PickupAddress),
		City:                   strings.TrimSpace(in.City),
		Latitude:               in.Latitude,
		Longitude:              in.Longitude,
		Images:                 images,
		PreparedAt:             in.PreparedAt.UTC(),
		HotelExpiryAt:          in.HotelExpiryAt.UTC(),
		AutoExpiryAt:           a.AutoExpiryAt.UTC(),
		ExpiryAt:               a.ExpiryAt.UTC(),
		ExpiryDifferenceHours:  a.DifferenceHours,
		ExpiryMismatchWarning:  a.MismatchWarning,
		ExpectedShelfLifeHours: a.ShelfLifeHours,
		Status:                 a.Status,
		CreatedAt:              now,
		UpdatedAt:              now,
	})
	if err != nil {
		return nil, apperr.Internal(err, "could not save donation")
	}
	msg := MsgCreated
	if d.ExpiryMismatchWarning {
		msg = MsgCreatedMismatch
	}
	s.log.Info("donation submitted",
		zap.String("donation_id", d.ID),
		zap.String("hotel_id", d.HotelID),
		zap.Time("expiry_at", d.ExpiryAt),
		zap.Bool("mismatch", d.ExpiryMismatchWarning))
	return &Result{Donation: d, Message: msg}, nil
}

// SweepExpired marks every overdue available donation as expired and
// returns how many changed.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.donations.MarkExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, apperr.Internal(err, "could not sweep expired donations")
	}
	if n > 0 {
		s.log.Debug("expired donations swept", zap.Int64("count", n))
	}
	return n, nil
}

// sweep runs before reads and mutations. A failed sweep is logged and the
// caller carries on: every reader also checks expiry against the clock.
func (s *Service) sweep(ctx context.Context) {
	if _, err := s.SweepExpired(ctx); err != nil {
		s.log.Warn("expiry sweep failed", zap.Error(err))
	}
}

// Get returns one donation.
func (s *Service) Get(ctx context.Context, id string) (*models.Donation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.MissingFields("donationId")
	}
	s.sweep(ctx)
	d, err := s.donations.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "could not load donation")
	}
	if d == nil {
		return nil, apperr.NotFound("donation not found")
	}
	return d, nil
}

// Accept hands an available donation to the NGO. Exactly one of several
// concurrent callers wins; the others get NotFound.
func (s *Service) Accept(ctx context.Context, donationID, ngoID, ngoName string) (*Result, error) {
	var missing []string
	if strings.TrimSpace(donationID) == "" {
		missing = append(missing, "donationId")
	}
	if strings.TrimSpace(ngoID) == "" {
		missing = append(missing, "ngoId")
	}
	if strings.TrimSpace(ngoName) == "" {
		missing = append(missing, "ngoName")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}
	s.sweep(ctx)

	now := s.clock.Now()
	d, err := s.donations.Accept(ctx, donationID, repository.Acceptance{NgoID: ngoID, NgoName: ngoName, At: now})
	if err != nil {
		return nil, apperr.Internal(err, "could not accept donation")
	}
	if d == nil {
		return nil, apperr.NotFound("donation not found or expired")
	}
	s.log.Info("donation accepted", zap.String("donation_id", d.ID), zap.String("ngo_id", ngoID))

	res := &Result{Donation: d, Message: MsgAccepted}
	payload := notify.Payload{
		"message": fmt.Sprintf("%s has accepted your food donation.", ngoName),
		"ngoName": ngoName,
		"ngoId":   ngoID,
		"foodId":  d.ID,
	}
	if w := notify.Deliver(ctx, s.notifyTimeout, s.log, "hotel notification", func(ctx context.Context) error {
		return s.notifier.NotifyHotel(ctx, d.HotelID, notify.EventFoodAccepted, payload)
	}); w != nil {
		res.Warnings = append(res.Warnings, *w)
	}
	return res, nil
}

// Reject hides the donation from the NGO's listings. Rejecting twice is a no-op.
func (s *Service) Reject(ctx context.Context, donationID, ngoID string) error {
	var missing []string
	if strings.TrimSpace(donationID) == "" {
		missing = append(missing, "donationId")
	}
	if strings.TrimSpace(ngoID) == "" {
		missing = append(missing, "ngoId")
	}
	if len(missing) > 0 {
		return apperr.MissingFields(missing...)
	}
	found, err := s.donations.AddRejection(ctx, donationID, ngoID)
	if err != nil {
		return apperr.Internal(err, "could not reject donation")
	}
	if !found {
		return apperr.NotFound("donation not found")
	}
	return nil
}

// History lists a hotel's donations, newest first.
func (s *Service) History(ctx context.Context, hotelID string) ([]*models.Donation, error) {
	if strings.TrimSpace(hotelID) == "" {
		return nil, apperr.MissingFields("hotelId")
	}
	s.sweep(ctx)
	out, err := s.donations.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, apperr.Internal(err, "could not load donation history")
	}
	return out, nil
}

// NgoHistory lists donations the NGO has taken, most recently accepted first.
func (s *Service) NgoHistory(ctx context.Context, ngoID string) ([]*models.Donation, error) {
	if strings.TrimSpace(ngoID) == "" {
		return nil, apperr.MissingFields("ngoId")
	}
	s.sweep(ctx)
	out, err := s.donations.ListAcceptedByNgo(ctx, ngoID)
	if err != nil {
		return nil, apperr.Internal(err, "could not load ngo history")
	}
	return out, nil
}
