// Package registry handles hotel and NGO registration and the admin
// verification workflow that gates them.
package registry

import (
	"context"
	"errors"
	"fmt"
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

const MsgRegistered = "Your registration has been processed. Once verified, we will email you."

// Action is an admin decision on a pending registration.
type Action string

const (
	ActionVerify Action = "verify"
	ActionReject Action = "reject"
)

func (a Action) status() (models.VerificationStatus, error) {
	switch a {
	case ActionVerify:
		return models.VerificationVerified, nil
	case ActionReject:
		return models.VerificationRejected, nil
	}
	return "", apperr.Validation("invalid action %q: must be verify or reject", string(a))
}

// Service manages partner records.
type Service struct {
	hotels        repository.HotelStore
	ngos          repository.NgoStore
	notifier      notify.Notifier
	clock         clock.Clock
	log           *zap.Logger
	notifyTimeout time.Duration
}

type Options struct {
	Hotels        repository.HotelStore
	Ngos          repository.NgoStore
	Notifier      notify.Notifier
	Clock         clock.Clock
	Logger        *zap.Logger
	NotifyTimeout time.Duration
}

func NewService(opts Options) *Service {
	s := &Service{
		hotels:        opts.Hotels,
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

type HotelInput struct {
	HotelName     string `json:"hotel_name"`
	ManagerName   string `json:"manager_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	LicenseNumber string `json:"license_number"`
}

type NgoInput struct {
	OrganizationName string   `json:"organization_name"`
	ContactPerson    string   `json:"contact_person"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	Address          string   `json:"address"`
	City             string   `json:"city"`
	LicenseNumber    string   `json:"license_number"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
}

type HotelResult struct {
	Hotel    *models.Hotel    `json:"hotel"`
	Message  string           `json:"message"`
	Warnings []notify.Warning `json:"warnings,omitempty"`
}

type NgoResult struct {
	Ngo      *models.Ngo      `json:"ngo"`
	Message  string           `json:"message"`
	Warnings []notify.Warning `json:"warnings,omitempty"`
}

func missingOf(pairs ...string) []string {
	var out []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			out = append(out, pairs[i])
		}
	}
	return out
}

func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\r\n")
}

// RegisterHotel stores a pending hotel and tells the admin about it.
func (s *Service) RegisterHotel(ctx context.Context, in HotelInput) (*HotelResult, error) {
	if missing := missingOf("hotelName", in.HotelName, "managerName", in.ManagerName, "email", in.Email,
		"phone", in.Phone, "address", in.Address, "licenseNumber", in.LicenseNumber); len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validEmail(email) {
		return nil, apperr.Validation("invalid email %q", in.Email)
	}
	h, err := s.hotels.Create(ctx, &models.Hotel{
		HotelName:          strings.TrimSpace(in.HotelName),
		ManagerName:        strings.TrimSpace(in.ManagerName),
		Email:              email,
		Phone:              strings.TrimSpace(in.Phone),
		Address:            strings.TrimSpace(in.Address),
		City:               strings.TrimSpace(in.City),
		LicenseNumber:      strings.TrimSpace(in.LicenseNumber),
		VerificationStatus: models.VerificationPending,
		CreatedAt:          s.clock.Now(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Validation("hotel already exists")
	}
	if err != nil {
		return nil, apperr.Internal(err, "could not register hotel")
	}
	s.log.Info("hotel registered", zap.String("hotel_id", h.ID))

	res := &HotelResult{Hotel: h, Message: MsgRegistered}
	payload := notify.Payload{
		"kind":          string(models.PartnerHotel),
		"id":            h.ID,
		"hotelName":     h.HotelName,
		"managerName":   h.ManagerName,
		"email":         h.Email,
		"phone":         h.Phone,
		"address":       h.Address,
		"city":          h.City,
		"licenseNumber": h.LicenseNumber,
	}
	if w := s.notifyAdmin(ctx, payload); w != nil {
		res.Warnings = append(res.Warnings, *w)
	}
	return res, nil
}

// RegisterNgo stores a pending NGO and tells the admin about it.
func (s *Service) RegisterNgo(ctx context.Context, in NgoInput) (*NgoResult, error) {
	if missing := missingOf("organizationName", in.OrganizationName, "contactPerson", in.ContactPerson, "email", in.Email,
		"phone", in.Phone, "address", in.Address, "city", in.City, "licenseNumber", in.LicenseNumber); len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validEmail(email) {
		return nil, apperr.Validation("invalid email %q", in.Email)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, apperr.Validation("latitude and longitude must be given together")
	}
	n, err := s.ngos.Create(ctx, &models.Ngo{
		OrganizationName:   strings.TrimSpace(in.OrganizationName),
		ContactPerson:      strings.TrimSpace(in.ContactPerson),
		Email:              email,
		Phone:              strings.TrimSpace(in.Phone),
		Address:            strings.TrimSpace(in.Address),
		City:               strings.TrimSpace(in.City),
		LicenseNumber:      strings.TrimSpace(in.LicenseNumber),
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		VerificationStatus: models.VerificationPending,
		CreatedAt:          s.clock.Now(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Validation("NGO already exists")
	}
	if err != nil {
		return nil, apperr.Internal(err, "could not register ngo")
	}
	s.log.Info("ngo registered", zap.String("ngo_id", n.ID))

	res := &NgoResult{Ngo: n, Message: MsgRegistered}
	payload := notify.Payload{
		"kind":             string(models.PartnerNgo),
		"id":               n.ID,
		"organizationName": n.OrganizationName,
		"contactPerson":    n.ContactPerson,
		"email":            n.Email,
		"phone":            n.Phone,
		"address":          n.Address,
		"city":             n.City,
		"licenseNumber":    n.LicenseNumber,
	}
	if w := s.notifyAdmin(ctx, payload); w != nil {
		res.Warnings = append(res.Warnings, *w)
	}
	return res, nil
}

func (s *Service) notifyAdmin(ctx context.Context, payload notify.Payload) *notify.Warning {
	return notify.Deliver(ctx, s.notifyTimeout, s.log, "admin notification", func(ctx context.Context) error {
		return s.notifier.NotifyAdmin(ctx, notify.EventRegistrationReceived, payload)
	})
}

// PendingList holds registrations awaiting review.
type PendingList struct {
	Hotels []*models.Hotel `json:"pending_hotels"`
	Ngos   []*models.Ngo   `json:"pending_ngos"`
	Total  int             `json:"total"`
}

func (s *Service) Pending(ctx context.Context) (*PendingList, error) {
	pending := models.VerificationPending
	hotels, err := s.hotels.List(ctx, &pending)
	if err != nil {
		return nil, apperr.Internal(err, "could not list hotels")
	}
	ngos, err := s.ngos.List(ctx, &pending)
	if err != nil {
		return nil, apperr.Internal(err, "could not list ngos")
	}
	return &PendingList{Hotels: hotels, Ngos: ngos, Total: len(hotels) + len(ngos)}, nil
}

// Stats summarizes every registration.
type Stats struct {
	TotalHotels    int `json:"total_hotels"`
	TotalNgos      int `json:"total_ngos"`
	VerifiedHotels int `json:"verified_hotels"`
	VerifiedNgos   int `json:"verified_ngos"`
	PendingHotels  int `json:"pending_hotels"`
	PendingNgos    int `json:"pending_ngos"`
}

type OverviewList struct {
	Hotels []*models.Hotel `json:"hotels"`
	Ngos   []*models.Ngo   `json:"ngos"`
	Stats  Stats           `json:"stats"`
}

// Overview lists every partner, newest first, with counts.
func (s *Service) Overview(ctx context.Context) (*OverviewList, error) {
	hotels, err := s.hotels.List(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err, "could not list hotels")
	}
	ngos, err := s.ngos.List(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err, "could not list ngos")
	}
	st := Stats{TotalHotels: len(hotels), TotalNgos: len(ngos)}
	for _, h := range hotels {
		switch h.VerificationStatus {
		case models.VerificationVerified:
			st.VerifiedHotels++
		case models.VerificationPending:
			st.PendingHotels++
		}
	}
	for _, n := range ngos {
		switch n.VerificationStatus {
		case models.VerificationVerified:
			st.VerifiedNgos++
		case models.VerificationPending:
			st.PendingNgos++
		}
	}
	return &OverviewList{Hotels: hotels, Ngos: ngos, Stats: st}, nil
}

// VerifyHotel applies an admin decision to a hotel and emails it the outcome.
func (s *Service) VerifyHotel(ctx context.Context, id string, action Action) (*HotelResult, error) {
	status, err := action.status()
	if err != nil {
		return nil, err
	}
	found, err := s.hotels.UpdateVerification(ctx, id, status)
	if err != nil {
		return nil, apperr.Internal(err, "could not update hotel")
	}
	if !found {
		return nil, apperr.NotFound("hotel not found")
	}
	h, err := s.hotels.GetByID(ctx, id)
	if err != nil || h == nil {
		return nil, apperr.Internal(err, "could not reload hotel")
	}
	s.log.Info("hotel verification updated", zap.String("hotel_id", id), zap.String("status", string(status)))
	res := &HotelResult{Hotel: h, Message: fmt.Sprintf("Hotel %s successfully", status)}
	payload := notify.Payload{
		"kind":          string(models.PartnerHotel),
		"status":        string(status),
		"name":          h.HotelName,
		"contact":       h.ManagerName,
		"licenseNumber": h.LicenseNumber,
	}
	if w := s.notifyPartner(ctx, h.Email, payload); w != nil {
		res.Warnings = append(res.Warnings, *w)
	}
	return res, nil
}

// VerifyNgo applies an admin decision to an NGO and emails it the outcome.
func (s *Service) VerifyNgo(ctx context.Context, id string, action Action) (*NgoResult, error) {
	status, err := action.status()
	if err != nil {
		return nil, err
	}
	found, err := s.ngos.UpdateVerification(ctx, id, status)
	if err != nil {
		return nil, apperr.Internal(err, "could not update ngo")
	}
	if !found {
		return nil, apperr.NotFound("NGO not found")
	}
	n, err := s.ngos.GetByID(ctx, id)
	if err != nil || n == nil {
		return nil, apperr.Internal(err, "could not reload ngo")
	}
	s.log.Info("ngo verification updated", zap.String("ngo_id", id), zap.String("status", string(status)))
	res := &NgoResult{Ngo: n, Message: fmt.Sprintf("NGO %s successfully", status)}
	payload := notify.Payload{
		"kind":          string(models.PartnerNgo),
		"status":        string(status),
		"name":          n.OrganizationName,
		"contact":       n.ContactPerson,
		"licenseNumber": n.LicenseNumber,
	}
	if w := s.notifyPartner(ctx, n.Email, payload); w != nil {
		res.Warnings = append(res.Warnings, *w)
	}
	return res, nil
}

func (s *Service) notifyPartner(ctx context.Context, email string, payload notify.Payload) *notify.Warning {
	return notify.Deliver(ctx, s.notifyTimeout, s.log, "verification email", func(ctx context.Context) error {
		return s.notifier.NotifyPartner(ctx, email, notify.EventVerificationUpdated, payload)
	})
}

// ActiveHotel returns the hotel when it may act on the platform.
func (s *Service) ActiveHotel(ctx context.Context, id string) (*models.Hotel, error) {
	h, err := s.Hotel(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.VerificationStatus != models.VerificationVerified {
		return nil, apperr.Forbidden("hotel registration is %s; wait for admin verification", h.VerificationStatus)
	}
	return h, nil
}

// ActiveNgo returns the NGO when it may act on the platform.
func (s *Service) ActiveNgo(ctx context.Context, id string) (*models.Ngo, error) {
	n, err := s.Ngo(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.VerificationStatus != models.VerificationVerified {
		return nil, apperr.Forbidden("NGO registration is %s; wait for admin verification", n.VerificationStatus)
	}
	return n, nil
}

// Ngo returns an NGO record.
func (s *Service) Ngo(ctx context.Context, id string) (*models.Ngo, error) {
	n, err := s.ngos.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "could not load ngo")
	}
	if n == nil {
		return nil, apperr.NotFound("NGO not found")
	}
	return n, nil
}

// Hotel returns a hotel record.
func (s *Service) Hotel(ctx context.Context, id string) (*models.Hotel, error) {
	h, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "could not load hotel")
	}
	if h == nil {
		return nil, apperr.NotFound("hotel not found")
	}
	return h, nil
}
