package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"sewa/internal/logger"
)

// Hub is the Notifier used by the server. Real-time events go to the
// publisher and emails to the mailer. A Hub with neither only logs.
type Hub struct {
	publisher  Publisher
	mailer     Mailer
	subjects   Subjects
	adminEmail string
	log        *zap.Logger
}

// HubOptions configures NewHub. Nil Publisher or Mailer disables that channel.
type HubOptions struct {
	Publisher     Publisher
	Mailer        Mailer
	SubjectPrefix string
	AdminEmail    string
	Logger        *zap.Logger
}

func NewHub(opts HubOptions) *Hub {
	log := opts.Logger
	log = logger.OrNop(log)
	return &Hub{
		publisher:  opts.Publisher,
		mailer:     opts.Mailer,
		subjects:   Subjects{Prefix: opts.SubjectPrefix},
		adminEmail: opts.AdminEmail,
		log:        log.Named("notify"),
	}
}

// NewLogNotifier returns a Hub that only writes notifications to the log.
func NewLogNotifier(log *zap.Logger) *Hub {
	return NewHub(HubOptions{Logger: log})
}

var _ Notifier = (*Hub)(nil)

func (h *Hub) NotifyHotel(ctx context.Context, hotelID string, event Event, payload Payload) error {
	h.log.Info("hotel event", zap.String("hotel_id", hotelID), zap.String("event", string(event)), zap.Any("payload", payload))
	if h.publisher == nil {
		return nil
	}
	return h.publish(ctx, h.subjects.Hotel(hotelID, event), payload)
}

func (h *Hub) NotifyAdmin(ctx context.Context, event Event, payload Payload) error {
	h.log.Info("admin event", zap.String("event", string(event)), zap.Any("payload", payload))
	var errs []error
	if h.publisher != nil {
		if err := h.publish(ctx, h.subjects.Admin(event), payload); err != nil {
			errs = append(errs, err)
		}
	}
	if h.mailer != nil && h.adminEmail != "" {
		if err := h.mailer.Send(ctx, adminMessage(h.adminEmail, event, payload)); err != nil {
			errs = append(errs, fmt.Errorf("email admin: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (h *Hub) NotifyPartner(ctx context.Context, email string, event Event, payload Payload) error {
	h.log.Info("partner event", zap.String("email", email), zap.String("event", string(event)))
	if h.mailer == nil {
		return nil
	}
	return h.mailer.Send(ctx, partnerMessage(email, event, payload))
}

func (h *Hub) EmailOTP(ctx context.Context, hotelEmail, otp string, expiresAt time.Time) error {
	// The code itself is never logged.
	h.log.Info("pickup code issued", zap.String("email", hotelEmail), zap.Time("expires_at", expiresAt))
	if h.mailer == nil {
		return nil
	}
	return h.mailer.Send(ctx, otpMessage(hotelEmail, otp, expiresAt))
}

func (h *Hub) publish(ctx context.Context, subject string, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if err := h.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func otpMessage(to, otp string, expiresAt time.Time) Message {
	return Message{
		To:      to,
		Subject: "Sewa Pickup OTP Verification",
		Body: fmt.Sprintf("Your OTP for confirming food pickup is %s.\nThis OTP will expire at %s.\n",
			otp, expiresAt.UTC().Format("02 Jan 2006 15:04 MST")),
	}
}

func adminMessage(to string, event Event, payload Payload) Message {
	kind := payloadString(payload, "kind")
	subject := fmt.Sprintf("Sewa: %s", event)
	if event == EventRegistrationReceived {
		subject = fmt.Sprintf("New %s Registration - License Verification Required", displayKind(kind))
	}
	return Message{To: to, Subject: subject, Body: describe(payload)}
}

func partnerMessage(to string, event Event, payload Payload) Message {
	kind := displayKind(payloadString(payload, "kind"))
	subject := fmt.Sprintf("Sewa: %s", event)
	if event == EventVerificationUpdated {
		if payloadString(payload, "status") == "verified" {
			subject = fmt.Sprintf("Your %s Registration has been Verified!", kind)
		} else {
			subject = fmt.Sprintf("Your %s Registration has been Rejected", kind)
		}
	}
	return Message{To: to, Subject: subject, Body: describe(payload)}
}

func displayKind(kind string) string {
	switch kind {
	case "ngo":
		return "NGO"
	case "hotel":
		return "Hotel"
	}
	return "Partner"
}

func payloadString(p Payload, key string) string {
	if v, ok := p[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

// describe renders a payload as sorted "key: value" lines.
func describe(p Payload) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, p[k])
	}
	return b.String()
}
