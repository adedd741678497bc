// Package notify delivers best-effort notifications to hotels, partners and
// the admin. Callers run deliveries after their state change has committed,
// so a failed delivery is reported as a warning and never undoes the change.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sewa/internal/apperr"
)

// Event names a notification kind.
type Event string

const (
	EventFoodAccepted         Event = "food-accepted"
	EventPickupConfirmed      Event = "pickup-confirmed"
	EventRegistrationReceived Event = "registration-received"
	EventVerificationUpdated  Event = "verification-updated"
)

// Payload is the event body. It is encoded as JSON on the wire.
type Payload map[string]any

// Notifier is the outbound port used by the domain services.
type Notifier interface {
	// NotifyHotel sends a real-time event addressed to one hotel.
	NotifyHotel(ctx context.Context, hotelID string, event Event, payload Payload) error
	// NotifyAdmin tells the administrator about a partner event.
	NotifyAdmin(ctx context.Context, event Event, payload Payload) error
	// NotifyPartner emails a registered hotel or NGO.
	NotifyPartner(ctx context.Context, email string, event Event, payload Payload) error
	// EmailOTP sends a pickup code to a hotel.
	EmailOTP(ctx context.Context, hotelEmail, otp string, expiresAt time.Time) error
}

// DefaultTimeout bounds a single delivery when the caller does not configure one.
const DefaultTimeout = 5 * time.Second

// Warning reports a best-effort side effect that failed after the state
// change it followed had committed.
type Warning struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Deliver runs fn under timeout and converts a failure into a
// dependency_failure warning. It returns nil on success.
func Deliver(ctx context.Context, timeout time.Duration, log *zap.Logger, what string, fn func(ctx context.Context) error) *Warning {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		derr := apperr.Dependency(err, "%s failed", what)
		if log != nil {
			log.Warn("notification failed", zap.String("notification", what), zap.Error(derr))
		}
		return &Warning{Kind: derr.Kind, Message: derr.Error()}
	}
	return nil
}
