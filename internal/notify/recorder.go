package notify

import (
	"context"
	"sync"
	"time"
)

// Call is one notification captured by Recorder.
type Call struct {
	Method    string // NotifyHotel, NotifyAdmin, NotifyPartner or EmailOTP
	Target    string // hotel id, partner email or hotel email; empty for admin
	Event     Event
	Payload   Payload
	OTP       string
	ExpiresAt time.Time
}

// Recorder is an in-memory Notifier. Setting Err makes every call fail after
// being recorded.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	Err   error
}

var _ Notifier = (*Recorder)(nil)

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.Err
}

// Calls returns a snapshot of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsTo returns recorded calls of one method.
func (r *Recorder) CallsTo(method string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) NotifyHotel(_ context.Context, hotelID string, event Event, payload Payload) error {
	return r.record(Call{Method: "NotifyHotel", Target: hotelID, Event: event, Payload: payload})
}

func (r *Recorder) NotifyAdmin(_ context.Context, event Event, payload Payload) error {
	return r.record(Call{Method: "NotifyAdmin", Event: event, Payload: payload})
}

func (r *Recorder) NotifyPartner(_ context.Context, email string, event Event, payload Payload) error {
	return r.record(Call{Method: "NotifyPartner", Target: email, Event: event, Payload: payload})
}

func (r *Recorder) EmailOTP(_ context.Context, hotelEmail, otp string, expiresAt time.Time) error {
	return r.record(Call{Method: "EmailOTP", Target: hotelEmail, OTP: otp, ExpiresAt: expiresAt})
}
