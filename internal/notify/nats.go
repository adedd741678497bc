package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// Publisher sends a message on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, msg []byte) error
}

// NATSPublisher publishes real-time events to NATS.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("sewa"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.conn.Publish(subject, msg); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		return p.conn.Flush()
	}
	return p.conn.FlushWithContext(ctx)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// Subjects builds NATS subjects under a common prefix.
type Subjects struct {
	Prefix string
}

func (s Subjects) prefix() string {
	p := strings.Trim(s.Prefix, ".")
	if p == "" {
		return "sewa"
	}
	return p
}

// Hotel returns <prefix>.hotel.<hotelID>.<event>.
func (s Subjects) Hotel(hotelID string, event Event) string {
	return fmt.Sprintf("%s.hotel.%s.%s", s.prefix(), token(hotelID), event)
}

// Admin returns <prefix>.admin.<event>.
func (s Subjects) Admin(event Event) string {
	return fmt.Sprintf("%s.admin.%s", s.prefix(), event)
}

// token strips characters NATS treats as subject separators or wildcards.
func token(s string) string {
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}
