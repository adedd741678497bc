// Package app wires the domain services over one set of stores so the
// transports and binaries share the same construction.
package app

import (
	"time"

	"go.uber.org/zap"

	"sewa/internal/clock"
	"sewa/internal/donation"
	"sewa/internal/logger"
	"sewa/internal/notify"
	"sewa/internal/pickup"
	"sewa/internal/registry"
	"sewa/repository"
)

type Options struct {
	Stores        repository.Stores
	Notifier      notify.Notifier
	Clock         clock.Clock
	Logger        *zap.Logger
	NotifyTimeout time.Duration
	Location      *time.Location // zone-less donation timestamps; UTC when nil
}

// Services are the domain services the transports delegate to.
type Services struct {
	Donations *donation.Service
	Pickups   *pickup.Service
	Registry  *registry.Service
	Location  *time.Location
}

func NewServices(o Options) Services {
	o.Logger = logger.OrNop(o.Logger)
	if o.Notifier == nil {
		o.Notifier = notify.NewLogNotifier(o.Logger)
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return Services{
		Donations: donation.NewService(donation.Options{
			Donations:     o.Stores.Donations,
			Ngos:          o.Stores.Ngos,
			Notifier:      o.Notifier,
			Clock:         o.Clock,
			Logger:        o.Logger.Named("donation"),
			NotifyTimeout: o.NotifyTimeout,
		}),
		Pickups: pickup.NewService(pickup.Options{
			Stores:        o.Stores,
			Notifier:      o.Notifier,
			Clock:         o.Clock,
			Logger:        o.Logger.Named("pickup"),
			NotifyTimeout: o.NotifyTimeout,
		}),
		Registry: registry.NewService(registry.Options{
			Hotels:        o.Stores.Hotels,
			Ngos:          o.Stores.Ngos,
			Notifier:      o.Notifier,
			Clock:         o.Clock,
			Logger:        o.Logger.Named("registry"),
			NotifyTimeout: o.NotifyTimeout,
		}),
		Location: o.Location,
	}
}
