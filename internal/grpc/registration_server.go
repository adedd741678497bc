package grpcserver

import (
	"context"

	"sewa/internal/registry"
)

// RegistrationServer implements sewa.v1.RegistrationService. New partners
// start pending until an admin verifies them.
type RegistrationServer struct {
	Services
}

func (s *RegistrationServer) RegisterHotel(ctx context.Context, req *registry.HotelInput) (*registry.HotelResult, error) {
	res, err := s.Registry.RegisterHotel(ctx, *req)
	return res, toStatus(err)
}

func (s *RegistrationServer) RegisterNgo(ctx context.Context, req *registry.NgoInput) (*registry.NgoResult, error) {
	res, err := s.Registry.RegisterNgo(ctx, *req)
	return res, toStatus(err)
}
