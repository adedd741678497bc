package grpcserver

import (
	"context"

	sewav1 "sewa/api/sewa/v1"
	"sewa/internal/auth"
	"sewa/internal/registry"
)

// AdminServer implements sewa.v1.AdminService.
type AdminServer struct {
	Services
}

// Authentication is centralized in internal/auth.

func (s *AdminServer) Pending(ctx context.Context, _ *sewav1.Empty) (*registry.PendingList, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	list, err := s.Registry.Pending(ctx)
	return list, toStatus(err)
}

// Overview lists every partner with verification counts.
func (s *AdminServer) Overview(ctx context.Context, _ *sewav1.Empty) (*registry.OverviewList, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	list, err := s.Registry.Overview(ctx)
	return list, toStatus(err)
}

func (s *AdminServer) VerifyHotel(ctx context.Context, req *sewav1.VerifyPartnerRequest) (*registry.HotelResult, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	res, err := s.Registry.VerifyHotel(ctx, req.ID, registry.Action(req.Action))
	return res, toStatus(err)
}

func (s *AdminServer) VerifyNgo(ctx context.Context, req *sewav1.VerifyPartnerRequest) (*registry.NgoResult, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	res, err := s.Registry.VerifyNgo(ctx, req.ID, registry.Action(req.Action))
	return res, toStatus(err)
}

// SweepExpired forces the available -> expired sweep and reports how many rows moved.
func (s *AdminServer) SweepExpired(ctx context.Context, _ *sewav1.Empty) (*sewav1.SweepResponse, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	n, err := s.Donations.SweepExpired(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &sewav1.SweepResponse{Expired: n}, nil
}
