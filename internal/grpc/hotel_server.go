package grpcserver

import (
	"context"

	sewav1 "sewa/api/sewa/v1"
	"sewa/internal/auth"
	"sewa/internal/donation"
	"sewa/internal/pickup"
	"sewa/models"
)

// HotelServer implements sewa.v1.HotelService for verified hotels.
type HotelServer struct {
	Services
}

// hotel resolves the calling hotel and checks it is verified.
func (s *HotelServer) hotel(ctx context.Context) (*models.Hotel, error) {
	p, err := auth.RequireHotel(ctx)
	if err != nil {
		return nil, err
	}
	h, err := s.Registry.ActiveHotel(ctx, p.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return h, nil
}

// SubmitDonation offers food on behalf of the calling hotel.
func (s *HotelServer) SubmitDonation(ctx context.Context, req *sewav1.SubmitDonationRequest) (*donation.Result, error) {
	h, err := s.hotel(ctx)
	if err != nil {
		return nil, err
	}
	in, err := req.Input(h, s.Location)
	if err != nil {
		return nil, toStatus(err)
	}
	res, err := s.Donations.Submit(ctx, in)
	return res, toStatus(err)
}

func (s *HotelServer) DonationHistory(ctx context.Context, _ *sewav1.Empty) (*sewav1.DonationList, error) {
	h, err := s.hotel(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.Donations.History(ctx, h.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &sewav1.DonationList{Donations: list}, nil
}

// GenerateOTP issues a pickup code for an NGO that accepted one of the hotel's donations.
func (s *HotelServer) GenerateOTP(ctx context.Context, req *sewav1.GenerateOTPRequest) (*pickup.IssueResult, error) {
	h, err := s.hotel(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Pickups.Issue(ctx, h.ID, req.NgoID, req.DonationID)
	return res, toStatus(err)
}

func (s *HotelServer) ListPickups(ctx context.Context, _ *sewav1.Empty) (*sewav1.PickupList, error) {
	h, err := s.hotel(ctx)
	if err != nil {
		return nil, err
	}
	views, err := s.Pickups.ListForHotel(ctx, h.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &sewav1.PickupList{Pickups: views}, nil
}
