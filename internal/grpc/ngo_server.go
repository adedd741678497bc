package grpcserver

import (
	"context"

	sewav1 "sewa/api/sewa/v1"
	"sewa/internal/auth"
	"sewa/internal/donation"
	"sewa/internal/pickup"
	"sewa/models"
)

// NgoServer implements sewa.v1.NgoService for verified NGOs.
type NgoServer struct {
	Services
}

func (s *NgoServer) ngo(ctx context.Context) (*models.Ngo, error) {
	p, err := auth.RequireNgo(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.Registry.ActiveNgo(ctx, p.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return n, nil
}

// ListAvailable returns open donations in the NGO's city, minus those it declined.
func (s *NgoServer) ListAvailable(ctx context.Context, _ *sewav1.Empty) (*donation.AvailableList, error) {
	n, err := s.ngo(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.Donations.ListAvailable(ctx, n.ID)
	return list, toStatus(err)
}

func (s *NgoServer) GetDonation(ctx context.Context, req *sewav1.DonationRef) (*models.Donation, error) {
	if _, err := s.ngo(ctx); err != nil {
		return nil, err
	}
	d, err := s.Donations.Get(ctx, req.DonationID)
	return d, toStatus(err)
}

// AcceptDonation claims a donation; exactly one NGO wins a race.
func (s *NgoServer) AcceptDonation(ctx context.Context, req *sewav1.DonationRef) (*donation.Result, error) {
	n, err := s.ngo(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Donations.Accept(ctx, req.DonationID, n.ID, n.OrganizationName)
	return res, toStatus(err)
}

func (s *NgoServer) RejectDonation(ctx context.Context, req *sewav1.DonationRef) (*sewav1.MessageResponse, error) {
	n, err := s.ngo(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Donations.Reject(ctx, req.DonationID, n.ID); err != nil {
		return nil, toStatus(err)
	}
	return &sewav1.MessageResponse{Message: donation.MsgRejected}, nil
}

func (s *NgoServer) History(ctx context.Context, _ *sewav1.Empty) (*sewav1.DonationList, error) {
	n, err := s.ngo(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.Donations.NgoHistory(ctx, n.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &sewav1.DonationList{Donations: list}, nil
}

// VerifyOTP confirms a pickup with the code the hotel received.
func (s *NgoServer) VerifyOTP(ctx context.Context, req *sewav1.VerifyOTPRequest) (*pickup.VerifyResult, error) {
	n, err := s.ngo(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Pickups.Verify(ctx, n.ID, req.OTP)
	return res, toStatus(err)
}

func (s *NgoServer) ListPickups(ctx context.Context, _ *sewav1.Empty) (*sewav1.PickupList, error) {
	n, err := s.ngo(ctx)
	if err != nil {
		return nil, err
	}
	views, err := s.Pickups.ListForNgo(ctx, n.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &sewav1.PickupList{Pickups: views}, nil
}
