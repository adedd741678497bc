package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	sewav1 "sewa/api/sewa/v1"
	"sewa/internal/donation"
	"sewa/internal/pickup"
	"sewa/internal/registry"
	"sewa/models"
)

// method builds a unary MethodDesc around a typed server method. The
// returned function takes the service name so FullMethod is set for
// interceptors.
func method[S any, Req any, Resp any](name string, call func(S, context.Context, *Req) (*Resp, error)) func(string) grpc.MethodDesc {
	return func(service string) grpc.MethodDesc {
		full := "/" + service + "/" + name
		return grpc.MethodDesc{
			MethodName: name,
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(Req)
				if err := dec(in); err != nil {
					return nil, err
				}
				s := srv.(S)
				if interceptor == nil {
					return call(s, ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
				handler := func(ctx context.Context, req any) (any, error) {
					return call(s, ctx, req.(*Req))
				}
				return interceptor(ctx, in, info, handler)
			},
		}
	}
}

func serviceDesc(name string, handlerType any, methods ...func(string) grpc.MethodDesc) *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: name,
		HandlerType: handlerType,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "sewa/v1",
	}
	for _, m := range methods {
		desc.Methods = append(desc.Methods, m(name))
	}
	return desc
}

// HotelServiceServer is implemented by *HotelServer.
type HotelServiceServer interface {
	SubmitDonation(context.Context, *sewav1.SubmitDonationRequest) (*donation.Result, error)
	DonationHistory(context.Context, *sewav1.Empty) (*sewav1.DonationList, error)
	GenerateOTP(context.Context, *sewav1.GenerateOTPRequest) (*pickup.IssueResult, error)
	ListPickups(context.Context, *sewav1.Empty) (*sewav1.PickupList, error)
}

var hotelServiceDesc = serviceDesc(sewav1.HotelService, (*HotelServiceServer)(nil),
	method("SubmitDonation", (*HotelServer).SubmitDonation),
	method("DonationHistory", (*HotelServer).DonationHistory),
	method("GenerateOTP", (*HotelServer).GenerateOTP),
	method("ListPickups", (*HotelServer).ListPickups),
)

// NgoServiceServer is implemented by *NgoServer.
type NgoServiceServer interface {
	ListAvailable(context.Context, *sewav1.Empty) (*donation.AvailableList, error)
	GetDonation(context.Context, *sewav1.DonationRef) (*models.Donation, error)
	AcceptDonation(context.Context, *sewav1.DonationRef) (*donation.Result, error)
	RejectDonation(context.Context, *sewav1.DonationRef) (*sewav1.MessageResponse, error)
	History(context.Context, *sewav1.Empty) (*sewav1.DonationList, error)
	VerifyOTP(context.Context, *sewav1.VerifyOTPRequest) (*pickup.VerifyResult, error)
	ListPickups(context.Context, *sewav1.Empty) (*sewav1.PickupList, error)
}

var ngoServiceDesc = serviceDesc(sewav1.NgoService, (*NgoServiceServer)(nil),
	method("ListAvailable", (*NgoServer).ListAvailable),
	method("GetDonation", (*NgoServer).GetDonation),
	method("AcceptDonation", (*NgoServer).AcceptDonation),
	method("RejectDonation", (*NgoServer).RejectDonation),
	method("History", (*NgoServer).History),
	method("VerifyOTP", (*NgoServer).VerifyOTP),
	method("ListPickups", (*NgoServer).ListPickups),
)

// AdminServiceServer is implemented by *AdminServer.
type AdminServiceServer interface {
	Pending(context.Context, *sewav1.Empty) (*registry.PendingList, error)
	Overview(context.Context, *sewav1.Empty) (*registry.OverviewList, error)
	VerifyHotel(context.Context, *sewav1.VerifyPartnerRequest) (*registry.HotelResult, error)
	VerifyNgo(context.Context, *sewav1.VerifyPartnerRequest) (*registry.NgoResult, error)
	SweepExpired(context.Context, *sewav1.Empty) (*sewav1.SweepResponse, error)
}

var adminServiceDesc = serviceDesc(sewav1.AdminService, (*AdminServiceServer)(nil),
	method("Pending", (*AdminServer).Pending),
	method("Overview", (*AdminServer).Overview),
	method("VerifyHotel", (*AdminServer).VerifyHotel),
	method("VerifyNgo", (*AdminServer).VerifyNgo),
	method("SweepExpired", (*AdminServer).SweepExpired),
)

// RegistrationServiceServer is implemented by *RegistrationServer. Its
// methods are reachable without a token.
type RegistrationServiceServer interface {
	RegisterHotel(context.Context, *registry.HotelInput) (*registry.HotelResult, error)
	RegisterNgo(context.Context, *registry.NgoInput) (*registry.NgoResult, error)
}

var registrationServiceDesc = serviceDesc(sewav1.RegistrationService, (*RegistrationServiceServer)(nil),
	method("RegisterHotel", (*RegistrationServer).RegisterHotel),
	method("RegisterNgo", (*RegistrationServer).RegisterNgo),
)
