package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	sewav1 "sewa/api/sewa/v1"
	"sewa/internal/app"
	"sewa/internal/auth"
	"sewa/internal/config"
	"sewa/internal/logger"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

// Services are the domain services every gRPC server delegates to.
type Services = app.Services

// NewServer builds a gRPC server with the auth and logging interceptors and
// all sewa services plus health registered.
func NewServer(secret string, svcs Services, log *zap.Logger) *grpc.Server {
	log = logger.OrNop(log)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor(log),
		auth.NewUnaryAuthInterceptor(secret, healthServicePrefix, "/"+sewav1.RegistrationService+"/"),
	))

	srv.RegisterService(hotelServiceDesc, &HotelServer{Services: svcs})
	srv.RegisterService(ngoServiceDesc, &NgoServer{Services: svcs})
	srv.RegisterService(adminServiceDesc, &AdminServer{Services: svcs})
	srv.RegisterService(registrationServiceDesc, &RegistrationServer{Services: svcs})

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, name := range []string{sewav1.HotelService, sewav1.NgoService, sewav1.AdminService, sewav1.RegistrationService} {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// StartGRPC starts the gRPC server on the configured address and returns a shutdown function.
func StartGRPC(cfg *config.Config, svcs Services, log *zap.Logger) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}
	log = logger.OrNop(log)

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	// Plaintext; terminate TLS in front of the server.
	srv := NewServer(cfg.Auth.JWTSecret, svcs, log)

	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()
	log.Info("grpc listening", zap.String("addr", lis.Addr().String()))

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("took", time.Since(start)),
		)
		return resp, err
	}
}
