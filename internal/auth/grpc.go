package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewUnaryAuthInterceptor returns a gRPC unary interceptor that extracts and validates
// a Bearer JWT from incoming metadata and injects the Principal into the context.
// Methods listed in allowUnauthenticated will bypass authentication (e.g., health checks).
func NewUnaryAuthInterceptor(secret string, allowUnauthenticated ...string) grpc.UnaryServerInterceptor {
	allow := make(map[string]struct{}, len(allowUnauthenticated))
	for _, m := range allowUnauthenticated {
		allow[strings.TrimSpace(m)] = struct{}{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if allowed(allow, info.FullMethod) {
			return handler(ctx, req)
		}
		p, err := ParseFromMD(ctx, secret)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "auth error: %v", err)
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}

// allowed matches exact method names and "/pkg.Service/" prefixes.
func allowed(allow map[string]struct{}, method string) bool {
	if _, ok := allow[method]; ok {
		return true
	}
	if i := strings.LastIndexByte(method, '/'); i > 0 {
		if _, ok := allow[method[:i+1]]; ok {
			return true
		}
	}
	return false
}

// RequirePrincipal ensures a principal is present in context.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}
	return p, nil
}

// RequireKind ensures the principal has the given kind.
func RequireKind(ctx context.Context, kind Kind) (*Principal, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if p.Kind != kind {
		return nil, status.Errorf(codes.PermissionDenied, "only %s can perform this action", kind)
	}
	return p, nil
}

func RequireHotel(ctx context.Context) (*Principal, error) { return RequireKind(ctx, KindHotel) }

func RequireNgo(ctx context.Context) (*Principal, error) { return RequireKind(ctx, KindNgo) }

// RequireAdmin ensures the caller is an admin. Admin tokens are minted out
// of band, so the claim alone decides.
func RequireAdmin(ctx context.Context) (*Principal, error) { return RequireKind(ctx, KindAdmin) }
