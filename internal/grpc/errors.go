package grpcserver

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sewa/internal/apperr"
)

var kindCodes = map[apperr.Kind]codes.Code{
	apperr.KindValidation:        codes.InvalidArgument,
	apperr.KindNotFound:          codes.NotFound,
	apperr.KindInvalidCredential: codes.PermissionDenied,
	apperr.KindExpired:           codes.FailedPrecondition,
	apperr.KindConflict:          codes.Aborted,
	apperr.KindInvalidState:      codes.FailedPrecondition,
	apperr.KindDependencyFailure: codes.Unavailable,
	apperr.KindForbidden:         codes.PermissionDenied,
	apperr.KindInternal:          codes.Internal,
}

// toStatus converts service errors to gRPC status errors. Errors that
// already carry a status (auth) pass through.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		return err
	}
	code, ok := kindCodes[apperr.KindOf(err)]
	if !ok {
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}
