package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/catuns/go-jwt-security/core"
)

// ErrorHandler converts authentication errors to gRPC status errors.
type ErrorHandler func(error) error

// DefaultErrorHandler maps authentication errors to gRPC status codes. Token
// and authentication failures become codes.Unauthenticated with the error's
// label as message, malformed metadata becomes codes.InvalidArgument and
// anything else codes.Internal without details.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrMultipleAuthHeaders) ||
		errors.Is(err, ErrInvalidAuthFormat) ||
		errors.Is(err, ErrUnsupportedScheme) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	if core.IsAuthenticationError(err) {
		return status.Error(codes.Unauthenticated, core.Label(err))
	}

	return status.Error(codes.Internal, "InternalServerError")
}
