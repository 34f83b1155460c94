package core

import (
	"errors"

	"github.com/catuns/go-jwt-security/token"
)

// Sentinel errors for the core engine.
var (
	// ErrAuthentication matches every *AuthenticationError.
	ErrAuthentication = errors.New("authentication failed")

	// ErrProviderNotSet is returned by New when WithProvider was not used.
	ErrProviderNotSet = errors.New("token provider is required but not set (use WithProvider option)")

	// ErrPrincipalNotFound is returned when the security context holds no principal.
	ErrPrincipalNotFound = errors.New("principal not found in security context")

	// ErrNoSecurityContext is returned when the context carries no security context.
	ErrNoSecurityContext = errors.New("no security context in context")
)

// Result values recorded by metrics for successful operations. Failures are
// recorded with their error code.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Error codes that are not produced by the token package.
const (
	ErrorCodeBadCredentials = "bad_credentials"
	ErrorCodeUserDisabled   = "user_disabled"
	ErrorCodeInternal       = "internal_error"
)

// AuthenticationError is an authentication failure raised outside token
// validation, for example a rejected login. Transports render it exactly like
// a token error.
type AuthenticationError struct {
	label   string
	code    string
	Details error
}

// NewAuthenticationError creates an AuthenticationError. label is a short
// type name used as a problem title and code is machine-readable.
func NewAuthenticationError(label, code string, details error) *AuthenticationError {
	return &AuthenticationError{label: label, code: code, Details: details}
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	if e.Details != nil {
		return e.label + ": " + e.Details.Error()
	}
	return e.label
}

// Unwrap returns the underlying error.
func (e *AuthenticationError) Unwrap() error {
	return e.Details
}

// Is allows the error to be compared with ErrAuthentication.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// Label returns the short type name of the failure.
func (e *AuthenticationError) Label() string { return e.label }

// Code returns the machine-readable error code.
func (e *AuthenticationError) Code() string { return e.code }

type labeled interface {
	error
	Label() string
	Code() string
}

// IsAuthenticationError reports whether err should be answered with 401
// rather than treated as an internal failure.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, token.ErrTokenInvalid) || errors.Is(err, ErrAuthentication)
}

// Label returns the outermost label found in err's chain. Errors without one
// are labelled "InternalServerError".
func Label(err error) string {
	var l labeled
	if errors.As(err, &l) {
		return l.Label()
	}
	return "InternalServerError"
}

// Code returns the outermost error code found in err's chain, or
// ErrorCodeInternal.
func Code(err error) string {
	var l labeled
	if errors.As(err, &l) {
		return l.Code()
	}
	return ErrorCodeInternal
}
