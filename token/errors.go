package token

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the token package.
var (
	// ErrMissingSecret is returned by New when no signing secret is configured.
	// It is a startup error; no Provider can exist without a key.
	ErrMissingSecret = errors.New("jwt secret is missing")

	// ErrTokenInvalid matches every *ValidationError regardless of its kind.
	ErrTokenInvalid = errors.New("token is invalid")

	// ErrTokenMissing is the kind used when no token was supplied.
	ErrTokenMissing = errors.New("token is missing")

	// ErrTokenMalformed is the kind used when the compact token cannot be parsed.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrSignatureInvalid is the kind used when signature verification fails.
	ErrSignatureInvalid = errors.New("token signature is invalid")

	// ErrTokenExpired is the kind used when exp is at or before now.
	ErrTokenExpired = errors.New("token is expired")

	// ErrPolicyRejected is the kind used when a ValidationPolicy refuses the claims.
	ErrPolicyRejected = errors.New("token rejected by validation policy")

	// ErrClaimsInvalid is the kind used when claim validation fails for a
	// reason other than expiry.
	ErrClaimsInvalid = errors.New("token claims are invalid")
)

// ValidationError is returned by every failed parse or validation. Kind is one
// of the sentinel errors above and Details carries the underlying cause.
type ValidationError struct {
	Kind    error
	Details error
}

// NewValidationError wraps details with the given kind.
func NewValidationError(kind, details error) *ValidationError {
	return &ValidationError{Kind: kind, Details: details}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Details)
	}
	return e.Kind.Error()
}

// Is reports true for ErrTokenInvalid and for the error's own kind.
func (e *ValidationError) Is(target error) bool {
	return target == ErrTokenInvalid || target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Details
}

// Label returns a short type name for the failure, suitable as a problem title.
func (e *ValidationError) Label() string {
	switch e.Kind {
	case ErrTokenMissing:
		return "TokenMissing"
	case ErrTokenMalformed:
		return "TokenMalformed"
	case ErrSignatureInvalid:
		return "SignatureInvalid"
	case ErrTokenExpired:
		return "TokenExpired"
	case ErrPolicyRejected:
		return "TokenValidationFailed"
	case ErrClaimsInvalid:
		return "ClaimsInvalid"
	default:
		return "TokenInvalid"
	}
}

// Code returns a machine-readable error code.
func (e *ValidationError) Code() string {
	switch e.Kind {
	case ErrTokenMissing:
		return "token_missing"
	case ErrTokenMalformed:
		return "token_malformed"
	case ErrSignatureInvalid:
		return "invalid_signature"
	case ErrTokenExpired:
		return "token_expired"
	case ErrPolicyRejected:
		return "token_rejected"
	case ErrClaimsInvalid:
		return "invalid_claims"
	default:
		return "invalid_token"
	}
}
