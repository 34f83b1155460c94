package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ClaimsCodec builds claim sets for principals and turns signed tokens back
// into claims. The zero value is not usable; Provider constructs one.
type ClaimsCodec struct {
	algorithm jwa.SignatureAlgorithm
	now       func() time.Time
}

// NewClaimsCodec returns a codec signing with alg and using now as its clock
// for expiry checks.
func NewClaimsCodec(alg jwa.SignatureAlgorithm, now func() time.Time) ClaimsCodec {
	if now == nil {
		now = time.Now
	}
	return ClaimsCodec{algorithm: alg, now: now}
}

// Build assembles the claims for p. The customizer runs once, after the default
// claims and before iat and exp are stamped.
func (c ClaimsCodec) Build(p Principal, issuer string, issuedAt, expiresAt time.Time, customizer Customizer) (jwt.Token, error) {
	b := jwt.NewBuilder().
		Issuer(issuer).
		Subject(p.Name).
		Claim(ClaimUser, p.Name).
		Claim(ClaimAuthorities, JoinAuthorities(p.Authorities))

	if customizer != nil {
		customizer.Customize(b, p)
	}

	t, err := b.IssuedAt(issuedAt).Expiration(expiresAt).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build token claims: %w", err)
	}
	return t, nil
}

// Sign serialises t as a compact JWS.
func (c ClaimsCodec) Sign(t jwt.Token, key []byte) (string, error) {
	signed, err := jwt.Sign(t, jwt.WithKey(c.algorithm, key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Parse verifies tokenText with key and returns its claims.
//
// Failures are reported as a *ValidationError whose kind is ErrTokenMalformed,
// ErrSignatureInvalid, ErrTokenExpired or ErrClaimsInvalid, in that order of
// precedence. Only exp is checked against the clock; iat and nbf are carried
// but not enforced.
func (c ClaimsCodec) Parse(tokenText string, key []byte) (*Claims, error) {
	t, err := jwt.ParseString(tokenText, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, NewValidationError(ErrTokenMalformed, err)
	}

	if err := checkCanonicalSignature(tokenText); err != nil {
		return nil, NewValidationError(ErrSignatureInvalid, err)
	}

	if _, err := jws.Verify([]byte(tokenText), jws.WithKey(c.algorithm, key)); err != nil {
		return nil, NewValidationError(ErrSignatureInvalid, err)
	}

	err = jwt.Validate(t,
		jwt.WithClock(jwt.ClockFunc(c.now)),
		jwt.WithResetValidators(true),
		jwt.WithValidator(jwt.IsExpirationValid()),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, NewValidationError(ErrTokenExpired, err)
		}
		return nil, NewValidationError(ErrClaimsInvalid, err)
	}

	return newClaims(t), nil
}

var errNonCanonicalSignature = errors.New("signature segment is not canonical base64url")

// checkCanonicalSignature rejects a signature segment whose unused trailing
// bits are set. Lenient decoding maps several spellings onto the same MAC.
func checkCanonicalSignature(tokenText string) error {
	segment := tokenText[strings.LastIndexByte(tokenText, '.')+1:]
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return err
	}
	if base64.RawURLEncoding.EncodeToString(raw) != segment {
		return errNonCanonicalSignature
	}
	return nil
}
