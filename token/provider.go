package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
)

// DefaultExpiration is the lifetime of generated tokens when WithExpiration is
// not used.
const DefaultExpiration = 10 * time.Hour

// Provider generates and validates tokens with a shared HMAC secret.
//
// Generate, Validate, Claims and IsExpired are safe for concurrent use. The
// customizer and validation policy slots are not synchronised: set them
// before the provider starts serving traffic.
type Provider struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	algorithm  jwa.SignatureAlgorithm
	now        func() time.Time

	codec      ClaimsCodec
	customizer Customizer
	policy     ValidationPolicy
}

// New constructs a Provider. It returns ErrMissingSecret when secret is
// empty.
func New(secret string, opts ...Option) (*Provider, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	p := &Provider{
		secret:     []byte(secret),
		expiration: DefaultExpiration,
		algorithm:  jwa.HS256,
		now:        time.Now,
		customizer: NopCustomizer,
		policy:     NopPolicy,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	p.codec = NewClaimsCodec(p.algorithm, p.now)
	return p, nil
}

// Issuer returns the configured iss value.
func (p *Provider) Issuer() string { return p.issuer }

// Expiration returns the configured token lifetime.
func (p *Provider) Expiration() time.Duration { return p.expiration }

// SetCustomizer replaces the customizer. nil restores NopCustomizer.
func (p *Provider) SetCustomizer(c Customizer) {
	if c == nil {
		c = NopCustomizer
	}
	p.customizer = c
}

// SetValidationPolicy replaces the validation policy. nil restores NopPolicy.
func (p *Provider) SetValidationPolicy(v ValidationPolicy) {
	if v == nil {
		v = NopPolicy
	}
	p.policy = v
}

// Generate issues a signed token for principal. Timestamps are sampled on
// every call.
func (p *Provider) Generate(principal Principal) (Token, error) {
	now := p.now().Truncate(time.Second)
	expiresAt := now.Add(p.expiration)

	t, err := p.codec.Build(principal, p.issuer, now, expiresAt, p.customizer)
	if err != nil {
		return Token{}, err
	}

	signed, err := p.codec.Sign(t, p.secret)
	if err != nil {
		return Token{}, err
	}

	return Token{
		Value:     signed,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		Subject:   principal.Name,
	}, nil
}

// Validate verifies tokenText, applies the validation policy and rebuilds the
// principal it was issued for. Every failure is a *ValidationError.
func (p *Provider) Validate(tokenText string) (Principal, error) {
	claims, err := p.codec.Parse(tokenText, p.secret)
	if err != nil {
		return Principal{}, err
	}

	name := claims.User()
	if name == "" {
		name = claims.Subject()
	}
	authorities := claims.Authorities()

	if err := p.policy.Validate(claims); err != nil {
		return Principal{}, NewValidationError(ErrPolicyRejected, err)
	}

	return Principal{Name: name, Authorities: authorities}, nil
}

// Claims verifies tokenText and returns its claims without applying the
// validation policy.
func (p *Provider) Claims(tokenText string) (*Claims, error) {
	return p.codec.Parse(tokenText, p.secret)
}

// IsExpired reports whether tokenText has expired. Unlike Validate, an
// expired token is an answer rather than an error; other verification
// failures are still returned.
func (p *Provider) IsExpired(tokenText string) (bool, error) {
	claims, err := p.codec.Parse(tokenText, p.secret)
	if errors.Is(err, ErrTokenExpired) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return p.now().After(claims.Expiration()), nil
}
