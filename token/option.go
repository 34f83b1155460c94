package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
)

// Option configures a Provider. Options return errors to enable validation
// during construction.
type Option func(*Provider) error

// WithIssuer sets the iss claim written into generated tokens.
func WithIssuer(issuer string) Option {
	return func(p *Provider) error {
		p.issuer = issuer
		return nil
	}
}

// WithExpiration sets the lifetime of generated tokens.
//
// Default: 10 hours
func WithExpiration(d time.Duration) Option {
	return func(p *Provider) error {
		if d <= 0 {
			return errors.New("expiration must be positive")
		}
		p.expiration = d
		return nil
	}
}

// WithSigningAlgorithm selects the HMAC algorithm. Only one algorithm is
// active per provider; tokens signed with any other are rejected.
//
// Default: HS256
func WithSigningAlgorithm(alg jwa.SignatureAlgorithm) Option {
	return func(p *Provider) error {
		switch alg {
		case jwa.HS256, jwa.HS384, jwa.HS512:
			p.algorithm = alg
			return nil
		default:
			return fmt.Errorf("unsupported signing algorithm: %s", alg)
		}
	}
}

// WithCustomizer sets the initial customizer.
func WithCustomizer(c Customizer) Option {
	return func(p *Provider) error {
		if c == nil {
			return errors.New("customizer cannot be nil")
		}
		p.customizer = c
		return nil
	}
}

// WithValidationPolicy sets the initial validation policy.
func WithValidationPolicy(v ValidationPolicy) Option {
	return func(p *Provider) error {
		if v == nil {
			return errors.New("validation policy cannot be nil")
		}
		p.policy = v
		return nil
	}
}

// WithClock replaces time.Now for both timestamping and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		p.now = now
		return nil
	}
}
