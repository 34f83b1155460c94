package token

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Customizer extends the claim set of a token before it is signed.
type Customizer interface {
	Customize(b *jwt.Builder, p Principal)
}

// CustomizerFunc adapts a function to the Customizer interface.
type CustomizerFunc func(b *jwt.Builder, p Principal)

// Customize calls f(b, p).
func (f CustomizerFunc) Customize(b *jwt.Builder, p Principal) { f(b, p) }

// NopCustomizer leaves the claim set untouched. It is the default.
var NopCustomizer Customizer = CustomizerFunc(func(*jwt.Builder, Principal) {})

// TokenIDCustomizer stamps every token with a random jti.
func TokenIDCustomizer() Customizer {
	return CustomizerFunc(func(b *jwt.Builder, _ Principal) {
		b.JwtID(uuid.NewString())
	})
}

// StaticClaimsCustomizer adds the same claims to every token.
func StaticClaimsCustomizer(claims map[string]any) Customizer {
	return CustomizerFunc(func(b *jwt.Builder, _ Principal) {
		for k, v := range claims {
			b.Claim(k, v)
		}
	})
}

// AudienceCustomizer sets the aud claim.
func AudienceCustomizer(audience ...string) Customizer {
	return CustomizerFunc(func(b *jwt.Builder, _ Principal) {
		b.Audience(audience)
	})
}

// ValidationPolicy adds acceptance rules on top of signature and expiry
// checks. A non-nil error rejects the token.
type ValidationPolicy interface {
	Validate(c *Claims) error
}

// PolicyFunc adapts a function to the ValidationPolicy interface.
type PolicyFunc func(c *Claims) error

// Validate calls f(c).
func (f PolicyFunc) Validate(c *Claims) error { return f(c) }

// NopPolicy accepts every token. It is the default.
var NopPolicy ValidationPolicy = PolicyFunc(func(*Claims) error { return nil })

// RequireIssuer rejects tokens whose iss differs from issuer.
func RequireIssuer(issuer string) ValidationPolicy {
	return PolicyFunc(func(c *Claims) error {
		if c.Issuer() != issuer {
			return fmt.Errorf("unexpected issuer %q", c.Issuer())
		}
		return nil
	})
}

// RequireAudience rejects tokens whose aud does not contain audience.
func RequireAudience(audience string) ValidationPolicy {
	return PolicyFunc(func(c *Claims) error {
		if !slices.Contains(c.Audience(), audience) {
			return fmt.Errorf("audience %q not present", audience)
		}
		return nil
	})
}

// RequireClaim rejects tokens where claim name is absent or not equal to
// value. value must be comparable; JSON numbers decode as float64.
func RequireClaim(name string, value any) ValidationPolicy {
	return PolicyFunc(func(c *Claims) error {
		v, ok := c.Get(name)
		if !ok {
			return fmt.Errorf("claim %q is required", name)
		}
		if v != value {
			return fmt.Errorf("claim %q has unexpected value", name)
		}
		return nil
	})
}

// RequireAuthority rejects tokens that were not granted authority.
func RequireAuthority(authority string) ValidationPolicy {
	return PolicyFunc(func(c *Claims) error {
		if !slices.Contains(c.Authorities(), authority) {
			return fmt.Errorf("authority %q is required", authority)
		}
		return nil
	})
}

// AllOf runs policies in order and returns the first rejection.
func AllOf(policies ...ValidationPolicy) ValidationPolicy {
	return PolicyFunc(func(c *Claims) error {
		for _, p := range policies {
			if p == nil {
				continue
			}
			if err := p.Validate(c); err != nil {
				return err
			}
		}
		return nil
	})
}
