package token

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Names of the extension claims written by the codec.
const (
	ClaimUser        = "user"
	ClaimAuthorities = "authorities"
)

// Claims is a read-only view of a verified token's payload.
type Claims struct {
	token jwt.Token
}

func newClaims(t jwt.Token) *Claims {
	return &Claims{token: t}
}

// Issuer returns the iss claim.
func (c *Claims) Issuer() string { return c.token.Issuer() }

// Subject returns the sub claim.
func (c *Claims) Subject() string { return c.token.Subject() }

// Audience returns the aud claim.
func (c *Claims) Audience() []string { return c.token.Audience() }

// IssuedAt returns the iat claim.
func (c *Claims) IssuedAt() time.Time { return c.token.IssuedAt() }

// Expiration returns the exp claim.
func (c *Claims) Expiration() time.Time { return c.token.Expiration() }

// User returns the user claim, or an empty string when it is absent or not a
// string.
func (c *Claims) User() string {
	return c.String(ClaimUser)
}

// Authorities returns the parsed authorities claim.
func (c *Claims) Authorities() []string {
	return ParseAuthorities(c.String(ClaimAuthorities))
}

// Get returns the raw value of any claim, registered or private.
func (c *Claims) Get(name string) (any, bool) {
	return c.token.Get(name)
}

// String returns a claim value when it is a string.
func (c *Claims) String(name string) string {
	v, ok := c.token.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// AsMap copies every claim into a new map.
func (c *Claims) AsMap(ctx context.Context) (map[string]any, error) {
	return c.token.AsMap(ctx)
}
