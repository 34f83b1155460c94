package token

import (
	"slices"
	"strings"
	"time"
)

// Principal is the authenticated identity a token is generated from and
// validated into.
type Principal struct {
	// Name identifies the principal and becomes the sub and user claims.
	Name string
	// Credentials is only populated before authentication. Tokens never carry
	// it, so a validated Principal always has it empty.
	Credentials string
	// Authorities is the set of roles or scopes granted to the principal.
	Authorities []string
}

// NewPrincipal returns a Principal with a normalised authority set.
func NewPrincipal(name string, authorities ...string) Principal {
	return Principal{Name: name, Authorities: normalizeAuthorities(authorities)}
}

// HasAuthority reports whether the principal was granted authority.
func (p Principal) HasAuthority(authority string) bool {
	return slices.Contains(p.Authorities, authority)
}

// Equal compares identifiers and authority sets. Order and duplicates in
// Authorities are ignored.
func (p Principal) Equal(other Principal) bool {
	return p.Name == other.Name &&
		slices.Equal(normalizeAuthorities(p.Authorities), normalizeAuthorities(other.Authorities))
}

// JoinAuthorities serialises an authority set as a comma separated string.
// The output is deduplicated and sorted, so it is stable for equal sets.
func JoinAuthorities(authorities []string) string {
	return strings.Join(normalizeAuthorities(authorities), ",")
}

// ParseAuthorities is the inverse of JoinAuthorities.
func ParseAuthorities(s string) []string {
	if s == "" {
		return []string{}
	}
	return normalizeAuthorities(strings.Split(s, ","))
}

func normalizeAuthorities(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Token is an issued, signed token. It is immutable once returned by
// Provider.Generate.
type Token struct {
	// Value is the compact serialisation: header.payload.signature.
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Subject   string
}
