package core

import (
	"context"
	"slices"
	"sync"

	"github.com/catuns/go-jwt-security/token"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	securityContextKey contextKey = iota
)

// SecurityContext is a per-request holder for the authenticated principal.
//
// It is installed once at the start of a request and mutated in place, so a
// principal set deep inside a handler is visible to middleware that runs
// after the handler returns.
type SecurityContext struct {
	mu        sync.RWMutex
	principal *token.Principal
}

// Principal returns a copy of the stored principal.
func (s *SecurityContext) Principal() (token.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.principal == nil {
		return token.Principal{}, false
	}
	return clonePrincipal(*s.principal), true
}

// SetPrincipal replaces the stored principal.
func (s *SecurityContext) SetPrincipal(p token.Principal) {
	p = clonePrincipal(p)

	s.mu.Lock()
	s.principal = &p
	s.mu.Unlock()
}

// Clear removes the stored principal.
func (s *SecurityContext) Clear() {
	s.mu.Lock()
	s.principal = nil
	s.mu.Unlock()
}

// WithSecurityContext returns ctx carrying an empty security context. If ctx
// already carries one it is returned unchanged.
func WithSecurityContext(ctx context.Context) (context.Context, *SecurityContext) {
	if sc, ok := SecurityContextFrom(ctx); ok {
		return ctx, sc
	}
	sc := &SecurityContext{}
	return context.WithValue(ctx, securityContextKey, sc), sc
}

// SecurityContextFrom returns the security context carried by ctx.
func SecurityContextFrom(ctx context.Context) (*SecurityContext, bool) {
	sc, ok := ctx.Value(securityContextKey).(*SecurityContext)
	return sc, ok
}

// SetPrincipal stores p in the security context carried by ctx.
func SetPrincipal(ctx context.Context, p token.Principal) error {
	sc, ok := SecurityContextFrom(ctx)
	if !ok {
		return ErrNoSecurityContext
	}
	sc.SetPrincipal(p)
	return nil
}

// GetPrincipal retrieves the principal from the security context carried by
// ctx.
//
// Example usage:
//
//	p, err := core.GetPrincipal(r.Context())
//	if err != nil {
//	    return err
//	}
func GetPrincipal(ctx context.Context) (token.Principal, error) {
	sc, ok := SecurityContextFrom(ctx)
	if !ok {
		return token.Principal{}, ErrNoSecurityContext
	}
	p, ok := sc.Principal()
	if !ok {
		return token.Principal{}, ErrPrincipalNotFound
	}
	return p, nil
}

// HasPrincipal checks if a principal is present without retrieving it.
func HasPrincipal(ctx context.Context) bool {
	_, err := GetPrincipal(ctx)
	return err == nil
}

// ClearPrincipal removes the principal from the security context, if any.
func ClearPrincipal(ctx context.Context) {
	if sc, ok := SecurityContextFrom(ctx); ok {
		sc.Clear()
	}
}

func clonePrincipal(p token.Principal) token.Principal {
	p.Authorities = slices.Clone(p.Authorities)
	return p
}
