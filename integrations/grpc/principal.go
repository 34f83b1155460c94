package grpc

import (
	"context"

	"github.com/catuns/go-jwt-security/core"
	"github.com/catuns/go-jwt-security/token"
)

// GetPrincipal retrieves the authenticated principal from a handler context.
//
// Example:
//
//	p, err := jwtgrpc.GetPrincipal(ctx)
//	if err != nil {
//	    return nil, status.Error(codes.Internal, "no principal")
//	}
//	fmt.Println(p.Name)
func GetPrincipal(ctx context.Context) (token.Principal, error) {
	return core.GetPrincipal(ctx)
}

// HasPrincipal reports whether the caller was authenticated.
func HasPrincipal(ctx context.Context) bool {
	return core.HasPrincipal(ctx)
}
