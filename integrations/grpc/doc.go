// Package grpc provides gRPC server interceptors that authenticate callers
// with tokens issued by the token package.
//
// The unary and stream interceptors read "authorization: Bearer <token>"
// from incoming metadata, validate it through core.Core and expose the
// principal with GetPrincipal.
//
// # Basic Usage
//
//	provider, err := token.New(secret, token.WithIssuer("orders"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	interceptor, err := jwtgrpc.New(
//	    jwtgrpc.WithProvider(provider),
//	    jwtgrpc.WithExcludedMethods("/grpc.health.v1.Health/Check"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
//
// # Errors
//
// DefaultErrorHandler answers token failures with codes.Unauthenticated and
// the failure label (for example "TokenExpired") as message. Malformed
// authorization metadata yields codes.InvalidArgument. Use WithErrorHandler
// to change the mapping.
package grpc
