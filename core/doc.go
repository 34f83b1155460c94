/*
Package core provides the framework-agnostic token engine that every transport
in this module is built on.

# Architecture

	┌─────────────────────────────────────────────┐
	│         Transport Adapters                  │
	│  (net/http chain, Gin, Echo, gRPC)          │
	└────────────────┬────────────────────────────┘
	                 │
	                 ▼
	┌─────────────────────────────────────────────┐
	│          Core Engine (THIS PACKAGE)         │
	│  • CheckToken / IssueToken                  │
	│  • Credentials Optional Logic               │
	│  • Security Context                         │
	│  • Logging, Tracing, Metrics                 │
	└────────────────┬────────────────────────────┘
	                 │
	                 ▼
	┌─────────────────────────────────────────────┐
	│          token.Provider                     │
	│  (HMAC signing, parsing, validation)        │
	└─────────────────────────────────────────────┘

# Basic Usage

	provider, err := token.New(secret, token.WithIssuer("app"))
	if err != nil {
	    log.Fatal(err)
	}

	c, err := core.New(core.WithProvider(provider))
	if err != nil {
	    log.Fatal(err)
	}

	principal, err := c.CheckToken(ctx, tokenString)

# Security Context

The outermost transport stage installs a SecurityContext with
WithSecurityContext. It is a mutable holder: a login handler can publish the
principal it authenticated and middleware wrapped around the handler sees it
once the handler returns.

	ctx, _ = core.WithSecurityContext(ctx)
	_ = core.SetPrincipal(ctx, token.NewPrincipal("alice", "ROLE_USER"))

	p, err := core.GetPrincipal(ctx)
	if errors.Is(err, core.ErrPrincipalNotFound) {
	    // anonymous
	}

# Error Handling

Token failures are *token.ValidationError values and other authentication
failures are *AuthenticationError values. IsAuthenticationError tells them
apart from internal errors, and Label and Code extract their presentation:

	if core.IsAuthenticationError(err) {
	    status = http.StatusUnauthorized
	}
	title := core.Label(err) // "TokenExpired", "SignatureInvalid", ...
*/
package core
