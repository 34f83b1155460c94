/*
Package token issues and validates HMAC-signed JSON Web Tokens for an
authenticated Principal.

# Generating

	p, err := token.New(secret,
	    token.WithIssuer("app"),
	    token.WithExpiration(time.Hour),
	)
	if err != nil {
	    log.Fatal(err) // token.ErrMissingSecret when secret is empty
	}

	tok, err := p.Generate(token.NewPrincipal("alice", "ROLE_USER", "ROLE_ADMIN"))

The payload always carries iss, sub, iat and exp plus two extension claims:
"user" (the principal name) and "authorities" (a sorted, comma separated
authority set).

# Validating

	principal, err := p.Validate(tok.Value)
	switch {
	case errors.Is(err, token.ErrTokenExpired):
	case errors.Is(err, token.ErrSignatureInvalid):
	case errors.Is(err, token.ErrTokenInvalid):
	    // any other validation failure
	}

IsExpired answers the expiry question without treating expiry as an error:

	expired, err := p.IsExpired(tok.Value)

# Extension points

A Customizer adds claims before signing and a ValidationPolicy adds rules after
parsing. Each provider holds one of each; setting a new one replaces the old.

	p.SetCustomizer(token.StaticClaimsCustomizer(map[string]any{"role": "admin"}))
	p.SetValidationPolicy(token.RequireAudience("api"))
*/
package token
