/*
Package jwtsecurity issues and validates HMAC-signed JWTs inside a net/http
request pipeline.

A Chain composes three stages around a handler:

  - the exception stage, outermost, which turns authentication failures into
    401 problem responses;
  - the validator stage, which reads "Authorization: Bearer <token>" and
    authenticates the request before the handler runs;
  - the generator stage, which issues a fresh token for the request's
    principal after the handler has run.

Token work is delegated to the core package, which in turn uses a
token.Provider.

# Quick Start

	import (
	    jwtsecurity "github.com/catuns/go-jwt-security"
	    "github.com/catuns/go-jwt-security/core"
	    "github.com/catuns/go-jwt-security/token"
	)

	func main() {
	    provider, err := token.New(os.Getenv("JWT_SECRET"),
	        token.WithIssuer("app"),
	        token.WithExpiration(time.Hour),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    engine, err := core.New(core.WithProvider(provider))
	    if err != nil {
	        log.Fatal(err)
	    }

	    cfg := jwtsecurity.DefaultConfig()
	    cfg.PublicPaths = append(cfg.PublicPaths, "/login")

	    chain, err := jwtsecurity.NewChain(engine, cfg)
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.ListenAndServe(":8080", chain.Then(mux))
	}

# Accessing the Principal

	func apiHandler(w http.ResponseWriter, r *http.Request) {
	    p, ok := jwtsecurity.PrincipalFrom(r.Context())
	    if !ok {
	        http.Error(w, "Unauthorized", http.StatusUnauthorized)
	        return
	    }
	    fmt.Fprintf(w, "Hello, %s!", p.Name)
	}

# Logging In

A public login handler establishes identity itself and publishes it with
Authenticate. The generator stage then writes the token into the response
headers:

	func login(w http.ResponseWriter, r *http.Request) {
	    user, pass, _ := r.BasicAuth()
	    p, err := authenticator.Authenticate(r.Context(), user, pass)
	    if err != nil {
	        http.Error(w, "Unauthorized", http.StatusUnauthorized)
	        return
	    }
	    _ = jwtsecurity.Authenticate(r, p)
	    w.WriteHeader(http.StatusNoContent)
	}

Handlers written as HandlerFunc can return the error instead and let the
exception stage render it:

	chain.ThenFunc(func(w http.ResponseWriter, r *http.Request) error {
	    p, err := authenticator.Authenticate(r.Context(), user, pass)
	    if err != nil {
	        return err
	    }
	    return jwtsecurity.Authenticate(r, p)
	})

# Problem Responses

Failures are rendered as application/problem+json:

	HTTP/1.1 401 Unauthorized
	WWW-Authenticate: Bearer error="invalid_token"

	{
	  "type": "about:blank",
	  "title": "TokenMalformed",
	  "status": 401,
	  "detail": "token is malformed: ...",
	  "instance": "/api/orders",
	  "timestamp": "2024-05-01T12:00:00Z",
	  "code": "token_malformed"
	}

ExceptionConfig controls whether detail and instance are included and whether
the failure is logged. Any error that is not an authentication failure becomes
a 500 with a generic detail.

# Configuration Options

	cfg := jwtsecurity.DefaultConfig()
	cfg.Validator.HeaderName = "X-Auth-Token"
	cfg.Validator.TokenPrefix = "Token "
	cfg.Generator.Applies = jwtsecurity.Methods(http.MethodPost)
	cfg.Exception.IncludeMessage = false

	chain, err := jwtsecurity.NewChain(engine, cfg,
	    jwtsecurity.WithLogger(jwtsecurity.NewLogrusLogger(logrus.StandardLogger())),
	    jwtsecurity.WithTokenExtractor(jwtsecurity.MultiTokenExtractor(
	        jwtsecurity.AuthHeaderTokenExtractor,
	        jwtsecurity.CookieTokenExtractor("jwt"),
	    )),
	)
*/
package jwtsecurity
