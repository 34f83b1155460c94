// Package jwtecho runs the jwtsecurity validator and exception stages as Echo
// middleware and configures CORS for token headers.
package jwtecho

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	jwtsecurity "github.com/catuns/go-jwt-security"
	"github.com/catuns/go-jwt-security/core"
	"github.com/catuns/go-jwt-security/token"
)

// DefaultPrincipalKey is the echo.Context key the principal is stored under.
var DefaultPrincipalKey = "jwt"

// echoMiddlewareConfig holds all configuration for the middleware
type echoMiddlewareConfig struct {
	errorHandler func(echo.Context, error) error
	contextKey   string
}

// New creates an Echo middleware authenticating requests with chain's
// validator stage.
func New(chain *jwtsecurity.Chain, opts ...Option) echo.MiddlewareFunc {
	config := &echoMiddlewareConfig{
		contextKey: DefaultPrincipalKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.errorHandler == nil {
		config.errorHandler = func(c echo.Context, err error) error {
			chain.Exception().HandleError(c.Response(), c.Request(), err)
			return nil
		}
	}

	validator := chain.Validator()
	enabled := chain.Config().Validator.Enabled

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, _ := core.WithSecurityContext(c.Request().Context())
			r := c.Request().WithContext(ctx)

			if enabled && validator.Applies(r) {
				authenticated, err := validator.Authenticate(r)
				if err != nil {
					c.SetRequest(r)
					return config.errorHandler(c, err)
				}
				r = authenticated
			}
			c.SetRequest(r)

			if p, ok := jwtsecurity.PrincipalFrom(r.Context()); ok {
				c.Set(config.contextKey, p)
			}

			return next(c)
		}
	}
}

// GetPrincipal extracts the principal from the Echo context
func GetPrincipal(c echo.Context, contextKey string) (token.Principal, bool) {
	if contextKey == "" {
		contextKey = DefaultPrincipalKey
	}
	p, ok := c.Get(contextKey).(token.Principal)
	return p, ok
}

// IssueToken authenticates the request as p and writes a token for p with
// chain's generator stage. Call it before writing the response body. Pass the
// same WithContextKey option given to New to store p under that key.
func IssueToken(c echo.Context, chain *jwtsecurity.Chain, p token.Principal, opts ...Option) error {
	config := &echoMiddlewareConfig{
		contextKey: DefaultPrincipalKey,
	}
	for _, opt := range opts {
		opt(config)
	}

	ctx, sc := core.WithSecurityContext(c.Request().Context())
	sc.SetPrincipal(p)
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set(config.contextKey, p)

	return chain.Generator().Issue(c.Response(), c.Request(), p)
}

// CORS returns Echo's CORS middleware configured from chain's CORSConfig. The
// generator's token headers are exposed to browsers. A disabled CORSConfig
// yields a pass-through middleware.
func CORS(chain *jwtsecurity.Chain) echo.MiddlewareFunc {
	cfg := chain.Config()
	if !cfg.CORS.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		ExposeHeaders:    []string{cfg.Generator.HeaderName, cfg.Generator.ExpirationHeaderName},
		MaxAge:           int(cfg.CORS.MaxAge.Seconds()),
	})
}
