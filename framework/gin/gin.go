// Package jwtgin runs the jwtsecurity validator and exception stages as Gin
// middleware.
package jwtgin

import (
	"errors"

	"github.com/gin-gonic/gin"

	jwtsecurity "github.com/catuns/go-jwt-security"
	"github.com/catuns/go-jwt-security/core"
	"github.com/catuns/go-jwt-security/token"
)

// DefaultPrincipalKey is the gin.Context key the principal is stored under.
const DefaultPrincipalKey = "jwt"

var (
	ErrMissingPrincipal = errors.New("no authenticated principal found in context")
	ErrInvalidPrincipal = errors.New("invalid principal type")
)

// MiddlewareConfig holds the adapter configuration.
type MiddlewareConfig struct {
	errorHandler func(*gin.Context, error)
	contextKey   string
}

// New creates a Gin middleware authenticating requests with chain's validator
// stage. Failures are rendered by chain's exception stage unless
// WithErrorHandler overrides it; either way the request is aborted.
func New(chain *jwtsecurity.Chain, opts ...Option) gin.HandlerFunc {
	config := &MiddlewareConfig{
		contextKey: DefaultPrincipalKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.errorHandler == nil {
		config.errorHandler = func(c *gin.Context, err error) {
			chain.Exception().HandleError(c.Writer, c.Request, err)
		}
	}

	validator := chain.Validator()
	enabled := chain.Config().Validator.Enabled

	return func(c *gin.Context) {
		ctx, _ := core.WithSecurityContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)

		if enabled && validator.Applies(c.Request) {
			r, err := validator.Authenticate(c.Request)
			if err != nil {
				config.errorHandler(c, err)
				c.Abort()
				return
			}
			c.Request = r
		}

		if p, ok := jwtsecurity.PrincipalFrom(c.Request.Context()); ok {
			c.Set(config.contextKey, p)
		}

		c.Next()
	}
}

// GetPrincipal returns the principal stored by the middleware. An empty
// contextKey means DefaultPrincipalKey.
func GetPrincipal(c *gin.Context, contextKey string) (token.Principal, error) {
	if contextKey == "" {
		contextKey = DefaultPrincipalKey
	}
	value, exists := c.Get(contextKey)
	if !exists {
		return token.Principal{}, ErrMissingPrincipal
	}

	p, ok := value.(token.Principal)
	if !ok {
		return token.Principal{}, ErrInvalidPrincipal
	}

	return p, nil
}

// IssueToken authenticates the request as p and writes a token for p with
// chain's generator stage. Call it before writing the response body. Pass the
// same WithContextKey option given to New to store p under that key.
func IssueToken(c *gin.Context, chain *jwtsecurity.Chain, p token.Principal, opts ...Option) error {
	config := &MiddlewareConfig{
		contextKey: DefaultPrincipalKey,
	}
	for _, opt := range opts {
		opt(config)
	}

	ctx, sc := core.WithSecurityContext(c.Request.Context())
	sc.SetPrincipal(p)
	c.Request = c.Request.WithContext(ctx)
	c.Set(config.contextKey, p)

	return chain.Generator().Issue(c.Writer, c.Request, p)
}
