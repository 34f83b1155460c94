package jwtgin

import (
	"github.com/gin-gonic/gin"
)

// Option defines a functional option for configuring the middleware
type Option func(*MiddlewareConfig)

// WithErrorHandler sets a custom error handler for the middleware. The
// request is aborted after it returns.
func WithErrorHandler(handler func(*gin.Context, error)) Option {
	return func(config *MiddlewareConfig) {
		config.errorHandler = handler
	}
}

// WithContextKey sets a custom context key to store the principal.
func WithContextKey(key string) Option {
	return func(config *MiddlewareConfig) {
		config.contextKey = key
	}
}
