package grpc

import (
	"errors"

	"github.com/catuns/go-jwt-security/core"
)

// Option configures the interceptor.
type Option func(*JWTInterceptor) error

// Logger defines an optional logging interface compatible with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type coreBuilder struct {
	provider            core.TokenService
	credentialsOptional *bool
	logger              Logger
}

func (b *coreBuilder) build() (*core.Core, error) {
	if b.provider == nil {
		return nil, core.ErrProviderNotSet
	}

	opts := []core.Option{core.WithProvider(b.provider)}
	if b.credentialsOptional != nil {
		opts = append(opts, core.WithCredentialsOptional(*b.credentialsOptional))
	}
	if b.logger != nil {
		opts = append(opts, core.WithLogger(b.logger))
	}

	return core.New(opts...)
}

func (i *JWTInterceptor) builder() *coreBuilder {
	if i.coreBuilder == nil {
		i.coreBuilder = &coreBuilder{}
	}
	return i.coreBuilder
}

// WithCore sets a preconfigured engine. It takes precedence over WithProvider,
// and WithCredentialsOptional then has no effect.
func WithCore(c *core.Core) Option {
	return func(i *JWTInterceptor) error {
		if c == nil {
			return errors.New("core cannot be nil")
		}
		i.core = c
		return nil
	}
}

// WithProvider builds the engine from a token service.
//
// Example:
//
//	interceptor, _ := grpc.New(
//	    grpc.WithProvider(provider),
//	    grpc.WithCredentialsOptional(true),
//	)
func WithProvider(provider core.TokenService) Option {
	return func(i *JWTInterceptor) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		i.builder().provider = provider
		return nil
	}
}

// WithCredentialsOptional allows calls without a token to proceed
// anonymously. Only used together with WithProvider.
//
// Default: false (credentials required)
func WithCredentialsOptional(optional bool) Option {
	return func(i *JWTInterceptor) error {
		i.builder().credentialsOptional = &optional
		return nil
	}
}

// WithLogger sets an optional logger for the interceptor. When the engine is
// built with WithProvider it logs through the same logger.
func WithLogger(logger Logger) Option {
	return func(i *JWTInterceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.builder().logger = logger
		i.logger = logger
		return nil
	}
}

// WithTokenExtractor sets a custom token extractor function.
// Default is MetadataTokenExtractor.
func WithTokenExtractor(extractor TokenExtractor) Option {
	return func(i *JWTInterceptor) error {
		if extractor == nil {
			return errors.New("token extractor cannot be nil")
		}
		i.tokenExtractor = extractor
		return nil
	}
}

// WithErrorHandler sets a custom error handler function.
// Default is DefaultErrorHandler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(i *JWTInterceptor) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = handler
		return nil
	}
}

// WithExcludedMethods excludes gRPC methods from authentication. Methods use
// the "/package.Service/Method" form, e.g. "/grpc.health.v1.Health/Check".
func WithExcludedMethods(methods ...string) Option {
	return func(i *JWTInterceptor) error {
		if i.excludedMethods == nil {
			i.excludedMethods = make(map[string]bool)
		}
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}
