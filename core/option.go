package core

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/catuns/go-jwt-security/core"

// Option is a function that configures the Core.
// Options return errors to enable validation during construction.
type Option func(*Core) error

// New creates a new Core instance with the provided options.
//
// The Core must be configured with a token service using WithProvider.
// All other options fall back to defaults when not provided.
//
// Example:
//
//	provider, _ := token.New(secret)
//	c, err := core.New(
//	    core.WithProvider(provider),
//	    core.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Core, error) {
	c := &Core{
		credentialsOptional: false,
		tracer:              otel.Tracer(tracerName),
		metrics:             NopMetrics{},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Core) validate() error {
	if c.provider == nil {
		return ErrProviderNotSet
	}
	return nil
}

// WithProvider sets the token service. This option is required.
func WithProvider(provider TokenService) Option {
	return func(c *Core) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		c.provider = provider
		return nil
	}
}

// WithCredentialsOptional configures whether credentials are optional.
//
// When true, requests without a token proceed anonymously. When false
// (default), they fail with token.ErrTokenMissing.
func WithCredentialsOptional(optional bool) Option {
	return func(c *Core) error {
		c.credentialsOptional = optional
		return nil
	}
}

// WithLogger sets an optional logger for the Core.
//
// Example:
//
//	c, _ := core.New(
//	    core.WithProvider(provider),
//	    core.WithLogger(slog.Default()),
//	)
func WithLogger(logger Logger) Option {
	return func(c *Core) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer used for token spans.
//
// Default: the global tracer provider's tracer, a no-op until one is installed.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Core) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithMetrics sets the metrics sink.
//
// Default: NopMetrics
func WithMetrics(m Metrics) Option {
	return func(c *Core) error {
		if m == nil {
			return errors.New("metrics cannot be nil")
		}
		c.metrics = m
		return nil
	}
}
