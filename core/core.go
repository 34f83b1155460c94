// Package core provides the framework-agnostic token engine shared by the
// net/http chain, the Gin and Echo adapters and the gRPC interceptors.
//
// The Core type wraps a token service with credentials-optional handling,
// logging, tracing and metrics, so transports only deal with extraction and
// error rendering.
package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/catuns/go-jwt-security/token"
)

// TokenService issues and validates tokens. *token.Provider implements it.
type TokenService interface {
	Generate(p token.Principal) (token.Token, error)
	Validate(tokenText string) (token.Principal, error)
}

// Logger defines an optional logging interface for the core engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Core is the framework-agnostic token engine.
type Core struct {
	provider            TokenService
	credentialsOptional bool
	logger              Logger
	tracer              trace.Tracer
	metrics             Metrics
}

// CheckToken validates tokenText and returns the principal it was issued for.
//
//   - If tokenText is empty and credentials are optional, returns (nil, nil)
//   - If tokenText is empty and credentials are required, returns a
//     *token.ValidationError of kind token.ErrTokenMissing
//   - Otherwise, validates the token with the configured provider
func (c *Core) CheckToken(ctx context.Context, tokenText string) (*token.Principal, error) {
	_, span := c.tracer.Start(ctx, "jwtsecurity.CheckToken")
	defer span.End()

	if tokenText == "" {
		if c.credentialsOptional {
			if c.logger != nil {
				c.logger.Debug("No token provided, but credentials are optional")
			}
			span.SetAttributes(attribute.Bool("jwtsecurity.anonymous", true))
			return nil, nil
		}

		if c.logger != nil {
			c.logger.Warn("No token provided and credentials are required")
		}

		err := token.NewValidationError(token.ErrTokenMissing, nil)
		c.metrics.ObserveValidation(Code(err), 0)
		recordError(span, err)
		return nil, err
	}

	start := time.Now()
	principal, err := c.provider.Validate(tokenText)
	duration := time.Since(start)

	if err != nil {
		if c.logger != nil {
			c.logger.Error("Token validation failed", "error", err, "code", Code(err), "duration", duration)
		}
		c.metrics.ObserveValidation(Code(err), duration)
		recordError(span, err)
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug("Token validated successfully", "principal", principal.Name, "duration", duration)
	}
	c.metrics.ObserveValidation(ResultSuccess, duration)
	span.SetAttributes(attribute.String("enduser.id", principal.Name))

	return &principal, nil
}

// IssueToken generates a token for p.
func (c *Core) IssueToken(ctx context.Context, p token.Principal) (token.Token, error) {
	_, span := c.tracer.Start(ctx, "jwtsecurity.IssueToken",
		trace.WithAttributes(attribute.String("enduser.id", p.Name)))
	defer span.End()

	tok, err := c.provider.Generate(p)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Token generation failed", "principal", p.Name, "error", err)
		}
		c.metrics.ObserveGeneration(ResultFailure)
		recordError(span, err)
		return token.Token{}, err
	}

	if c.logger != nil {
		c.logger.Debug("Token issued", "principal", p.Name, "expires_at", tok.ExpiresAt)
	}
	c.metrics.ObserveGeneration(ResultSuccess)

	return tok, nil
}

// CredentialsOptional reports whether requests without a token are let through.
func (c *Core) CredentialsOptional() bool {
	return c.credentialsOptional
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, Label(err))
}
