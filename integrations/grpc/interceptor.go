package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	"github.com/catuns/go-jwt-security/core"
)

// ErrCoreNotSet is returned by New when neither WithCore nor WithProvider was used.
var ErrCoreNotSet = errors.New("core is required, use WithCore or WithProvider option")

// JWTInterceptor provides token authentication for gRPC servers.
type JWTInterceptor struct {
	core            *core.Core
	tokenExtractor  TokenExtractor
	errorHandler    ErrorHandler
	excludedMethods map[string]bool
	logger          Logger

	// accumulates core options when WithProvider is used instead of WithCore
	coreBuilder *coreBuilder
}

// New creates a new gRPC interceptor with the provided options.
// WithCore or WithProvider is required.
func New(opts ...Option) (*JWTInterceptor, error) {
	interceptor := &JWTInterceptor{
		tokenExtractor:  MetadataTokenExtractor,
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	if interceptor.core == nil && interceptor.coreBuilder != nil {
		c, err := interceptor.coreBuilder.build()
		if err != nil {
			return nil, err
		}
		interceptor.core = c
	}

	if interceptor.core == nil {
		return nil, ErrCoreNotSet
	}

	return interceptor, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that
// authenticates the caller and puts its principal in the request context.
func (i *JWTInterceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping token validation for excluded method",
					"method", info.FullMethod)
			}
			return handler(ctx, req)
		}

		authenticatedCtx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(authenticatedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// authenticates the caller and puts its principal in the stream context.
func (i *JWTInterceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping token validation for excluded method",
					"method", info.FullMethod)
			}
			return handler(srv, ss)
		}

		authenticatedCtx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{
			ServerStream: ss,
			ctx:          authenticatedCtx,
		})
	}
}

// authenticate extracts and validates the token carried by ctx. The returned
// context always carries a security context; it holds the principal unless
// credentials are optional and none were sent.
func (i *JWTInterceptor) authenticate(ctx context.Context, method string) (context.Context, error) {
	tokenText, err := i.tokenExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Error("failed to extract token from gRPC metadata",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	principal, err := i.core.CheckToken(ctx, tokenText)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("token validation failed",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	ctx, sc := core.WithSecurityContext(ctx)
	if principal == nil {
		if i.logger != nil {
			i.logger.Debug("no credentials provided, continuing anonymously",
				"method", method)
		}
		return ctx, nil
	}

	sc.SetPrincipal(*principal)
	if i.logger != nil {
		i.logger.Debug("token validated",
			"method", method,
			"principal", principal.Name)
	}
	return ctx, nil
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the authenticated context.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
