package jwtsecurity

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/catuns/go-jwt-security/core"
)

// Header defaults shared by the validator and generator stages.
const (
	DefaultHeaderName           = "Authorization"
	DefaultTokenPrefix          = "Bearer "
	DefaultExpirationHeaderName = "x-token-expiration"
)

// DefaultPublicPaths are left unauthenticated by DefaultConfig.
var DefaultPublicPaths = []string{
	"/swagger-ui/**",
	"/v3/api-docs/**",
	"/actuator/health/**",
	"/error/**",
}

// Config describes the whole filter chain. It is assembled once and handed to
// NewChain; the chain keeps its own copy.
//
// Start from DefaultConfig: a zero Config has every stage switched off.
type Config struct {
	// Enabled switches the chain off entirely. Then returns the handler
	// unchanged when false.
	Enabled bool

	// PublicPaths are glob patterns the validator stage skips. See MatchPaths.
	PublicPaths []string

	Validator ValidatorConfig
	Generator GeneratorConfig
	Exception ExceptionConfig
	CORS      CORSConfig
}

// ValidatorConfig configures the stage that authenticates incoming tokens.
type ValidatorConfig struct {
	Enabled bool

	// HeaderName and TokenPrefix locate the token. Empty values fall back to
	// DefaultHeaderName and DefaultTokenPrefix.
	HeaderName  string
	TokenPrefix string

	// ValidateOnOptions controls whether OPTIONS requests are validated.
	// CORS preflights are never validated while CORS is enabled.
	ValidateOnOptions bool

	// Applies restricts the stage to matching requests. nil means Always.
	Applies Predicate
}

// GeneratorConfig configures the stage that issues tokens on the way out.
type GeneratorConfig struct {
	Enabled bool

	// HeaderName, TokenPrefix and ExpirationHeaderName control where the
	// default TokenWriter puts the token. Empty values fall back to the
	// package defaults.
	HeaderName           string
	TokenPrefix          string
	ExpirationHeaderName string

	// Applies restricts the stage to matching requests. nil means Always.
	Applies Predicate
}

// ExceptionConfig configures the outermost, error translating stage.
type ExceptionConfig struct {
	// Enabled selects problem responses. When false errors are still caught
	// but answered with a bare status code.
	Enabled bool

	LogExceptions  bool
	IncludeMessage bool
	IncludePath    bool
}

// DefaultConfig returns a Config with every stage enabled and the default
// header names, prefixes and public paths.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		PublicPaths: slices.Clone(DefaultPublicPaths),
		Validator: ValidatorConfig{
			Enabled:           true,
			HeaderName:        DefaultHeaderName,
			TokenPrefix:       DefaultTokenPrefix,
			ValidateOnOptions: true,
		},
		Generator: GeneratorConfig{
			Enabled:              true,
			HeaderName:           DefaultHeaderName,
			TokenPrefix:          DefaultTokenPrefix,
			ExpirationHeaderName: DefaultExpirationHeaderName,
		},
		Exception: ExceptionConfig{
			Enabled:        true,
			LogExceptions:  true,
			IncludeMessage: true,
			IncludePath:    true,
		},
		CORS: DefaultCORSConfig(),
	}
}

// Chain composes the exception, validator and generator stages around a
// handler:
//
//	exception(validator(handler) -> generator)
//
// The exception stage is outermost. The validator runs before the handler and
// the generator runs after it, so it sees the principal the request ended up
// authenticated as.
type Chain struct {
	core   *core.Core
	cfg    Config
	logger Logger

	tokenExtractor TokenExtractor
	tokenWriter    TokenWriter
	problemWriter  ProblemWriter
	now            func() time.Time

	validator *ValidatorFilter
	generator *GeneratorFilter
	exception *ExceptionFilter
}

// NewChain constructs a Chain.
//
// Example:
//
//	cfg := jwtsecurity.DefaultConfig()
//	cfg.PublicPaths = append(cfg.PublicPaths, "/login")
//
//	chain, err := jwtsecurity.NewChain(engine, cfg,
//	    jwtsecurity.WithLogger(jwtsecurity.NewLogrusLogger(logrus.StandardLogger())),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create chain: %v", err)
//	}
//	http.ListenAndServe(":8080", chain.Then(mux))
func NewChain(c *core.Core, cfg Config, opts ...Option) (*Chain, error) {
	if c == nil {
		return nil, ErrCoreNil
	}

	ch := &Chain{
		core: c,
		cfg:  cloneConfig(cfg),
		now:  time.Now,
	}

	for _, opt := range opts {
		if err := opt(ch); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	ch.applyDefaults()

	public, err := MatchPaths(ch.cfg.PublicPaths...)
	if err != nil {
		return nil, fmt.Errorf("invalid chain configuration: %w", err)
	}

	ch.validator = newValidatorFilter(ch.core, ch.cfg.Validator, public, ch.cfg.CORS.Enabled, ch.tokenExtractor, ch.logger)
	ch.generator = newGeneratorFilter(ch.core, ch.cfg.Generator, ch.tokenWriter, ch.logger)
	ch.exception = newExceptionFilter(ch.cfg.Exception, ch.problemWriter, ch.now, ch.logger)

	return ch, nil
}

func (ch *Chain) applyDefaults() {
	v := &ch.cfg.Validator
	if v.HeaderName == "" {
		v.HeaderName = DefaultHeaderName
	}
	if v.TokenPrefix == "" {
		v.TokenPrefix = DefaultTokenPrefix
	}
	if v.Applies == nil {
		v.Applies = Always
	}

	g := &ch.cfg.Generator
	if g.HeaderName == "" {
		g.HeaderName = DefaultHeaderName
	}
	if g.TokenPrefix == "" {
		g.TokenPrefix = DefaultTokenPrefix
	}
	if g.ExpirationHeaderName == "" {
		g.ExpirationHeaderName = DefaultExpirationHeaderName
	}
	if g.Applies == nil {
		g.Applies = Always
	}

	if ch.tokenExtractor == nil {
		ch.tokenExtractor = HeaderTokenExtractor(v.HeaderName, v.TokenPrefix)
	}
	if ch.tokenWriter == nil {
		ch.tokenWriter = DefaultTokenWriter(g.HeaderName, g.TokenPrefix, g.ExpirationHeaderName)
	}
	if ch.problemWriter == nil {
		ch.problemWriter = JSONProblemWriter
		if !ch.cfg.Exception.Enabled {
			ch.problemWriter = PlainProblemWriter
		}
	}
}

// Then wraps next with the enabled stages.
func (ch *Chain) Then(next http.Handler) http.Handler {
	if !ch.cfg.Enabled {
		return next
	}
	return ch.ThenFunc(Handle(next))
}

// ThenFunc wraps an error returning handler with the enabled stages.
func (ch *Chain) ThenFunc(next HandlerFunc) http.Handler {
	h := next
	if ch.cfg.Generator.Enabled {
		h = ch.generator.Wrap(h)
	}
	if ch.cfg.Validator.Enabled {
		h = ch.validator.Wrap(h)
	}
	return ch.exception.Wrap(h)
}

// Core returns the engine the chain validates and issues tokens with.
func (ch *Chain) Core() *core.Core { return ch.core }

// Config returns a copy of the effective configuration, defaults applied.
func (ch *Chain) Config() Config { return cloneConfig(ch.cfg) }

// Validator returns the validator stage, for adapters that drive it directly.
func (ch *Chain) Validator() *ValidatorFilter { return ch.validator }

// Generator returns the generator stage.
func (ch *Chain) Generator() *GeneratorFilter { return ch.generator }

// Exception returns the exception stage.
func (ch *Chain) Exception() *ExceptionFilter { return ch.exception }

func cloneConfig(cfg Config) Config {
	cfg.PublicPaths = slices.Clone(cfg.PublicPaths)
	cfg.CORS = cfg.CORS.clone()
	return cfg
}

// Sentinel errors for chain configuration.
var (
	ErrCoreNil           = errors.New("core cannot be nil")
	ErrLoggerNil         = errors.New("logger cannot be nil")
	ErrTokenExtractorNil = errors.New("tokenExtractor cannot be nil")
	ErrTokenWriterNil    = errors.New("tokenWriter cannot be nil")
	ErrProblemWriterNil  = errors.New("problemWriter cannot be nil")
	ErrClockNil          = errors.New("clock cannot be nil")
)
