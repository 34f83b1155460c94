// Package config loads the service configuration from the environment and
// optional .env files, and converts it into token provider options and a
// jwtsecurity.Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/sirupsen/logrus"

	jwtsecurity "github.com/catuns/go-jwt-security"
	"github.com/catuns/go-jwt-security/token"
)

const (
	envJWTSecret           = "JWT_SECRET"
	envJWTIssuer           = "JWT_ISSUER"
	envJWTExpiration       = "JWT_EXPIRATION"
	envJWTSigningAlgorithm = "JWT_SIGNING_ALGORITHM"

	envSecurityEnabled  = "JWT_SECURITY_ENABLED"
	envPublicPaths      = "JWT_SECURITY_PUBLIC_PATHS"
	envFilterValidator  = "JWT_SECURITY_FILTER_VALIDATOR"
	envFilterGenerator  = "JWT_SECURITY_FILTER_GENERATOR"
	envFilterException  = "JWT_SECURITY_FILTER_EXCEPTION_HANDLER"
	envValidationHeader = "JWT_SECURITY_VALIDATION_HEADER_NAME"
	envValidationPrefix = "JWT_SECURITY_VALIDATION_TOKEN_PREFIX"
	envValidateOptions  = "JWT_SECURITY_VALIDATION_OPTIONS_REQUESTS"
	envGenerationHeader = "JWT_SECURITY_GENERATION_HEADER_NAME"
	envGenerationPrefix = "JWT_SECURITY_GENERATION_TOKEN_PREFIX"
	envGenerationExpiry = "JWT_SECURITY_GENERATION_EXPIRATION_HEADER_NAME"
	envExceptionMessage = "JWT_SECURITY_EXCEPTION_INCLUDE_MESSAGE"
	envExceptionPath    = "JWT_SECURITY_EXCEPTION_INCLUDE_PATH"
	envExceptionLog     = "JWT_SECURITY_EXCEPTION_LOG"
	envCORSEnabled      = "JWT_SECURITY_CORS_ENABLED"
	envCORSOrigins      = "JWT_SECURITY_CORS_ALLOWED_ORIGINS"
	envCORSMethods      = "JWT_SECURITY_CORS_ALLOWED_METHODS"
	envCORSHeaders      = "JWT_SECURITY_CORS_ALLOWED_HEADERS"
	envCORSCredentials  = "JWT_SECURITY_CORS_ALLOW_CREDENTIALS"
	envCORSMaxAge       = "JWT_SECURITY_CORS_MAX_AGE"
	envServerAddr       = "SERVER_ADDR"
	envServerShutdown   = "SERVER_SHUTDOWN_TIMEOUT"
	envRedisAddr        = "REDIS_ADDR"
	envRedisPassword    = "REDIS_PASSWORD"
	envRedisDB          = "REDIS_DB"
	envRedisKeyPrefix   = "REDIS_USER_KEY_PREFIX"
	envLogLevel         = "LOG_LEVEL"
)

const (
	defaultSigningAlgorithm = "HS256"
	defaultServerAddr       = ":8080"
	defaultShutdownTimeout  = 10 * time.Second
	defaultLogLevel         = "info"
)

var signingAlgorithms = map[string]jwa.SignatureAlgorithm{
	"HS256": jwa.HS256,
	"HS384": jwa.HS384,
	"HS512": jwa.HS512,
}

// JWTConfig configures the token provider.
type JWTConfig struct {
	Secret           string
	Issuer           string
	Expiration       time.Duration
	SigningAlgorithm string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// RedisConfig locates the user store. An empty Addr selects the in-memory store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Config is the complete service configuration.
type Config struct {
	JWT      JWTConfig
	Security jwtsecurity.Config
	Server   ServerConfig
	Redis    RedisConfig
	LogLevel string
}

// Load reads the given .env files, or ".env" when none are given, into the
// process environment and builds a Config from it. Missing files are skipped
// and variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which has the signature of
// os.LookupEnv. Unset keys take their defaults. The result is not validated.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	r := reader{lookup: lookup}

	cfg := &Config{
		JWT: JWTConfig{
			Secret:           r.getString(envJWTSecret, ""),
			Issuer:           r.getString(envJWTIssuer, ""),
			Expiration:       r.getDuration(envJWTExpiration, token.DefaultExpiration),
			SigningAlgorithm: strings.ToUpper(r.getString(envJWTSigningAlgorithm, defaultSigningAlgorithm)),
		},
		Server: ServerConfig{
			Addr:            r.getString(envServerAddr, defaultServerAddr),
			ShutdownTimeout: r.getDuration(envServerShutdown, defaultShutdownTimeout),
		},
		Redis: RedisConfig{
			Addr:      r.getString(envRedisAddr, ""),
			Password:  r.getString(envRedisPassword, ""),
			DB:        r.getInt(envRedisDB, 0),
			KeyPrefix: r.getString(envRedisKeyPrefix, ""),
		},
		LogLevel: strings.ToLower(r.getString(envLogLevel, defaultLogLevel)),
	}

	sec := jwtsecurity.DefaultConfig()
	sec.Enabled = r.getBool(envSecurityEnabled, sec.Enabled)
	sec.PublicPaths = r.getList(envPublicPaths, sec.PublicPaths)

	sec.Validator.Enabled = r.getBool(envFilterValidator, sec.Validator.Enabled)
	sec.Validator.HeaderName = r.getString(envValidationHeader, sec.Validator.HeaderName)
	sec.Validator.TokenPrefix = r.getRaw(envValidationPrefix, sec.Validator.TokenPrefix)
	sec.Validator.ValidateOnOptions = r.getBool(envValidateOptions, sec.Validator.ValidateOnOptions)

	sec.Generator.Enabled = r.getBool(envFilterGenerator, sec.Generator.Enabled)
	sec.Generator.HeaderName = r.getString(envGenerationHeader, sec.Generator.HeaderName)
	sec.Generator.TokenPrefix = r.getRaw(envGenerationPrefix, sec.Generator.TokenPrefix)
	sec.Generator.ExpirationHeaderName = r.getString(envGenerationExpiry, sec.Generator.ExpirationHeaderName)

	sec.Exception.Enabled = r.getBool(envFilterException, sec.Exception.Enabled)
	sec.Exception.IncludeMessage = r.getBool(envExceptionMessage, sec.Exception.IncludeMessage)
	sec.Exception.IncludePath = r.getBool(envExceptionPath, sec.Exception.IncludePath)
	sec.Exception.LogExceptions = r.getBool(envExceptionLog, sec.Exception.LogExceptions)

	sec.CORS.Enabled = r.getBool(envCORSEnabled, sec.CORS.Enabled)
	sec.CORS.AllowedOrigins = r.getList(envCORSOrigins, sec.CORS.AllowedOrigins)
	sec.CORS.AllowedMethods = r.getList(envCORSMethods, sec.CORS.AllowedMethods)
	sec.CORS.AllowedHeaders = r.getList(envCORSHeaders, sec.CORS.AllowedHeaders)
	sec.CORS.AllowCredentials = r.getBool(envCORSCredentials, sec.CORS.AllowCredentials)
	sec.CORS.MaxAge = r.getDuration(envCORSMaxAge, sec.CORS.MaxAge)

	cfg.Security = sec

	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration errors that would prevent startup. A
// missing secret matches token.ErrMissingSecret.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, fmt.Errorf("%s must be set: %w", envJWTSecret, token.ErrMissingSecret))
	}
	if c.JWT.Expiration <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", envJWTExpiration))
	}
	if _, ok := signingAlgorithms[c.JWT.SigningAlgorithm]; !ok {
		errs = append(errs, fmt.Errorf("%s: unsupported algorithm %q", envJWTSigningAlgorithm, c.JWT.SigningAlgorithm))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", envLogLevel, err))
	}
	if _, err := jwtsecurity.MatchPaths(c.Security.PublicPaths...); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", envPublicPaths, err))
	}

	return errors.Join(errs...)
}

// ProviderOptions converts the JWT section into token.Options.
func (c *Config) ProviderOptions() []token.Option {
	opts := []token.Option{
		token.WithIssuer(c.JWT.Issuer),
		token.WithExpiration(c.JWT.Expiration),
	}
	if alg, ok := signingAlgorithms[c.JWT.SigningAlgorithm]; ok {
		opts = append(opts, token.WithSigningAlgorithm(alg))
	}
	return opts
}

// NewProvider builds a token provider from the JWT section.
func (c *Config) NewProvider(extra ...token.Option) (*token.Provider, error) {
	return token.New(c.JWT.Secret, append(c.ProviderOptions(), extra...)...)
}

// ChainConfig returns the filter chain configuration. It fails when a public
// path pattern does not compile.
func (c *Config) ChainConfig() (jwtsecurity.Config, error) {
	if _, err := jwtsecurity.MatchPaths(c.Security.PublicPaths...); err != nil {
		return jwtsecurity.Config{}, err
	}
	return c.Security, nil
}

// Level returns the parsed log level.
func (c *Config) Level() (logrus.Level, error) {
	return logrus.ParseLevel(c.LogLevel)
}
