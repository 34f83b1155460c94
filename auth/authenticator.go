package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/catuns/go-jwt-security/core"
	"github.com/catuns/go-jwt-security/token"
)

// Authentication failures. Both are core.AuthenticationErrors.
var (
	// ErrBadCredentials is returned for an unknown user or a wrong password.
	ErrBadCredentials = core.NewAuthenticationError("BadCredentials", core.ErrorCodeBadCredentials, nil)

	// ErrUserDisabled is returned when the user exists but is disabled.
	ErrUserDisabled = core.NewAuthenticationError("UserDisabled", core.ErrorCodeUserDisabled, nil)
)

// Logger defines an optional logging interface compatible with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Authenticator turns identifiers, optionally with a password, into
// principals.
type Authenticator struct {
	store  UserStore
	hasher PasswordHasher
	logger Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator) error

// NewAuthenticator returns an Authenticator reading users from store. The
// default hasher is a BcryptHasher.
func NewAuthenticator(store UserStore, opts ...Option) (*Authenticator, error) {
	if store == nil {
		return nil, errors.New("user store cannot be nil")
	}

	a := &Authenticator{store: store, hasher: BcryptHasher{}}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// WithPasswordHasher sets the hasher used by Authenticate.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(a *Authenticator) error {
		if h == nil {
			return errors.New("password hasher cannot be nil")
		}
		a.hasher = h
		return nil
	}
}

// WithLogger sets an optional logger.
func WithLogger(logger Logger) Option {
	return func(a *Authenticator) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

// LoadPrincipal resolves identifier without checking a password, for flows
// where the caller was authenticated by other means.
func (a *Authenticator) LoadPrincipal(ctx context.Context, identifier string) (token.Principal, error) {
	u, err := a.lookup(ctx, identifier)
	if err != nil {
		return token.Principal{}, err
	}
	return token.NewPrincipal(u.Username, u.Authorities...), nil
}

// Authenticate checks password against the stored hash. The returned
// principal never carries credentials.
func (a *Authenticator) Authenticate(ctx context.Context, identifier, password string) (token.Principal, error) {
	u, err := a.lookup(ctx, identifier)
	if err != nil {
		return token.Principal{}, err
	}

	if err := a.hasher.Compare(u.PasswordHash, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			if a.logger != nil {
				a.logger.Warn("password mismatch", "user", identifier)
			}
			return token.Principal{}, ErrBadCredentials
		}
		return token.Principal{}, err
	}

	if a.logger != nil {
		a.logger.Debug("user authenticated", "user", identifier)
	}
	return token.NewPrincipal(u.Username, u.Authorities...), nil
}

func (a *Authenticator) lookup(ctx context.Context, identifier string) (*UserRecord, error) {
	if identifier == "" {
		return nil, ErrBadCredentials
	}

	u, err := a.store.LookupByIdentifier(ctx, identifier)
	if errors.Is(err, ErrUserNotFound) {
		if a.logger != nil {
			a.logger.Warn("unknown user", "user", identifier)
		}
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if u.Disabled {
		if a.logger != nil {
			a.logger.Warn("disabled user", "user", identifier)
		}
		return nil, ErrUserDisabled
	}
	return u, nil
}
