package jwtsecurity

import (
	"net/http"

	"github.com/catuns/go-jwt-security/core"
)

// ValidatorFilter authenticates requests from the token they carry.
type ValidatorFilter struct {
	core          *core.Core
	cfg           ValidatorConfig
	public        Predicate
	skipPreflight bool
	extractor     TokenExtractor
	logger        Logger
}

func newValidatorFilter(c *core.Core, cfg ValidatorConfig, public Predicate, skipPreflight bool, extractor TokenExtractor, logger Logger) *ValidatorFilter {
	return &ValidatorFilter{
		core:          c,
		cfg:           cfg,
		public:        public,
		skipPreflight: skipPreflight,
		extractor:     extractor,
		logger:        logger,
	}
}

// Applies reports whether r must be authenticated.
func (f *ValidatorFilter) Applies(r *http.Request) bool {
	if f.public(r) {
		if f.logger != nil {
			f.logger.Debug("skipping token validation for public path",
				"method", r.Method,
				"path", r.URL.Path)
		}
		return false
	}
	// With CORS enabled a preflight carries no token and is answered by
	// the CORS handler.
	if f.skipPreflight && IsPreflight(r) {
		if f.logger != nil {
			f.logger.Debug("skipping token validation for CORS preflight",
				"path", r.URL.Path)
		}
		return false
	}
	// If we don't validate on OPTIONS and this is OPTIONS
	// then continue onto next without validating.
	if !f.cfg.ValidateOnOptions && r.Method == http.MethodOptions {
		if f.logger != nil {
			f.logger.Debug("skipping token validation for OPTIONS request")
		}
		return false
	}
	return f.cfg.Applies(r)
}

// Authenticate extracts and validates the token on r. On success the
// returned request carries the principal in its security context. When
// credentials are optional and no token was sent, r is returned unchanged.
func (f *ValidatorFilter) Authenticate(r *http.Request) (*http.Request, error) {
	if f.logger != nil {
		f.logger.Debug("extracting token from request",
			"method", r.Method,
			"path", r.URL.Path)
	}

	tokenText, err := f.extractor(r)
	if err != nil {
		if f.logger != nil {
			f.logger.Warn("failed to extract token from request",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path)
		}
		return r, err
	}

	principal, err := f.core.CheckToken(r.Context(), tokenText)
	if err != nil {
		return r, err
	}

	if principal == nil {
		if f.logger != nil {
			f.logger.Debug("no credentials provided, continuing anonymously (credentials optional)")
		}
		return r, nil
	}

	ctx, sc := core.WithSecurityContext(r.Context())
	sc.SetPrincipal(*principal)
	if ctx != r.Context() {
		r = r.WithContext(ctx)
	}
	return r, nil
}

// Wrap runs Authenticate before next for every applicable request. Failures
// are returned to the enclosing stage.
func (f *ValidatorFilter) Wrap(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		if !f.Applies(r) {
			return next(w, r)
		}

		r, err := f.Authenticate(r)
		if err != nil {
			return err
		}
		return next(w, r)
	}
}
