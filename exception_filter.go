package jwtsecurity

import (
	"errors"
	"net/http"
	"time"

	"github.com/catuns/go-jwt-security/core"
	"github.com/catuns/go-jwt-security/token"
)

// ProblemTypeBlank is the problem type used when no more specific URI applies.
const ProblemTypeBlank = "about:blank"

const internalErrorDetail = "An unexpected error occurred while processing the request."

// ExceptionFilter is the outermost stage. It installs the request's security
// context and turns errors returned by inner stages into problem responses.
type ExceptionFilter struct {
	cfg    ExceptionConfig
	writer ProblemWriter
	now    func() time.Time
	logger Logger
}

func newExceptionFilter(cfg ExceptionConfig, writer ProblemWriter, now func() time.Time, logger Logger) *ExceptionFilter {
	return &ExceptionFilter{
		cfg:    cfg,
		writer: writer,
		now:    now,
		logger: logger,
	}
}

// Wrap terminates a stage pipeline as an http.Handler. An error returned after
// the response was started is logged but not written.
func (f *ExceptionFilter) Wrap(next HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := core.WithSecurityContext(r.Context())
		r = r.WithContext(ctx)

		tw := &writeTracker{ResponseWriter: w}
		err := next(tw, r)
		if err == nil {
			return
		}
		if tw.started {
			if f.logger != nil {
				f.logger.Error("request failed after the response was started",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
			}
			return
		}
		f.HandleError(w, r, err)
	})
}

// Problem describes err as a ProblemDetail. Authentication failures map to
// 401 with the failure's label as title; anything else is a 500 whose detail
// never echoes the underlying error.
func (f *ExceptionFilter) Problem(r *http.Request, err error) ProblemDetail {
	p := ProblemDetail{
		Type:      ProblemTypeBlank,
		Timestamp: f.now().UTC(),
	}

	if core.IsAuthenticationError(err) {
		p.Status = http.StatusUnauthorized
		p.Title = core.Label(err)
		p.Code = core.Code(err)
		if f.cfg.IncludeMessage {
			p.Detail = err.Error()
		}
	} else {
		p.Status = http.StatusInternalServerError
		p.Title = "InternalServerError"
		p.Code = core.ErrorCodeInternal
		if f.cfg.IncludeMessage {
			p.Detail = internalErrorDetail
		}
	}

	if f.cfg.IncludePath {
		p.Instance = r.URL.Path
	}
	return p
}

// HandleError logs err when configured and writes the problem response.
func (f *ExceptionFilter) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	p := f.Problem(r, err)

	if f.cfg.LogExceptions && f.logger != nil {
		if p.Status == http.StatusInternalServerError {
			f.logger.Error("request failed",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path)
		} else {
			f.logger.Warn("request rejected",
				"title", p.Title,
				"error", err,
				"method", r.Method,
				"path", r.URL.Path)
		}
	}

	if challenge := bearerChallenge(err); challenge != "" {
		w.Header().Set("WWW-Authenticate", challenge)
	}
	f.writer(w, r, p)
}

func bearerChallenge(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenMissing):
		return "Bearer"
	case errors.Is(err, token.ErrTokenInvalid):
		return `Bearer error="invalid_token"`
	default:
		return ""
	}
}

// writeTracker records whether a final status or body reached w.
type writeTracker struct {
	http.ResponseWriter
	started bool
}

func (t *writeTracker) WriteHeader(status int) {
	if status >= http.StatusOK {
		t.started = true
	}
	t.ResponseWriter.WriteHeader(status)
}

func (t *writeTracker) Write(p []byte) (int, error) {
	t.started = true
	return t.ResponseWriter.Write(p)
}

func (t *writeTracker) Flush() {
	t.started = true
	_ = http.NewResponseController(t.ResponseWriter).Flush()
}

func (t *writeTracker) Unwrap() http.ResponseWriter { return t.ResponseWriter }
