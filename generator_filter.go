package jwtsecurity

import (
	"bytes"
	"net/http"
	"time"

	"github.com/catuns/go-jwt-security/core"
	"github.com/catuns/go-jwt-security/token"
)

// TokenWriter places an issued token on the response. It runs before the
// response status is written, so it may only touch headers.
type TokenWriter func(w http.ResponseWriter, tok token.Token) error

// DefaultTokenWriter writes "<header>: <prefix><token>" and the expiry instant
// in RFC 3339 UTC into expirationHeader.
func DefaultTokenWriter(header, prefix, expirationHeader string) TokenWriter {
	return func(w http.ResponseWriter, tok token.Token) error {
		w.Header().Set(header, prefix+tok.Value)
		if expirationHeader != "" {
			w.Header().Set(expirationHeader, tok.ExpiresAt.UTC().Format(time.RFC3339))
		}
		return nil
	}
}

// GeneratorFilter issues a token for the request's principal after the
// downstream handler has run.
type GeneratorFilter struct {
	core   *core.Core
	cfg    GeneratorConfig
	writer TokenWriter
	logger Logger
}

func newGeneratorFilter(c *core.Core, cfg GeneratorConfig, writer TokenWriter, logger Logger) *GeneratorFilter {
	return &GeneratorFilter{
		core:   c,
		cfg:    cfg,
		writer: writer,
		logger: logger,
	}
}

// Applies reports whether the stage runs for r.
func (f *GeneratorFilter) Applies(r *http.Request) bool {
	return f.cfg.Applies(r)
}

// Issue generates a token for p and hands it to the TokenWriter.
func (f *GeneratorFilter) Issue(w http.ResponseWriter, r *http.Request, p token.Principal) error {
	tok, err := f.core.IssueToken(r.Context(), p)
	if err != nil {
		return err
	}
	return f.writer(w, tok)
}

// Wrap buffers the response of next and, if the request ended up
// authenticated, writes a fresh token before flushing it. An error from next
// or from issuing discards the buffered response. A handler that flushes
// commits the response early: the token is issued for the principal known at
// that point and later writes go straight through.
func (f *GeneratorFilter) Wrap(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		if !f.Applies(r) {
			return next(w, r)
		}

		buf := newBufferedResponse(w, func() error {
			return f.issueFor(w, r)
		})
		if err := next(buf, r); err != nil {
			return err
		}
		if buf.err != nil {
			return buf.err
		}
		return buf.commit()
	}
}

func (f *GeneratorFilter) issueFor(w http.ResponseWriter, r *http.Request) error {
	principal, err := core.GetPrincipal(r.Context())
	if err != nil {
		if f.logger != nil {
			f.logger.Debug("no authenticated principal, skipping token generation",
				"method", r.Method,
				"path", r.URL.Path)
		}
		return nil
	}
	return f.Issue(w, r, principal)
}

// bufferedResponse holds a handler's response until the generator stage has
// decided on its headers.
type bufferedResponse struct {
	w            http.ResponseWriter
	header       http.Header
	status       int
	body         bytes.Buffer
	beforeCommit func() error
	committed    bool
	err          error
}

func newBufferedResponse(w http.ResponseWriter, beforeCommit func() error) *bufferedResponse {
	return &bufferedResponse{
		w:            w,
		header:       make(http.Header),
		beforeCommit: beforeCommit,
	}
}

func (b *bufferedResponse) Header() http.Header {
	if b.committed {
		return b.w.Header()
	}
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.committed {
		return b.w.Write(p)
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

// Flush commits the buffered response and flushes the underlying writer. A
// failure to issue the token is kept for Wrap to return; nothing is written.
func (b *bufferedResponse) Flush() {
	if b.err != nil {
		return
	}
	if err := b.commit(); err != nil {
		b.err = err
		return
	}
	_ = http.NewResponseController(b.w).Flush()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (b *bufferedResponse) Unwrap() http.ResponseWriter { return b.w }

// commit copies the buffered headers, runs beforeCommit and writes the status
// and body. It is a no-op once the response is committed.
func (b *bufferedResponse) commit() error {
	if b.committed {
		return nil
	}

	dst := b.w.Header()
	for k, v := range b.header {
		dst[k] = append([]string(nil), v...)
	}

	if err := b.beforeCommit(); err != nil {
		return err
	}
	b.committed = true

	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	b.w.WriteHeader(status)
	_, err := b.body.WriteTo(b.w)
	return err
}
