package jwtsecurity

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// HandlerFunc is an http handler that reports failures instead of writing
// them. Errors travel outward through the stages until the exception stage
// turns them into a response. A handler that has already written to w should
// not also return an error: the response cannot be replaced, so the error is
// only logged.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts a plain http.Handler. The returned HandlerFunc never fails.
func Handle(h http.Handler) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		h.ServeHTTP(w, r)
		return nil
	}
}

// Predicate decides whether a stage applies to a request.
type Predicate func(r *http.Request) bool

// Always matches every request.
func Always(*http.Request) bool { return true }

// Never matches no request.
func Never(*http.Request) bool { return false }

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(r *http.Request) bool { return !p(r) }
}

// AnyOf matches when at least one of ps matches. With no predicates it never
// matches.
func AnyOf(ps ...Predicate) Predicate {
	return func(r *http.Request) bool {
		for _, p := range ps {
			if p != nil && p(r) {
				return true
			}
		}
		return false
	}
}

// Methods matches requests using one of the given HTTP methods.
func Methods(methods ...string) Predicate {
	upper := make([]string, len(methods))
	for i, m := range methods {
		upper[i] = strings.ToUpper(m)
	}
	return func(r *http.Request) bool {
		return slices.Contains(upper, r.Method)
	}
}

// MatchPaths matches the request path against glob patterns. "*" stays
// within one path segment and "**" spans segments. A pattern ending in "/**"
// also matches its bare prefix, so "/actuator/health/**" matches
// "/actuator/health".
func MatchPaths(patterns ...string) (Predicate, error) {
	if len(patterns) == 0 {
		return Never, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid path pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)

		if base, ok := strings.CutSuffix(pattern, "/**"); ok && base != "" {
			g, err := glob.Compile(base, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid path pattern %q: %w", pattern, err)
			}
			globs = append(globs, g)
		}
	}

	return func(r *http.Request) bool {
		for _, g := range globs {
			if g.Match(r.URL.Path) {
				return true
			}
		}
		return false
	}, nil
}
