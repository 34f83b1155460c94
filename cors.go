package jwtsecurity

import (
	"net/http"
	"slices"
	"time"
)

// CORSConfig describes cross-origin access to the protected API. The chain
// carries it for transports that install a CORS handler; see the echo
// adapter.
type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns a disabled CORSConfig with permissive defaults
// ready to be switched on.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:        false,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodPatch,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}
}

func (c CORSConfig) clone() CORSConfig {
	c.AllowedOrigins = slices.Clone(c.AllowedOrigins)
	c.AllowedMethods = slices.Clone(c.AllowedMethods)
	c.AllowedHeaders = slices.Clone(c.AllowedHeaders)
	return c
}

// IsPreflight reports whether r is a CORS preflight request.
func IsPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions &&
		r.Header.Get("Origin") != "" &&
		r.Header.Get("Access-Control-Request-Method") != ""
}
