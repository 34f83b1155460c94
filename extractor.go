package jwtsecurity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/catuns/go-jwt-security/token"
)

// TokenExtractor is a function that takes a request as input and returns
// either a token or an error. In the case where a token is simply not present
// an empty string is returned and core decides whether that is acceptable.
type TokenExtractor func(r *http.Request) (string, error)

// HeaderTokenExtractor builds a TokenExtractor reading header and stripping
// prefix. A header that is present but does not start with prefix is
// reported as a missing token, since no usable credential was sent.
func HeaderTokenExtractor(header, prefix string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		value := r.Header.Get(header)
		if value == "" {
			return "", nil // No error, just no token.
		}

		if len(value) < len(prefix) || !strings.EqualFold(value[:len(prefix)], prefix) {
			return "", token.NewValidationError(token.ErrTokenMissing,
				fmt.Errorf("%s header format must be %s{token}", header, prefix))
		}

		tokenText := strings.TrimSpace(value[len(prefix):])
		if tokenText == "" {
			return "", token.NewValidationError(token.ErrTokenMissing,
				fmt.Errorf("%s header carries an empty token", header))
		}
		return tokenText, nil
	}
}

// AuthHeaderTokenExtractor extracts the token from "Authorization: Bearer <token>".
var AuthHeaderTokenExtractor = HeaderTokenExtractor(DefaultHeaderName, DefaultTokenPrefix)

// CookieTokenExtractor builds a TokenExtractor that takes a request and
// extracts the token from the cookie using the passed in cookieName.
func CookieTokenExtractor(cookieName string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return cookie.Value, nil
	}
}

// ParameterTokenExtractor returns a TokenExtractor that extracts
// the token from the specified query string parameter.
func ParameterTokenExtractor(param string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		return r.URL.Query().Get(param), nil
	}
}

// MultiTokenExtractor returns a TokenExtractor that runs multiple TokenExtractors
// and takes the one that does not return an empty token. If a TokenExtractor
// returns an error that error is immediately returned.
func MultiTokenExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			tokenText, err := ex(r)
			if err != nil {
				return "", err
			}

			if tokenText != "" {
				return tokenText, nil
			}
		}
		return "", nil
	}
}
