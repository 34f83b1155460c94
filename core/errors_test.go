package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catuns/go-jwt-security/token"
)

func TestAuthenticationError(t *testing.T) {
	t.Run("error message with details", func(t *testing.T) {
		details := errors.New("password mismatch")
		err := NewAuthenticationError("BadCredentials", ErrorCodeBadCredentials, details)

		assert.Equal(t, "BadCredentials: password mismatch", err.Error())
		assert.Equal(t, details, errors.Unwrap(err))
	})

	t.Run("error message without details", func(t *testing.T) {
		err := NewAuthenticationError("UserDisabled", ErrorCodeUserDisabled, nil)

		assert.Equal(t, "UserDisabled", err.Error())
	})

	t.Run("Is works with ErrAuthentication", func(t *testing.T) {
		err := fmt.Errorf("login: %w", NewAuthenticationError("BadCredentials", ErrorCodeBadCredentials, nil))

		assert.ErrorIs(t, err, ErrAuthentication)
		assert.True(t, IsAuthenticationError(err))
	})
}

func TestLabelAndCode(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		wantLabel string
		wantCode  string
		wantAuth  bool
	}{
		{
			name:      "token error",
			err:       token.NewValidationError(token.ErrTokenExpired, nil),
			wantLabel: "TokenExpired",
			wantCode:  "token_expired",
			wantAuth:  true,
		},
		{
			name:      "wrapped token error",
			err:       fmt.Errorf("checking: %w", token.NewValidationError(token.ErrSignatureInvalid, nil)),
			wantLabel: "SignatureInvalid",
			wantCode:  "invalid_signature",
			wantAuth:  true,
		},
		{
			name:      "authentication error",
			err:       NewAuthenticationError("BadCredentials", ErrorCodeBadCredentials, nil),
			wantLabel: "BadCredentials",
			wantCode:  ErrorCodeBadCredentials,
			wantAuth:  true,
		},
		{
			name: "outermost label wins",
			err: NewAuthenticationError("UserDisabled", ErrorCodeUserDisabled,
				token.NewValidationError(token.ErrTokenExpired, nil)),
			wantLabel: "UserDisabled",
			wantCode:  ErrorCodeUserDisabled,
			wantAuth:  true,
		},
		{
			name:      "plain error",
			err:       errors.New("database down"),
			wantLabel: "InternalServerError",
			wantCode:  ErrorCodeInternal,
			wantAuth:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantLabel, Label(tc.err))
			assert.Equal(t, tc.wantCode, Code(tc.err))
			assert.Equal(t, tc.wantAuth, IsAuthenticationError(tc.err))
		})
	}
}
