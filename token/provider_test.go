package token

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret        = "s3cr3t-key-value"
	base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestProvider(t *testing.T, clock *fakeClock, opts ...Option) *Provider {
	t.Helper()
	opts = append([]Option{
		WithIssuer("app"),
		WithExpiration(time.Hour),
		WithClock(clock.Now),
	}, opts...)
	p, err := New(testSecret, opts...)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		secret  string
		opts    []Option
		wantErr string
	}{
		{
			name:   "defaults",
			secret: testSecret,
		},
		{
			name:    "empty secret",
			secret:  "",
			wantErr: ErrMissingSecret.Error(),
		},
		{
			name:    "zero expiration",
			secret:  testSecret,
			opts:    []Option{WithExpiration(0)},
			wantErr: "expiration must be positive",
		},
		{
			name:    "asymmetric algorithm",
			secret:  testSecret,
			opts:    []Option{WithSigningAlgorithm(jwa.RS256)},
			wantErr: "unsupported signing algorithm: RS256",
		},
		{
			name:    "nil customizer",
			secret:  testSecret,
			opts:    []Option{WithCustomizer(nil)},
			wantErr: "customizer cannot be nil",
		},
		{
			name:    "nil policy",
			secret:  testSecret,
			opts:    []Option{WithValidationPolicy(nil)},
			wantErr: "validation policy cannot be nil",
		},
		{
			name:    "nil clock",
			secret:  testSecret,
			opts:    []Option{WithClock(nil)},
			wantErr: "clock cannot be nil",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(tc.secret, tc.opts...)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, p)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultExpiration, p.Expiration())
		})
	}

	t.Run("missing secret is matchable", func(t *testing.T) {
		_, err := New("")
		assert.ErrorIs(t, err, ErrMissingSecret)
	})
}

func TestProvider_GenerateAndValidate(t *testing.T) {
	clock := newFakeClock()
	p := newTestProvider(t, clock)
	alice := NewPrincipal("alice", "ROLE_USER", "ROLE_ADMIN")

	tok, err := p.Generate(alice)
	require.NoError(t, err)

	assert.Equal(t, "alice", tok.Subject)
	assert.Equal(t, clock.Now(), tok.IssuedAt)
	assert.Equal(t, clock.Now().Add(time.Hour), tok.ExpiresAt)
	assert.Len(t, strings.Split(tok.Value, "."), 3)

	claims, err := p.Claims(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "app", claims.Issuer())
	assert.Equal(t, "alice", claims.Subject())
	assert.Equal(t, "alice", claims.User())
	assert.ElementsMatch(t, []string{"ROLE_USER", "ROLE_ADMIN"}, claims.Authorities())
	assert.True(t, tok.ExpiresAt.Equal(claims.Expiration()))
	assert.True(t, tok.IssuedAt.Equal(claims.IssuedAt()))

	got, err := p.Validate(tok.Value)
	require.NoError(t, err)
	assert.True(t, got.Equal(alice))
	assert.Empty(t, got.Credentials)
	if diff := cmp.Diff(alice, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("principal mismatch (-want +got):\n%s", diff)
	}
}

func TestProvider_AuthorityRoundTripIsSetEqual(t *testing.T) {
	p := newTestProvider(t, newFakeClock())

	testCases := []struct {
		name        string
		authorities []string
		want        []string
	}{
		{name: "none", authorities: nil, want: []string{}},
		{name: "order ignored", authorities: []string{"b", "a", "c"}, want: []string{"a", "b", "c"}},
		{name: "duplicates collapsed", authorities: []string{"a", "a", "b"}, want: []string{"a", "b"}},
		{name: "blanks dropped", authorities: []string{" a ", "", "b"}, want: []string{"a", "b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := p.Generate(Principal{Name: "bob", Credentials: "secret", Authorities: tc.authorities})
			require.NoError(t, err)

			got, err := p.Validate(tok.Value)
			require.NoError(t, err)
			assert.Equal(t, "bob", got.Name)
			assert.Empty(t, got.Credentials)
			assert.Equal(t, tc.want, got.Authorities)
		})
	}
}

func TestProvider_ValidateFailures(t *testing.T) {
	clock := newFakeClock()
	p := newTestProvider(t, clock)

	tok, err := p.Generate(NewPrincipal("alice", "ROLE_USER"))
	require.NoError(t, err)

	other, err := New("a-completely-different-secret", WithClock(clock.Now))
	require.NoError(t, err)

	testCases := []struct {
		name      string
		validate  func() error
		wantKind  error
		wantLabel string
	}{
		{
			name: "garbage",
			validate: func() error {
				_, err := p.Validate("garbage")
				return err
			},
			wantKind:  ErrTokenMalformed,
			wantLabel: "TokenMalformed",
		},
		{
			name: "three garbage segments",
			validate: func() error {
				_, err := p.Validate("abc.def.ghi")
				return err
			},
			wantKind:  ErrTokenMalformed,
			wantLabel: "TokenMalformed",
		},
		{
			name: "tampered signature",
			validate: func() error {
				_, err := p.Validate(tamperSignature(tok.Value))
				return err
			},
			wantKind:  ErrSignatureInvalid,
			wantLabel: "SignatureInvalid",
		},
		{
			name: "signed with another secret",
			validate: func() error {
				_, err := other.Validate(tok.Value)
				return err
			},
			wantKind:  ErrSignatureInvalid,
			wantLabel: "SignatureInvalid",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTokenInvalid)
			assert.ErrorIs(t, err, tc.wantKind)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.wantLabel, verr.Label())
		})
	}
}

func TestProvider_TamperEverySignatureByte(t *testing.T) {
	p := newTestProvider(t, newFakeClock())
	tok, err := p.Generate(NewPrincipal("alice"))
	require.NoError(t, err)

	lastDot := strings.LastIndex(tok.Value, ".")
	signature := tok.Value[lastDot+1:]

	for i := 0; i < len(signature); i++ {
		for _, c := range base64URLAlphabet {
			if byte(c) == signature[i] {
				continue
			}
			tampered := tok.Value[:lastDot+1] + signature[:i] + string(c) + signature[i+1:]
			_, err := p.Validate(tampered)
			require.Errorf(t, err, "replacing %q at %d with %q went unnoticed", signature[i], i, c)
			assert.ErrorIs(t, err, ErrSignatureInvalid)
		}
	}
}

func TestProvider_IssuedInTheFuture(t *testing.T) {
	issuer := newFakeClock()
	p := newTestProvider(t, issuer)
	tok, err := p.Generate(NewPrincipal("alice", "ROLE_USER"))
	require.NoError(t, err)

	lagging := &fakeClock{now: issuer.Now().Add(-time.Minute)}
	behind := newTestProvider(t, lagging)

	principal, err := behind.Validate(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Name)

	expired, err := behind.IsExpired(tok.Value)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestProvider_Expiry(t *testing.T) {
	clock := newFakeClock()
	p := newTestProvider(t, clock)

	tok, err := p.Generate(NewPrincipal("alice"))
	require.NoError(t, err)

	expired, err := p.IsExpired(tok.Value)
	require.NoError(t, err)
	assert.False(t, expired)

	clock.Advance(59 * time.Minute)
	expired, err = p.IsExpired(tok.Value)
	require.NoError(t, err)
	assert.False(t, expired)

	clock.Advance(time.Minute)

	t.Run("validate surfaces expiry as an error", func(t *testing.T) {
		_, err := p.Validate(tok.Value)
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("is expired answers instead of failing", func(t *testing.T) {
		expired, err := p.IsExpired(tok.Value)
		require.NoError(t, err)
		assert.True(t, expired)
	})

	t.Run("is expired still reports other failures", func(t *testing.T) {
		expired, err := p.IsExpired(tamperSignature(tok.Value))
		assert.ErrorIs(t, err, ErrSignatureInvalid)
		assert.False(t, expired)
	})
}

func TestProvider_TimestampsAreSampledPerCall(t *testing.T) {
	clock := newFakeClock()
	p := newTestProvider(t, clock)

	first, err := p.Generate(NewPrincipal("alice"))
	require.NoError(t, err)

	clock.Advance(5 * time.Second)

	second, err := p.Generate(NewPrincipal("alice"))
	require.NoError(t, err)

	assert.True(t, second.IssuedAt.After(first.IssuedAt))
	assert.Equal(t, 5*time.Second, second.ExpiresAt.Sub(first.ExpiresAt))
}

func TestProvider_Customizer(t *testing.T) {
	p := newTestProvider(t, newFakeClock())
	p.SetCustomizer(StaticClaimsCustomizer(map[string]any{"role": "admin"}))

	tok, err := p.Generate(NewPrincipal("alice"))
	require.NoError(t, err)

	claims, err := p.Claims(tok.Value)
	require.NoError(t, err)
	role, ok := claims.Get("role")
	require.True(t, ok)
	assert.Equal(t, "admin", role)

	t.Run("receives the principal being issued", func(t *testing.T) {
		var seen Principal
		calls := 0
		p.SetCustomizer(CustomizerFunc(func(b *jwt.Builder, principal Principal) {
			calls++
			seen = principal
		}))

		_, err := p.Generate(NewPrincipal("carol", "ROLE_X"))
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, "carol", seen.Name)
	})

	t.Run("cannot override timestamps", func(t *testing.T) {
		p.SetCustomizer(CustomizerFunc(func(b *jwt.Builder, _ Principal) {
			b.Expiration(time.Unix(0, 0))
		}))

		tok, err := p.Generate(NewPrincipal("alice"))
		require.NoError(t, err)
		_, err = p.Validate(tok.Value)
		assert.NoError(t, err)
	})

	t.Run("last set wins", func(t *testing.T) {
		p.SetCustomizer(StaticClaimsCustomizer(map[string]any{"first": true}))
		p.SetCustomizer(StaticClaimsCustomizer(map[string]any{"second": true}))

		tok, err := p.Generate(NewPrincipal("alice"))
		require.NoError(t, err)
		claims, err := p.Claims(tok.Value)
		require.NoError(t, err)

		_, hasFirst := claims.Get("first")
		_, hasSecond := claims.Get("second")
		assert.False(t, hasFirst)
		assert.True(t, hasSecond)
	})

	t.Run("nil restores the default", func(t *testing.T) {
		p.SetCustomizer(nil)
		tok, err := p.Generate(NewPrincipal("alice"))
		require.NoError(t, err)
		claims, err := p.Claims(tok.Value)
		require.NoError(t, err)
		_, ok := claims.Get("second")
		assert.False(t, ok)
	})

	t.Run("token id", func(t *testing.T) {
		p.SetCustomizer(TokenIDCustomizer())
		a, err := p.Generate(NewPrincipal("alice"))
		require.NoError(t, err)
		b, err := p.Generate(NewPrincipal("alice"))
		require.NoError(t, err)

		ca, err := p.Claims(a.Value)
		require.NoError(t, err)
		cb, err := p.Claims(b.Value)
		require.NoError(t, err)
		assert.NotEmpty(t, ca.String("jti"))
		assert.NotEqual(t, ca.String("jti"), cb.String("jti"))
	})
}

func TestProvider_ValidationPolicy(t *testing.T) {
	p := newTestProvider(t, newFakeClock())
	reason := errors.New("tenant suspended")

	tok, err := p.Generate(NewPrincipal("alice", "ROLE_USER"))
	require.NoError(t, err)

	t.Run("rejecting policy fails every validation", func(t *testing.T) {
		p.SetValidationPolicy(PolicyFunc(func(*Claims) error { return reason }))

		for i := 0; i < 3; i++ {
			_, err := p.Validate(tok.Value)
			assert.ErrorIs(t, err, ErrPolicyRejected)
			assert.ErrorIs(t, err, ErrTokenInvalid)
			assert.ErrorIs(t, err, reason)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "TokenValidationFailed", verr.Label())
			assert.Equal(t, "token_rejected", verr.Code())
		}
	})

	t.Run("policy sees parsed claims once per call", func(t *testing.T) {
		calls := 0
		p.SetValidationPolicy(PolicyFunc(func(c *Claims) error {
			calls++
			assert.Equal(t, "alice", c.Subject())
			return nil
		}))

		_, err := p.Validate(tok.Value)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("policy is not consulted for an invalid signature", func(t *testing.T) {
		called := false
		p.SetValidationPolicy(PolicyFunc(func(*Claims) error {
			called = true
			return nil
		}))

		_, err := p.Validate(tamperSignature(tok.Value))
		assert.ErrorIs(t, err, ErrSignatureInvalid)
		assert.False(t, called)
	})

	t.Run("built in policies", func(t *testing.T) {
		p.SetCustomizer(AudienceCustomizer("api"))
		defer p.SetCustomizer(nil)

		tok, err := p.Generate(NewPrincipal("alice", "ROLE_USER"))
		require.NoError(t, err)

		accepted := []ValidationPolicy{
			RequireIssuer("app"),
			RequireAudience("api"),
			RequireAuthority("ROLE_USER"),
			RequireClaim(ClaimUser, "alice"),
			AllOf(RequireIssuer("app"), nil, RequireAudience("api")),
		}
		for _, policy := range accepted {
			p.SetValidationPolicy(policy)
			_, err := p.Validate(tok.Value)
			assert.NoError(t, err)
		}

		rejected := []ValidationPolicy{
			RequireIssuer("someone-else"),
			RequireAudience("other-api"),
			RequireAuthority("ROLE_ADMIN"),
			RequireClaim("tenant", "acme"),
			AllOf(RequireIssuer("app"), RequireAudience("other-api")),
		}
		for _, policy := range rejected {
			p.SetValidationPolicy(policy)
			_, err := p.Validate(tok.Value)
			assert.ErrorIs(t, err, ErrPolicyRejected)
		}
	})
}

func TestProvider_SigningAlgorithm(t *testing.T) {
	clock := newFakeClock()
	hs512 := newTestProvider(t, clock, WithSigningAlgorithm(jwa.HS512))
	hs256 := newTestProvider(t, clock)

	tok, err := hs512.Generate(NewPrincipal("alice"))
	require.NoError(t, err)

	_, err = hs512.Validate(tok.Value)
	require.NoError(t, err)

	_, err = hs256.Validate(tok.Value)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestProvider_ConcurrentUse(t *testing.T) {
	p := newTestProvider(t, newFakeClock())

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := p.Generate(NewPrincipal("alice", "ROLE_USER"))
			if err != nil {
				errs <- err
				return
			}
			if _, err := p.Validate(tok.Value); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func tamperSignature(tok string) string {
	lastDot := strings.LastIndex(tok, ".")
	signature := tok[lastDot+1:]
	return tok[:lastDot+1] + replaceAt(signature, len(signature)/2)
}

func replaceAt(s string, i int) string {
	replacement := byte('A')
	if s[i] == 'A' {
		replacement = 'B'
	}
	return s[:i] + string(replacement) + s[i+1:]
}
