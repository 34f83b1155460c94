package jwtsecurity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MatchPaths(t *testing.T) {
	match, err := MatchPaths(DefaultPublicPaths...)
	require.NoError(t, err)

	testCases := []struct {
		path string
		want bool
	}{
		{path: "/swagger-ui", want: true},
		{path: "/swagger-ui/", want: true},
		{path: "/swagger-ui/index.html", want: true},
		{path: "/swagger-ui/a/b/c.js", want: true},
		{path: "/v3/api-docs/swagger-config", want: true},
		{path: "/actuator/health", want: true},
		{path: "/actuator/health/liveness", want: true},
		{path: "/error", want: true},
		{path: "/actuator/metrics", want: false},
		{path: "/swagger-uix", want: false},
		{path: "/api/orders", want: false},
		{path: "/", want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.path, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, testCase.path, nil)
			assert.Equal(t, testCase.want, match(r))
		})
	}

	t.Run("single star stays within a segment", func(t *testing.T) {
		match, err := MatchPaths("/users/*/profile")
		require.NoError(t, err)

		assert.True(t, match(httptest.NewRequest(http.MethodGet, "/users/42/profile", nil)))
		assert.False(t, match(httptest.NewRequest(http.MethodGet, "/users/42/x/profile", nil)))
	})

	t.Run("no patterns never match", func(t *testing.T) {
		match, err := MatchPaths()
		require.NoError(t, err)
		assert.False(t, match(httptest.NewRequest(http.MethodGet, "/", nil)))
	})
}

func Test_Predicates(t *testing.T) {
	get := httptest.NewRequest(http.MethodGet, "/", nil)
	post := httptest.NewRequest(http.MethodPost, "/", nil)

	assert.True(t, Always(get))
	assert.False(t, Never(get))
	assert.False(t, Not(Always)(get))

	isPost := Methods("post", http.MethodPut)
	assert.True(t, isPost(post))
	assert.False(t, isPost(get))

	assert.True(t, AnyOf(Never, nil, isPost)(post))
	assert.False(t, AnyOf(Never, isPost)(get))
	assert.False(t, AnyOf()(get))
}

func Test_Handle(t *testing.T) {
	called := false
	h := Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	recorder := httptest.NewRecorder()
	err := h(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusAccepted, recorder.Code)
}
