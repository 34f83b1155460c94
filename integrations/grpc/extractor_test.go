package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

const rawToken = "aaa.bbb.ccc"

func TestMetadataTokenExtractor(t *testing.T) {
	testCases := []struct {
		name      string
		md        metadata.MD
		wantToken string
		wantError error
	}{
		{
			name: "no metadata",
		},
		{
			name: "no authorization entry",
			md:   metadata.Pairs("x-request-id", "42"),
		},
		{
			name:      "bearer token",
			md:        metadata.Pairs("authorization", "Bearer "+rawToken),
			wantToken: rawToken,
		},
		{
			name:      "scheme is case insensitive",
			md:        metadata.Pairs("authorization", "bEaReR "+rawToken),
			wantToken: rawToken,
		},
		{
			name:      "extra whitespace",
			md:        metadata.Pairs("authorization", "  Bearer   "+rawToken+" "),
			wantToken: rawToken,
		},
		{
			name:      "multiple entries",
			md:        metadata.Pairs("authorization", "Bearer a", "authorization", "Bearer b"),
			wantError: ErrMultipleAuthHeaders,
		},
		{
			name:      "scheme only",
			md:        metadata.Pairs("authorization", "Bearer"),
			wantError: ErrInvalidAuthFormat,
		},
		{
			name:      "too many parts",
			md:        metadata.Pairs("authorization", "Bearer a b"),
			wantError: ErrInvalidAuthFormat,
		},
		{
			name:      "basic scheme",
			md:        metadata.Pairs("authorization", "Basic dXNlcjpwYXNz"),
			wantError: ErrUnsupportedScheme,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			if testCase.md != nil {
				ctx = metadata.NewIncomingContext(ctx, testCase.md)
			}

			got, err := MetadataTokenExtractor(ctx)

			if testCase.wantError != nil {
				assert.ErrorIs(t, err, testCase.wantError)
				assert.Empty(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.wantToken, got)
		})
	}
}
