package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURI(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	valid := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)

	t.Run("decodes jpeg", func(t *testing.T) {
		img, err := ParseDataURI(valid)
		require.NoError(t, err)
		assert.Equal(t, MIMEJPEG, img.MIME)
		assert.Equal(t, payload, img.Data)
		assert.Equal(t, valid, img.DataURI())
	})

	t.Run("mime is case insensitive", func(t *testing.T) {
		img, err := ParseDataURI("data:IMAGE/PNG;base64," + base64.StdEncoding.EncodeToString(payload))
		require.NoError(t, err)
		assert.Equal(t, MIMEPNG, img.MIME)
	})

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"missing scheme", "image/jpeg;base64,AAAA", ErrInvalidDataURI},
		{"missing comma", "data:image/jpeg;base64", ErrInvalidDataURI},
		{"not base64", "data:image/jpeg,AAAA", ErrInvalidDataURI},
		{"bad payload", "data:image/jpeg;base64,***", ErrInvalidDataURI},
		{"unsupported type", "data:image/gif;base64,R0lGOD", ErrUnsupportedImageType},
		{"pdf rejected", "data:application/pdf;base64,JVBERi0=", ErrUnsupportedImageType},
		{"empty payload", "data:image/webp;base64,", ErrEmptyImage},
		{"too large", "data:image/png;base64," + strings.Repeat("A", MaxImageBytes/3*4+8), ErrImageTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDataURI(tc.raw)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestProviderErrorTaxonomy(t *testing.T) {
	tests := []struct {
		category  ErrorCategory
		retryable bool
	}{
		{ErrorTimeout, true},
		{ErrorProviderOutage, true},
		{ErrorRateLimited, true},
		{ErrorMalformedOutput, false},
		{ErrorContentPolicy, false},
		{ErrorAuthentication, false},
		{ErrorBadInput, false},
		{ErrorInternal, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.category), func(t *testing.T) {
			err := fmt.Errorf("gather: %w", NewProviderError(tc.category, "ocr", "boom", nil))

			assert.Equal(t, tc.category, GetCategory(err))
			assert.Equal(t, tc.retryable, IsRetryable(err))
			assert.True(t, IsProviderError(err))
		})
	}
}

func TestGetCategoryFallbacks(t *testing.T) {
	assert.Equal(t, ErrorTimeout, GetCategory(context.DeadlineExceeded))
	assert.Equal(t, ErrorInternal, GetCategory(errors.New("unknown")))
	assert.False(t, IsRetryable(errors.New("unknown")))
}

func TestProviderErrorUnwrap(t *testing.T) {
	root := errors.New("connection refused")
	err := NewProviderError(ErrorProviderOutage, "face", "call failed", root)

	assert.ErrorIs(t, err, root)
	assert.Contains(t, err.Error(), "provider face [provider_outage]")
}
