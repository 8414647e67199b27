package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"surebet/pkg/platform/secrets"
)

func TestRequireAdminToken(t *testing.T) {
	hash, err := secrets.Hash("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name  string
		hash  string
		token string
		want  int
	}{
		{"valid token", hash, "s3cret", http.StatusTeapot},
		{"wrong token", hash, "guess", http.StatusUnauthorized},
		{"missing token", hash, "", http.StatusUnauthorized},
		{"no hash configured", "", "s3cret", http.StatusUnauthorized},
		{"malformed hash", "plaintext", "s3cret", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/kyc/stats", nil)
			if tc.token != "" {
				req.Header.Set(TokenHeader, tc.token)
			}
			rec := httptest.NewRecorder()
			RequireAdminToken(tc.hash, logger)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
