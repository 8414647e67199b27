package admin

import (
	"log/slog"
	"net/http"

	dErrors "surebet/pkg/domain-errors"
	"surebet/pkg/platform/httputil"
	"surebet/pkg/platform/secrets"
	"surebet/pkg/requestcontext"
)

// TokenHeader carries the admin API token.
const TokenHeader = "X-Admin-Token"

// RequireAdminToken admits requests whose X-Admin-Token matches the bcrypt
// hash configured for the admin API.
func RequireAdminToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := secrets.Verify(r.Header.Get(TokenHeader), tokenHash); err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
