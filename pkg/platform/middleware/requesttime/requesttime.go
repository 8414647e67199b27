// Package requesttime pins a single "now" for the whole request so audit
// records, decisions and session expiry agree on the time.
package requesttime

import (
	"net/http"
	"time"

	"surebet/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
