package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"surebet/pkg/requestcontext"
)

// Header is echoed on every response.
const Header = "X-Request-ID"

var acceptable = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// Middleware reuses a well-formed inbound X-Request-ID or mints one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !acceptable.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}
