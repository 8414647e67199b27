package session

import (
	"net/http"

	"surebet/pkg/requestcontext"
)

// Middleware attaches the session subject to the request context when the
// cookie is valid. Requests without a session pass through untouched; the
// access gate and handlers decide what anonymous callers may do.
func (m *CookieManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Current(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := requestcontext.WithSession(r.Context(), sess.SubjectID, sess.ID.String(), sess.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextChecker reports authentication from the request context populated
// by Middleware, avoiding a second store lookup.
type ContextChecker struct{}

func (ContextChecker) Authenticated(r *http.Request) bool {
	return requestcontext.Authenticated(r.Context())
}
