package accessgate

import (
	"net/url"
	"strings"
)

// RoutePolicy decides where a request should go based on whether the caller
// holds a session.
type RoutePolicy struct {
	protected []string
	signIn    string
	signUp    string
	home      string
}

func NewRoutePolicy(p Policy) RoutePolicy {
	return RoutePolicy{
		protected: append([]string(nil), p.ProtectedPrefixes...),
		signIn:    p.SignInPath,
		signUp:    p.SignUpPath,
		home:      p.HomePath,
	}
}

// Protected reports whether path needs a session. Matching is by raw prefix,
// so "/casino-live" is protected along with "/casino".
func (p RoutePolicy) Protected(path string) bool {
	for _, prefix := range p.protected {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Decide sends anonymous callers of protected paths to sign in and signed-in
// callers of the auth pages to the dashboard.
func (p RoutePolicy) Decide(path string, authenticated bool) Outcome {
	if !authenticated && p.Protected(path) {
		q := url.Values{"redirectedFrom": []string{path}}
		return Redirect(p.signIn + "?" + q.Encode())
	}
	if authenticated && (path == p.signIn || path == p.signUp) {
		return Redirect(p.home)
	}
	return Pass()
}
