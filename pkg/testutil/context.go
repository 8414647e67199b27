package testutil

import (
	"net/http"

	"surebet/pkg/requestcontext"
)

// WithSession marks req as signed in, the way the session middleware does
// for a valid cookie.
func WithSession(req *http.Request, subjectID, sessionID, email string) *http.Request {
	return req.WithContext(requestcontext.WithSession(req.Context(), subjectID, sessionID, email))
}

// WithClient sets the client IP and user agent the metadata middleware
// would extract.
func WithClient(req *http.Request, ip, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, userAgent))
}
