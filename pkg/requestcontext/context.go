// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services and stores read them without
// importing net/http.
//
//	subject := requestcontext.Subject(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	subjectIDKey   struct{}
	sessionIDKey   struct{}
	emailKey       struct{}
	deviceKey      struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Device is the coarse device description derived from the User-Agent.
type Device struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// -----------------------------------------------------------------------------
// Session context
// -----------------------------------------------------------------------------

// WithSession injects the authenticated subject, session and email.
func WithSession(ctx context.Context, subjectID, sessionID, email string) context.Context {
	ctx = context.WithValue(ctx, subjectIDKey{}, subjectID)
	ctx = context.WithValue(ctx, sessionIDKey{}, sessionID)
	return context.WithValue(ctx, emailKey{}, email)
}

// Subject returns the authenticated subject ID, or "" for anonymous requests.
func Subject(ctx context.Context) string {
	v, _ := ctx.Value(subjectIDKey{}).(string)
	return v
}

// SessionID returns the current session ID, or "".
func SessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey{}).(string)
	return v
}

// Email returns the authenticated subject's email, or "".
func Email(ctx context.Context) string {
	v, _ := ctx.Value(emailKey{}).(string)
	return v
}

// Authenticated reports whether a session was attached to the context.
func Authenticated(ctx context.Context) bool {
	return SessionID(ctx) != ""
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent, device)
// -----------------------------------------------------------------------------

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey{}).(string)
	return v
}

// WithDevice injects the parsed device description.
func WithDevice(ctx context.Context, d Device) context.Context {
	return context.WithValue(ctx, deviceKey{}, d)
}

// DeviceInfo returns the parsed device description, zero if unknown.
func DeviceInfo(ctx context.Context) Device {
	v, _ := ctx.Value(deviceKey{}).(Device)
	return v
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() outside of HTTP requests (workers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
