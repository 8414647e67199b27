// Package metadata records who is calling: client IP and a coarse device
// description derived from the User-Agent.
package metadata

import (
	"net/http"

	"github.com/mssola/useragent"
	"github.com/tomasen/realip"

	"surebet/pkg/requestcontext"
)

// ClientMetadata should run early so later middleware and handlers can read
// the values from the context.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent := r.Header.Get("User-Agent")

		ctx := requestcontext.WithClientMetadata(r.Context(), realip.FromRequest(r), userAgent)
		ctx = requestcontext.WithDevice(ctx, ParseDevice(userAgent))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParseDevice reduces a User-Agent string to browser, OS and form factor.
func ParseDevice(userAgent string) requestcontext.Device {
	if userAgent == "" {
		return requestcontext.Device{}
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	return requestcontext.Device{
		Browser: browser,
		OS:      ua.OSInfo().Name,
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}
