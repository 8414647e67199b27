package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"surebet/pkg/requestcontext"
)

func TestParseDevice(t *testing.T) {
	t.Run("empty user agent", func(t *testing.T) {
		assert.Equal(t, requestcontext.Device{}, ParseDevice(""))
	})

	t.Run("desktop chrome", func(t *testing.T) {
		d := ParseDevice("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Equal(t, "Chrome", d.Browser)
		assert.False(t, d.Mobile)
		assert.False(t, d.Bot)
	})

	t.Run("mobile safari", func(t *testing.T) {
		d := ParseDevice("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
		assert.True(t, d.Mobile)
		assert.NotEmpty(t, d.OS)
	})

	t.Run("crawler", func(t *testing.T) {
		d := ParseDevice("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		assert.True(t, d.Bot)
	})
}

func TestClientMetadata(t *testing.T) {
	var ip, ua string
	var device requestcontext.Device
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
		device = requestcontext.DeviceInfo(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", ip)
	assert.Contains(t, ua, "Firefox")
	assert.Equal(t, "Firefox", device.Browser)
}
