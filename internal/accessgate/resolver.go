package accessgate

import (
	"net/http"
	"strings"
)

// GeoResolver determines where a request comes from.
type GeoResolver interface {
	Resolve(r *http.Request) Location
}

// HeaderResolver reads the location the CDN or edge platform stamped on the
// request. The first non-empty header of each list wins.
type HeaderResolver struct {
	CountryHeaders []string
	RegionHeaders  []string
}

func NewHeaderResolver(h GeoHeaders) HeaderResolver {
	return HeaderResolver{CountryHeaders: h.Country, RegionHeaders: h.Region}
}

func (h HeaderResolver) Resolve(r *http.Request) Location {
	country := strings.ToUpper(firstHeader(r, h.CountryHeaders))
	// Cloudflare reports XX when it cannot place the client.
	if country == "XX" || len(country) != 2 {
		return Location{}
	}
	region := strings.ToUpper(firstHeader(r, h.RegionHeaders))
	region = strings.TrimPrefix(region, country+"-")
	return Location{Country: country, Subdivision: region}
}

func firstHeader(r *http.Request, names []string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r.Header.Get(name)); v != "" {
			return v
		}
	}
	return ""
}
