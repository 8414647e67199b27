package accessgate

import "strings"

// Location is the coarse origin of a request as reported by the edge.
type Location struct {
	Country     string
	Subdivision string
}

func (l Location) String() string {
	if l.Subdivision == "" {
		return l.Country
	}
	return l.Country + "-" + l.Subdivision
}

// GeoPolicy decides whether a location is in a jurisdiction where the
// service is not offered.
type GeoPolicy struct {
	blocked map[string]struct{}
}

// NewGeoPolicy builds a policy from country ("KP") and country-subdivision
// ("US-NJ") codes.
func NewGeoPolicy(regions []string) GeoPolicy {
	blocked := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
			blocked[r] = struct{}{}
		}
	}
	return GeoPolicy{blocked: blocked}
}

// Blocked reports whether loc's country, or its country-subdivision pair, is
// blocked. An unknown country is never blocked.
func (p GeoPolicy) Blocked(loc Location) bool {
	country := strings.ToUpper(strings.TrimSpace(loc.Country))
	if country == "" {
		return false
	}
	if _, ok := p.blocked[country]; ok {
		return true
	}
	sub := strings.ToUpper(strings.TrimSpace(loc.Subdivision))
	if sub == "" {
		return false
	}
	_, ok := p.blocked[country+"-"+sub]
	return ok
}
