// Package accessgate keeps visitors from blocked jurisdictions out of the
// site and sends them to sign in before the protected areas.
package accessgate

// OutcomeKind classifies what the gate wants done with a request.
type OutcomeKind string

const (
	OutcomePass     OutcomeKind = "pass"
	OutcomeRewrite  OutcomeKind = "rewrite"
	OutcomeRedirect OutcomeKind = "redirect"
)

// Outcome is the gate's verdict. Path is set for rewrites, URL for
// redirects.
type Outcome struct {
	Kind OutcomeKind
	Path string
	URL  string
}

func Pass() Outcome { return Outcome{Kind: OutcomePass} }
func Rewrite(path string) Outcome { return Outcome{Kind: OutcomeRewrite, Path: path} }
func Redirect(target string) Outcome { return Outcome{Kind: OutcomeRedirect, URL: target} }

// Request is what the gate needs to know about an incoming request.
type Request struct {
	Path          string
	Location      Location
	Authenticated bool
}

type Gate struct {
	geo        GeoPolicy
	routes     RoutePolicy
	denialPath string
}

func New(p Policy) *Gate {
	return &Gate{
		geo:        NewGeoPolicy(p.BlockedRegions),
		routes:     NewRoutePolicy(p),
		denialPath: p.DenialPath,
	}
}

// Evaluate applies the geo rule first and the session rule second. The
// denial page itself is never geo-blocked.
func (g *Gate) Evaluate(req Request) Outcome {
	if req.Path == g.denialPath {
		return Pass()
	}
	if g.geo.Blocked(req.Location) {
		return Rewrite(g.denialPath)
	}
	return g.routes.Decide(req.Path, req.Authenticated)
}

// GeoBlocked applies only the geo rule.
func (g *Gate) GeoBlocked(loc Location) bool {
	return g.geo.Blocked(loc)
}

func (g *Gate) DenialPath() string {
	return g.denialPath
}
