package accessgate

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	strutil "surebet/pkg/platform/strings"
)

//go:embed policy.yaml
var defaultPolicyYAML []byte

// Policy is the gate configuration as read from YAML.
type Policy struct {
	BlockedRegions    []string   `yaml:"blocked_regions"`
	ProtectedPrefixes []string   `yaml:"protected_prefixes"`
	ExcludedPrefixes  []string   `yaml:"excluded_prefixes"`
	GeoOnlyPrefixes   []string   `yaml:"geo_only_prefixes"`
	DenialPath        string     `yaml:"denial_path"`
	SignInPath        string     `yaml:"signin_path"`
	SignUpPath        string     `yaml:"signup_path"`
	HomePath          string     `yaml:"home_path"`
	GeoHeaders        GeoHeaders `yaml:"geo_headers"`
}

type GeoHeaders struct {
	Country []string `yaml:"country"`
	Region  []string `yaml:"region"`
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() Policy {
	var p Policy
	if err := yaml.Unmarshal(defaultPolicyYAML, &p); err != nil {
		panic(fmt.Sprintf("accessgate: embedded policy is invalid: %v", err))
	}
	return p
}

// LoadPolicy reads a policy file. Sections missing from the file keep their
// defaults; an empty path yields the defaults.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read access gate policy: %w", err)
	}
	return ParsePolicy(raw)
}

func ParsePolicy(raw []byte) (Policy, error) {
	p := DefaultPolicy()
	var override Policy
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Policy{}, fmt.Errorf("parse access gate policy: %w", err)
	}
	if override.BlockedRegions != nil {
		p.BlockedRegions = override.BlockedRegions
	}
	if override.ProtectedPrefixes != nil {
		p.ProtectedPrefixes = override.ProtectedPrefixes
	}
	if override.ExcludedPrefixes != nil {
		p.ExcludedPrefixes = override.ExcludedPrefixes
	}
	if override.GeoOnlyPrefixes != nil {
		p.GeoOnlyPrefixes = override.GeoOnlyPrefixes
	}
	if override.GeoHeaders.Country != nil {
		p.GeoHeaders.Country = override.GeoHeaders.Country
	}
	if override.GeoHeaders.Region != nil {
		p.GeoHeaders.Region = override.GeoHeaders.Region
	}
	p.normalize()
	p.DenialPath = orDefault(override.DenialPath, p.DenialPath)
	p.SignInPath = orDefault(override.SignInPath, p.SignInPath)
	p.SignUpPath = orDefault(override.SignUpPath, p.SignUpPath)
	p.HomePath = orDefault(override.HomePath, p.HomePath)
	return p, p.validate()
}

func (p *Policy) normalize() {
	p.BlockedRegions = strutil.DedupeAndTrimUpper(p.BlockedRegions)
	p.ProtectedPrefixes = strutil.DedupeAndTrim(p.ProtectedPrefixes)
	p.ExcludedPrefixes = strutil.DedupeAndTrim(p.ExcludedPrefixes)
	p.GeoOnlyPrefixes = strutil.DedupeAndTrim(p.GeoOnlyPrefixes)
	p.GeoHeaders.Country = strutil.DedupeAndTrim(p.GeoHeaders.Country)
	p.GeoHeaders.Region = strutil.DedupeAndTrim(p.GeoHeaders.Region)
}

func (p Policy) validate() error {
	for name, v := range map[string]string{
		"denial_path": p.DenialPath,
		"signin_path": p.SignInPath,
		"signup_path": p.SignUpPath,
		"home_path":   p.HomePath,
	} {
		if !strings.HasPrefix(v, "/") {
			return fmt.Errorf("access gate policy: %s must be an absolute path, got %q", name, v)
		}
	}
	for _, prefix := range p.ProtectedPrefixes {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("access gate policy: protected prefix %q must start with /", prefix)
		}
	}
	for _, prefix := range p.GeoOnlyPrefixes {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("access gate policy: geo-only prefix %q must start with /", prefix)
		}
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
