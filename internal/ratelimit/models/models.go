package models

import (
	"net/url"
	"time"
)

// Rule caps how many requests one client IP may make to a group of
// endpoints within a sliding window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Key scopes the bucket for ip under the rule.
func (r Rule) Key(ip string) string {
	return "surebet:ratelimit:" + r.Name + ":" + url.QueryEscape(ip)
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// ExceededResponse is the 429 body.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}
