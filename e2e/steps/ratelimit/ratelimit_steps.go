package ratelimit

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	SetHeader(name, value string)
	GetLastResponseStatus() int
	GetLastResponseHeader(name string) string
}

// RegisterSteps registers rate limiting step definitions for the KYC
// submission endpoints.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I am a client with IP "([^"]*)"$`, steps.clientWithIP)
	ctx.Step(`^I submit (\d+) verification requests$`, steps.submitN)
	ctx.Step(`^the first (\d+) submissions should not be rate limited$`, steps.firstNNotLimited)
	ctx.Step(`^the remaining submissions should return (\d+)$`, steps.remainingReturn)
	ctx.Step(`^the last rejection should carry a Retry-After header$`, steps.retryAfterPresent)
}

type ratelimitSteps struct {
	tc         TestContext
	statuses   []int
	retryAfter string
}

func (s *ratelimitSteps) clientWithIP(_ context.Context, ip string) error {
	s.tc.SetHeader("X-Forwarded-For", ip)
	return nil
}

// submitN posts empty bodies: they fail validation but still count against
// the limit, which runs before decoding.
func (s *ratelimitSteps) submitN(_ context.Context, n int) error {
	s.statuses = s.statuses[:0]
	for range n {
		if err := s.tc.POST("/api/kyc/verify", map[string]any{}); err != nil {
			return err
		}
		status := s.tc.GetLastResponseStatus()
		s.statuses = append(s.statuses, status)
		if status == 429 {
			s.retryAfter = s.tc.GetLastResponseHeader("Retry-After")
		}
	}
	return nil
}

func (s *ratelimitSteps) firstNNotLimited(_ context.Context, n int) error {
	if n > len(s.statuses) {
		return fmt.Errorf("only %d submissions were made", len(s.statuses))
	}
	for i, status := range s.statuses[:n] {
		if status == 429 {
			return fmt.Errorf("submission %d was rate limited", i+1)
		}
	}
	return nil
}

func (s *ratelimitSteps) remainingReturn(_ context.Context, expected int) error {
	limited := 0
	for _, status := range s.statuses {
		if status == 429 {
			limited++
		}
	}
	if limited == 0 {
		return fmt.Errorf("no submission was rejected")
	}
	for i := len(s.statuses) - limited; i < len(s.statuses); i++ {
		if s.statuses[i] != expected {
			return fmt.Errorf("submission %d returned %d, want %d", i+1, s.statuses[i], expected)
		}
	}
	return nil
}

func (s *ratelimitSteps) retryAfterPresent(context.Context) error {
	if s.retryAfter == "" {
		return fmt.Errorf("Retry-After header missing on 429")
	}
	return nil
}
