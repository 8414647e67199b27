package gate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

const (
	countryHeader = "X-Vercel-IP-Country"
	regionHeader  = "X-Vercel-IP-Country-Region"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	DELETE(path string) error
	SetHeader(name, value string)
	ClearHeader(name string)
	GetLastResponseStatus() int
	GetLastResponseHeader(name string) string
	GetLastResponseBody() []byte
}

// RegisterSteps registers access gate step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &gateSteps{tc: tc}

	ctx.Step(`^I am connecting from "([^"]*)"$`, steps.connectingFrom)
	ctx.Step(`^I am connecting from an unknown location$`, steps.unknownLocation)
	ctx.Step(`^I visit "([^"]*)"$`, steps.visit)
	ctx.Step(`^I should be redirected to "([^"]*)"$`, steps.redirectedTo)
	ctx.Step(`^I should see the restricted region page$`, steps.restrictedPage)
	ctx.Step(`^I should see the page$`, steps.pageServed)
	ctx.Step(`^I sign out$`, steps.signOut)
}

type gateSteps struct {
	tc TestContext
}

// connectingFrom accepts "CC" or "CC-SUB" and sets the edge geo headers.
func (s *gateSteps) connectingFrom(_ context.Context, location string) error {
	country, sub, _ := strings.Cut(location, "-")
	s.tc.SetHeader(countryHeader, country)
	if sub != "" {
		s.tc.SetHeader(regionHeader, sub)
	} else {
		s.tc.ClearHeader(regionHeader)
	}
	return nil
}

func (s *gateSteps) unknownLocation(context.Context) error {
	s.tc.ClearHeader(countryHeader)
	s.tc.ClearHeader(regionHeader)
	return nil
}

func (s *gateSteps) visit(_ context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *gateSteps) redirectedTo(_ context.Context, location string) error {
	if got := s.tc.GetLastResponseStatus(); got != 307 {
		return fmt.Errorf("expected 307 redirect, got %d", got)
	}
	if got := s.tc.GetLastResponseHeader("Location"); got != location {
		return fmt.Errorf("expected redirect to %q, got %q", location, got)
	}
	return nil
}

func (s *gateSteps) restrictedPage(context.Context) error {
	if got := s.tc.GetLastResponseStatus(); got != 451 {
		return fmt.Errorf("expected 451, got %d", got)
	}
	if !strings.Contains(string(s.tc.GetLastResponseBody()), "not available in your region") {
		return fmt.Errorf("denial page content missing")
	}
	return nil
}

func (s *gateSteps) pageServed(context.Context) error {
	if got := s.tc.GetLastResponseStatus(); got != 200 {
		return fmt.Errorf("expected 200, got %d", got)
	}
	return nil
}

func (s *gateSteps) signOut(context.Context) error {
	if err := s.tc.DELETE("/api/auth/session"); err != nil {
		return err
	}
	if got := s.tc.GetLastResponseStatus(); got != 204 {
		return fmt.Errorf("expected 204 on sign out, got %d", got)
	}
	return nil
}
