package e2e

import (
	"github.com/cucumber/godog"

	"surebet/e2e/steps/common"
	"surebet/e2e/steps/gate"
	"surebet/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	gate.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
