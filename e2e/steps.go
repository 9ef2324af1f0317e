package e2e

import (
	"github.com/cucumber/godog"

	"doccheck/e2e/steps/common"
	"doccheck/e2e/steps/ratelimit"
	"doccheck/e2e/steps/validation"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background, generic requests, assertions
	common.RegisterSteps(ctx, tc)

	validation.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
