package ratelimit

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(name string) string
}

// RegisterSteps registers rate limiting step definitions. The scenarios
// expect the service to run with DOCCHECK_RATE_LIMIT set low.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I send (\d+) text validations$`, steps.sendTextValidations)
	ctx.Step(`^(\d+) of them should be throttled$`, steps.nShouldBeThrottled)
	ctx.Step(`^the throttled response should carry a retry hint$`, steps.throttledCarriesRetryHint)
}

type ratelimitSteps struct {
	tc        TestContext
	statuses  []int
	retryHint string
}

func (s *ratelimitSteps) sendTextValidations(ctx context.Context, n int) error {
	s.statuses = s.statuses[:0]
	for i := range n {
		err := s.tc.POST("/validate-text", map[string]interface{}{
			"shipment":      map[string]string{"hs_code": "847130"},
			"document_name": fmt.Sprintf("burst-%d.txt", i),
			"document_text": "HS Code: 847130",
		})
		if err != nil {
			return err
		}
		status := s.tc.GetLastResponseStatus()
		s.statuses = append(s.statuses, status)
		if status == 429 {
			s.retryHint = s.tc.GetLastResponseHeader("Retry-After")
		}
	}
	return nil
}

func (s *ratelimitSteps) nShouldBeThrottled(ctx context.Context, expected int) error {
	throttled := 0
	for _, status := range s.statuses {
		switch status {
		case 429:
			throttled++
		case 200:
		default:
			return fmt.Errorf("unexpected status %d in %v", status, s.statuses)
		}
	}
	if throttled != expected {
		return fmt.Errorf("expected %d throttled responses, got %d in %v", expected, throttled, s.statuses)
	}
	return nil
}

func (s *ratelimitSteps) throttledCarriesRetryHint(ctx context.Context) error {
	if s.retryHint == "" {
		return fmt.Errorf("throttled response had no Retry-After header")
	}
	return nil
}
