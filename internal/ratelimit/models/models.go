package models

import "time"

// RateLimitResult is the outcome of counting one request against a key.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is the wait in whole seconds before a denied caller may retry.
	RetryAfter int
}

// RateLimitExceededResponse is the 429 body.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds, never
// below one.
func RetryAfterSeconds(now, resetAt time.Time) int {
	wait := resetAt.Sub(now)
	secs := int((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
