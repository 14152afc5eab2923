package healthtrack

import (
	"strings"
	"time"
)

// errorClass is the result of classifying a provider error message.
type errorClass int

const (
	classTransient errorClass = iota
	classRateLimit
	classOutOfCredits
	classAuthFailure
	classServiceUnavailable
)

// classificationRules is checked in order; the first pattern whose
// substring (case-insensitive) appears in the error message wins. Order
// matters: e.g. a "402" status must be checked as OutOfCredits before the
// generic default.
var classificationRules = []struct {
	class    errorClass
	patterns []string
}{
	{classRateLimit, []string{"rate limit", "too many requests", "429"}},
	{classOutOfCredits, []string{
		"insufficient credits", "quota exceeded", "out of credits",
		"billing", "payment required", "402",
	}},
	{classAuthFailure, []string{
		"unauthorized", "forbidden", "invalid api key", "invalid token",
		"authentication failed", "401", "403",
	}},
	{classServiceUnavailable, []string{"service unavailable", "502", "503", "504", "gateway"}},
}

// classify maps an error message to an errorClass using case-insensitive
// substring matching, checked in the order above. Messages matching none
// of the patterns classify as transient.
func classify(errMsg string) errorClass {
	lower := strings.ToLower(errMsg)
	for _, rule := range classificationRules {
		for _, p := range rule.patterns {
			if strings.Contains(lower, p) {
				return rule.class
			}
		}
	}
	return classTransient
}

// statusFor returns the HealthStatus a failure of this class moves the
// provider to.
func (c errorClass) status() Status {
	switch c {
	case classOutOfCredits, classAuthFailure:
		return Unavailable
	default:
		return Degraded
	}
}

// retryAfter computes how long to back off for this class of failure,
// given the post-increment consecutive-failure count (used only by the
// rate-limit class). now is injected so callers can test deterministically.
func (c errorClass) retryAfter(now time.Time, consecutiveFailures int64) time.Time {
	switch c {
	case classRateLimit:
		return now.Add(calculateBackoff(consecutiveFailures))
	case classOutOfCredits, classAuthFailure:
		return now.Add(24 * time.Hour)
	case classServiceUnavailable:
		return now.Add(5 * time.Minute)
	default:
		return now.Add(30 * time.Second)
	}
}

// calculateBackoff returns 2^min(consecutiveFailures,6) minutes, capped at
// 60 minutes. consecutiveFailures must be the count *after* the increment
// for this failure, not the pre-increment value (the original
// implementation this is ported from always used a literal 1 here; that
// bug is not carried forward).
func calculateBackoff(consecutiveFailures int64) time.Duration {
	n := consecutiveFailures
	if n < 1 {
		n = 1
	}
	if n > 6 {
		n = 6
	}
	minutes := time.Duration(1 << uint(n))
	if minutes > 60 {
		minutes = 60
	}
	return minutes * time.Minute
}
