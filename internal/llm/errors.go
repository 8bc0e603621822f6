package llm

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
)

// ProviderError is returned by every backend when a call fails.
// StatusCode is 0 when the failure happened before an HTTP response arrived.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StatusCode returns the provider HTTP status carried anywhere in err's chain, or 0.
func StatusCode(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

var insufficientCreditsPattern = regexp.MustCompile(`(?i)insufficient (credits|quota)|payment required`)

// IsInsufficientCredits reports whether err means the account cannot pay for more
// calls: an HTTP 402 from the provider, or a provider error message saying so.
// Only ProviderError values are considered, so text quoted from model output
// inside other errors never matches.
func IsInsufficientCredits(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	if pe.StatusCode == http.StatusPaymentRequired {
		return true
	}
	return insufficientCreditsPattern.MatchString(pe.Error())
}

// IsRateLimited reports whether the provider rejected the call with HTTP 429.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// RateLimitMessage is shown to clients in place of raw 429 errors.
const RateLimitMessage = "API rate limit exceeded - please try again later"

// Describe renders err for API clients, replacing rate limit noise with a readable message.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if IsRateLimited(err) {
		return RateLimitMessage
	}
	return err.Error()
}
