package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy for the mention pipeline. Callers match with errors.Is;
// RateLimitError additionally carries the platform's reset time and is
// matched with errors.As.
var (
	// ErrRateLimitExhausted: a rate-limited call ran out of bounded retries.
	ErrRateLimitExhausted = errors.New("rate limit retries exhausted")
	// ErrUpstream: a non-rate-limit failure from the platform API.
	ErrUpstream = errors.New("upstream platform error")
	// ErrGeneration: the text-generation service failed.
	ErrGeneration = errors.New("generation failed")
	// ErrPost: posting a reply failed for a non-rate-limit reason.
	ErrPost = errors.New("posting reply failed")
	// ErrStorageUnavailable: the durable state store is unreachable.
	ErrStorageUnavailable = errors.New("state store unavailable")
)

// RateLimitError is a rate-limit response from the platform, carrying the
// epoch at which the limit window resets.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.Reset.Format(time.RFC3339))
}

// IsRateLimit reports whether err is (or wraps) a rate-limit response.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
