package guard

import (
	"fmt"
	"net/http"
	"time"
)

// Reason codes surfaced to clients when a guard refuses an operation.
const (
	CodeRateLimited         = "RATE_LIMITED"
	CodeDuplicateRequest    = "DUPLICATE_REQUEST"
	CodeConcurrentOperation = "CONCURRENT_OPERATION"
)

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) HTTPStatusCode() int { return http.StatusTooManyRequests }

// RetryAfterSeconds rounds up so a client that waits the advertised amount
// always lands in the next window.
func (e *RateLimitedError) RetryAfterSeconds() int {
	secs := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}

// DuplicatePendingError means an identical request is still in flight.
type DuplicatePendingError struct {
	Key string
}

func (e *DuplicatePendingError) Error() string {
	return fmt.Sprintf("duplicate request %q still pending", e.Key)
}

func (e *DuplicatePendingError) HTTPStatusCode() int { return http.StatusConflict }

// LockHeldError means another worker holds the named lock.
type LockHeldError struct {
	Key string
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("operation lock %q is held", e.Key)
}

func (e *LockHeldError) HTTPStatusCode() int { return http.StatusConflict }
