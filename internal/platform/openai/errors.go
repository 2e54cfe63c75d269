package openai

import (
	"errors"
	"fmt"
	"strings"
)

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// IsQuotaError reports whether err is a billing/quota exhaustion failure,
// which must not be retried and must not be reported as a transient fault.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	if he.StatusCode != 429 && he.StatusCode != 402 {
		return false
	}
	body := strings.ToLower(he.Body)
	return strings.Contains(body, "insufficient_quota") ||
		strings.Contains(body, "quota") ||
		strings.Contains(body, "billing")
}
