// Package apierr types request-level failures with everything the response
// envelope needs: HTTP status, stable reason code, and an optional retry
// hint.
package apierr

import "net/http"

// Error is a client-facing failure. Code is the machine-readable reason the
// frontend switches on; RetryAfterSeconds, when set, tells the handler layer
// to emit a Retry-After header alongside the envelope.
type Error struct {
	Status            int
	Code              string
	RetryAfterSeconds int
	Err               error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// WithRetryAfter marks the failure as worth retrying after the given delay.
func (e *Error) WithRetryAfter(seconds int) *Error {
	e.RetryAfterSeconds = seconds
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return http.StatusText(e.Status)
}

func (e *Error) Unwrap() error { return e.Err }
