package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want string
	}{
		{"wrapped error wins", New(400, "INVALID_REQUEST", errors.New("query is required")), "query is required"},
		{"code when no cause", New(409, "CONCURRENT_OPERATION", nil), "CONCURRENT_OPERATION"},
		{"status text as last resort", New(http.StatusBadGateway, "", nil), "Bad Gateway"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := errors.New("boom")
	if !errors.Is(New(500, "INTERNAL", cause), cause) {
		t.Fatal("errors.Is should see through the wrapper")
	}
}

func TestWithRetryAfter(t *testing.T) {
	e := New(429, "RATE_LIMITED", nil).WithRetryAfter(30)
	if e.RetryAfterSeconds != 30 {
		t.Fatalf("retryAfterSeconds = %d, want 30", e.RetryAfterSeconds)
	}
}
