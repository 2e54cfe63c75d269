package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message           string `json:"message"`
	Code              string `json:"code,omitempty"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondRetryable adds the machine-readable wait hint on top of the error
// envelope, plus the conventional Retry-After header.
func RespondRetryable(c *gin.Context, status int, code string, err error, retryAfterSeconds int) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if retryAfterSeconds > 0 {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message:           msg,
			Code:              code,
			RetryAfterSeconds: retryAfterSeconds,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
