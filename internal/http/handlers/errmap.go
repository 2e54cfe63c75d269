package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenlabs/creatorchat-backend/internal/guard"
	"github.com/lumenlabs/creatorchat-backend/internal/http/response"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/apierr"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/httpx"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/openai"
)

func isQuotaExhaustion(err error) bool { return openai.IsQuotaError(err) }

// clientClosedRequest is nginx's non-standard status for callers that hung
// up; nothing useful can be sent but the access log keeps the distinction.
const clientClosedRequest = 499

// respondServiceError maps service errors onto the wire. The three guard
// refusals each get their own reason code because callers behave differently
// for each: back off and retry, poll for the result, or do not retry now.
func respondServiceError(c *gin.Context, log *logger.Logger, err error) {
	var (
		limited *guard.RateLimitedError
		pending *guard.DuplicatePendingError
		held    *guard.LockHeldError
		apiErr  *apierr.Error
	)
	switch {
	case errors.As(err, &limited):
		response.RespondRetryable(c, http.StatusTooManyRequests, guard.CodeRateLimited, err, limited.RetryAfterSeconds())
	case errors.As(err, &pending):
		response.RespondRetryable(c, http.StatusConflict, guard.CodeDuplicateRequest, errors.New("an identical request is still being processed"), 5)
	case errors.As(err, &held):
		response.RespondError(c, http.StatusConflict, guard.CodeConcurrentOperation, errors.New("this operation is already running"))
	case errors.As(err, &apiErr):
		if apiErr.RetryAfterSeconds > 0 {
			response.RespondRetryable(c, apiErr.Status, apiErr.Code, err, apiErr.RetryAfterSeconds)
		} else {
			response.RespondError(c, apiErr.Status, apiErr.Code, err)
		}
	case errors.Is(err, context.Canceled):
		c.Status(clientClosedRequest)
	case isQuotaExhaustion(err):
		log.Error("Upstream provider quota exhausted", "error", err)
		response.RespondError(c, http.StatusBadGateway, "PROVIDER_QUOTA", errors.New("the answer provider is out of quota; this will not resolve by retrying"))
	case httpx.IsRetryableError(err):
		log.Error("Upstream provider failed", "error", err)
		response.RespondRetryable(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", errors.New("an upstream provider is temporarily unavailable"), 10)
	default:
		log.Error("Request failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "INTERNAL", errors.New("internal error"))
	}
}
