package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lumenlabs/creatorchat-backend/internal/http/middleware"
	"github.com/lumenlabs/creatorchat-backend/internal/http/response"
	"github.com/lumenlabs/creatorchat-backend/internal/modules/ingest"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

type IngestHandler struct {
	log *logger.Logger
	svc ingest.Service
}

func NewIngestHandler(log *logger.Logger, svc ingest.Service) *IngestHandler {
	return &IngestHandler{log: log.With("handler", "IngestHandler"), svc: svc}
}

type ingestRequestBody struct {
	ChannelURL         string                    `json:"channelUrl"`
	ExistingChannelID  string                    `json:"existingChannelId"`
	ImportSettings     ingest.ImportSettings     `json:"importSettings"`
	ContentTypeFilters ingest.ContentTypeFilters `json:"contentTypeFilters"`
}

// IngestChannel triggers a channel import. The Idempotency-Key header makes
// the long-running operation safe to retry after a client timeout.
func (h *IngestHandler) IngestChannel(c *gin.Context) {
	var body ingestRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	userID := c.GetString(middleware.ContextUserID)

	resp, err := h.svc.Ingest(c.Request.Context(), ingest.Request{
		ChannelURL:         body.ChannelURL,
		ExistingChannelID:  body.ExistingChannelID,
		ImportSettings:     body.ImportSettings,
		ContentTypeFilters: body.ContentTypeFilters,
		IdempotencyKey:     strings.TrimSpace(c.GetHeader("Idempotency-Key")),
		OwnerKey:           "user:" + userID,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, resp)
}
