package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
	"github.com/lumenlabs/creatorchat-backend/internal/http/middleware"
	"github.com/lumenlabs/creatorchat-backend/internal/http/response"
	"github.com/lumenlabs/creatorchat-backend/internal/modules/chat"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

type ChatHandler struct {
	log *logger.Logger
	svc chat.Service
}

func NewChatHandler(log *logger.Logger, svc chat.Service) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), svc: svc}
}

type chatRequestBody struct {
	Query               string                       `json:"query"`
	ChannelScope        string                       `json:"channelScope"`
	ConversationHistory []domain.ConversationMessage `json:"conversationHistory"`
}

// Chat serves authenticated callers; identity comes from the verified token.
func (h *ChatHandler) Chat(c *gin.Context) {
	var body chatRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing identity"))
		return
	}
	h.answer(c, body, chat.CallerIdentity{UserID: userID})
}

// PublicChat serves anonymous traffic under the stricter public limits.
func (h *ChatHandler) PublicChat(c *gin.Context) {
	var body chatRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	clientID := c.GetString(middleware.ContextPublicClientID)
	h.answer(c, body, chat.CallerIdentity{PublicClientID: clientID})
}

func (h *ChatHandler) answer(c *gin.Context, body chatRequestBody, identity chat.CallerIdentity) {
	resp, err := h.svc.Answer(c.Request.Context(), chat.Request{
		Query:               body.Query,
		ChannelScope:        body.ChannelScope,
		ConversationHistory: body.ConversationHistory,
		CallerIdentity:      identity,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, resp)
}
