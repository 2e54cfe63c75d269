package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/lumenlabs/creatorchat-backend/internal/http/handlers"
	httpMW "github.com/lumenlabs/creatorchat-backend/internal/http/middleware"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	ChatHandler   *httpH.ChatHandler
	IngestHandler *httpH.IngestHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("creatorchat-backend"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Public chat: no token, stricter limits, keyed by client id.
	if cfg.ChatHandler != nil && cfg.AuthMiddleware != nil {
		api.POST("/public/chat", cfg.AuthMiddleware.PublicClient(), cfg.ChatHandler.PublicChat)
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.ChatHandler != nil {
			protected.POST("/chat", cfg.ChatHandler.Chat)
		}
		if cfg.IngestHandler != nil {
			protected.POST("/channels/ingest", cfg.IngestHandler.IngestChannel)
		}
	}

	return r
}
