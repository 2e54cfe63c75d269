package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	redisclient "github.com/lumenlabs/creatorchat-backend/internal/clients/redis"
	"github.com/lumenlabs/creatorchat-backend/internal/clients/transcripts"
	"github.com/lumenlabs/creatorchat-backend/internal/clients/youtube"
	"github.com/lumenlabs/creatorchat-backend/internal/data/db"
	"github.com/lumenlabs/creatorchat-backend/internal/data/repos"
	"github.com/lumenlabs/creatorchat-backend/internal/guard"
	httpserver "github.com/lumenlabs/creatorchat-backend/internal/http"
	httpH "github.com/lumenlabs/creatorchat-backend/internal/http/handlers"
	httpMW "github.com/lumenlabs/creatorchat-backend/internal/http/middleware"
	"github.com/lumenlabs/creatorchat-backend/internal/modules/chat"
	"github.com/lumenlabs/creatorchat-backend/internal/modules/ingest"
	"github.com/lumenlabs/creatorchat-backend/internal/observability"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/envutil"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/openai"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/pinecone"
)

type App struct {
	Log    *logger.Logger
	DB     *gorm.DB
	Server *httpserver.Server
	Cfg    Config

	memStore     *guard.MemoryStore
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "creatorchat-backend",
		Environment: cfg.Env,
		Version:     cfg.Version,
	})

	database, err := db.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := database.DB()

	// Guards prefer redis so limits and locks hold across instances;
	// without REDIS_ADDR they degrade to per-process.
	var guardStore guard.Store
	var memStore *guard.MemoryStore
	if rdb, err := redisclient.NewClient(log); err != nil {
		log.Warn("Redis unavailable, guard state is per-process only", "error", err)
		memStore = guard.NewMemoryStore(time.Minute)
		guardStore = memStore
	} else {
		guardStore = guard.NewRedisStore(rdb)
	}
	limiter := guard.NewRateLimiter(guardStore, log)
	idem := guard.NewIdempotency(guardStore, log, 10*time.Minute, 24*time.Hour)
	locks := guard.NewLockManager(guardStore, log)

	ai, err := openai.NewClient(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init openai: %w", err)
	}
	pineconeClient, err := pinecone.New(log, pinecone.Config{APIKey: envutil.Str("PINECONE_API_KEY", "")})
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init pinecone: %w", err)
	}
	vectorStore, err := pinecone.NewVectorStore(log, pineconeClient)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	ytClient, err := youtube.NewClient(ctx, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init youtube: %w", err)
	}
	transcriptSource, err := transcripts.NewSource(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init transcript source: %w", err)
	}

	channelRepo := repos.NewChannelRepo(theDB, log)
	videoRepo := repos.NewVideoRepo(theDB, log)
	chunkRepo := repos.NewChunkRepo(theDB, log)
	usageRepo := repos.NewUsageRepo(theDB, log)

	retriever := chat.NewRetriever(log, vectorStore, chunkRepo, cfg.Chat)
	chatService := chat.NewService(log, cfg.Chat, ai, retriever, channelRepo, videoRepo, usageRepo, limiter)
	ingestService := ingest.NewService(log, ytClient, transcriptSource, ai, vectorStore, channelRepo, videoRepo, chunkRepo, usageRepo, idem, locks)

	authMW, err := httpMW.NewAuthMiddleware(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init auth middleware: %w", err)
	}

	srv := httpserver.NewServer(httpserver.RouterConfig{
		Log:            log,
		AuthMiddleware: authMW,
		ChatHandler:    httpH.NewChatHandler(log, chatService),
		IngestHandler:  httpH.NewIngestHandler(log, ingestService),
		HealthHandler:  httpH.NewHealthHandler(),
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       srv,
		Cfg:          cfg,
		memStore:     memStore,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server starting", "addr", a.Cfg.Addr)
	return a.Server.Run(a.Cfg.Addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.memStore != nil {
		a.memStore.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
