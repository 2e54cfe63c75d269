package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lumenlabs/creatorchat-backend/internal/clients/transcripts"
	"github.com/lumenlabs/creatorchat-backend/internal/clients/youtube"
	"github.com/lumenlabs/creatorchat-backend/internal/data/repos"
	"github.com/lumenlabs/creatorchat-backend/internal/domain"
	"github.com/lumenlabs/creatorchat-backend/internal/guard"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/apierr"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/openai"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/pinecone"
)

const (
	channelLockTTL = 15 * time.Minute

	embedBatchSize   = 64
	embedConcurrency = 4
)

// Service imports a channel's uploads: metadata upsert, transcript fetch,
// chunking, embedding, vector upsert. The whole run holds the per-channel
// lock and is replayable through the idempotency store.
type Service interface {
	Ingest(ctx context.Context, req Request) (*Response, error)
}

type service struct {
	log      *logger.Logger
	yt       youtube.Client
	source   transcripts.Source
	ai       openai.Client
	store    pinecone.VectorStore
	channels repos.ChannelRepo
	videos   repos.VideoRepo
	chunks   repos.ChunkRepo
	usage    repos.UsageRepo
	idem     *guard.Idempotency
	locks    *guard.LockManager
}

func NewService(
	baseLog *logger.Logger,
	yt youtube.Client,
	source transcripts.Source,
	ai openai.Client,
	store pinecone.VectorStore,
	channels repos.ChannelRepo,
	videos repos.VideoRepo,
	chunks repos.ChunkRepo,
	usage repos.UsageRepo,
	idem *guard.Idempotency,
	locks *guard.LockManager,
) Service {
	return &service{
		log:      baseLog.With("service", "IngestService"),
		yt:       yt,
		source:   source,
		ai:       ai,
		store:    store,
		channels: channels,
		videos:   videos,
		chunks:   chunks,
		usage:    usage,
		idem:     idem,
		locks:    locks,
	}
}

func (s *service) Ingest(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.ChannelURL) == "" && strings.TrimSpace(req.ExistingChannelID) == "" {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_REQUEST", errors.New("channelUrl or existingChannelId is required"))
	}
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_REQUEST", errors.New("Idempotency-Key header is required"))
	}
	switch req.ImportSettings.Mode {
	case youtube.ModeLatest, youtube.ModeOldest, youtube.ModeAll:
	case "":
		req.ImportSettings.Mode = youtube.ModeLatest
	default:
		return nil, apierr.New(http.StatusBadRequest, "INVALID_REQUEST", fmt.Errorf("unknown import mode %q", req.ImportSettings.Mode))
	}

	existing, started, err := s.idem.Begin(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("idempotency check: %w", err)
	}
	if !started {
		if existing.Status == guard.IdemStatusPending {
			return nil, &guard.DuplicatePendingError{Key: req.IdempotencyKey}
		}
		var replay Response
		if err := json.Unmarshal(existing.Response, &replay); err != nil {
			return nil, fmt.Errorf("replay decode: %w", err)
		}
		replay.Replayed = true
		return &replay, nil
	}

	resp, err := s.run(ctx, req)
	if err != nil {
		s.finalizeFailure(ctx, req.IdempotencyKey, err)
		return nil, err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("response encode: %w", err)
	}
	if err := s.idem.Complete(ctx, req.IdempotencyKey, guard.IdemStatusCompleted, raw); err != nil {
		s.log.Warn("Idempotency finalize failed", "key", req.IdempotencyKey, "error", err)
	}
	return resp, nil
}

// finalizeFailure settles the idempotency record on the error path. A held
// lock or an aborted caller clears the key so the same key can retry once
// the blocker is gone; real failures are recorded for replay.
func (s *service) finalizeFailure(ctx context.Context, key string, runErr error) {
	finalCtx := context.WithoutCancel(ctx)

	var held *guard.LockHeldError
	if errors.As(runErr, &held) || ctx.Err() != nil {
		if err := s.idem.Clear(finalCtx, key); err != nil {
			s.log.Warn("Idempotency clear failed", "key", key, "error", err)
		}
		return
	}

	failed := Response{Status: StatusFailed, Error: runErr.Error()}
	raw, err := json.Marshal(failed)
	if err != nil {
		return
	}
	if err := s.idem.Complete(finalCtx, key, guard.IdemStatusFailed, raw); err != nil {
		s.log.Warn("Idempotency finalize failed", "key", key, "error", err)
	}
}

func (s *service) run(ctx context.Context, req Request) (*Response, error) {
	// Resolve the platform id first (reads only), then take the lock before
	// any row is written.
	existing, info, err := s.lookupChannel(ctx, req)
	if err != nil {
		return nil, err
	}
	platformID := ""
	if existing != nil {
		platformID = existing.PlatformID
	} else {
		platformID = info.PlatformID
	}

	lockKey := "ingest:channel:" + platformID
	lockToken, acquired, err := s.locks.Acquire(ctx, lockKey, channelLockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock acquire: %w", err)
	}
	if !acquired {
		return nil, &guard.LockHeldError{Key: lockKey}
	}
	defer func() {
		if rErr := s.locks.Release(context.WithoutCancel(ctx), lockKey, lockToken); rErr != nil {
			s.log.Warn("Lock release failed", "key", lockKey, "error", rErr)
		}
	}()

	channel := existing
	if channel == nil {
		channel, err = s.channels.Upsert(ctx, &domain.Channel{
			PlatformID: info.PlatformID,
			Title:      info.Title,
			Handle:     info.Handle,
			URL:        info.URL,
		})
		if err != nil {
			return nil, fmt.Errorf("channel upsert: %w", err)
		}
	}

	limit := 0
	if req.ImportSettings.Limit != nil {
		limit = *req.ImportSettings.Limit
	}
	uploads, err := s.yt.ListUploads(ctx, channel.PlatformID, req.ImportSettings.Mode, limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	var toImport []*domain.Video
	skipped := 0
	for _, u := range uploads {
		contentType := classifyContent(u)
		if !contentTypeAllowed(contentType, req.ContentTypeFilters) {
			skipped++
			continue
		}
		toImport = append(toImport, &domain.Video{
			ChannelID:        channel.ID,
			PlatformID:       u.PlatformID,
			Title:            u.Title,
			ContentType:      contentType,
			PublishedAt:      u.PublishedAt,
			DurationSeconds:  u.DurationSeconds,
			TranscriptStatus: domain.TranscriptStatusPending,
		})
	}
	imported, err := s.videos.UpsertMany(ctx, toImport)
	if err != nil {
		return nil, fmt.Errorf("video upsert: %w", err)
	}

	chunksIngested, transcriptsMissing := 0, 0
	for _, video := range imported {
		n, err := s.ingestTranscript(ctx, channel.ID, video)
		if errors.Is(err, transcripts.ErrUnavailable) {
			transcriptsMissing++
			if sErr := s.videos.SetTranscriptStatus(ctx, video.ID, domain.TranscriptStatusMissing); sErr != nil {
				s.log.Warn("Transcript status update failed", "video_id", video.ID, "error", sErr)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("ingest video %s: %w", video.PlatformID, err)
		}
		chunksIngested += n
	}

	if req.OwnerKey != "" {
		if err := s.usage.IncrementMessages(ctx, req.OwnerKey); err != nil {
			s.log.Warn("Usage counter increment failed", "owner_key", req.OwnerKey, "error", err)
		}
	}

	return &Response{
		ChannelID:          channel.ID.String(),
		ChannelTitle:       channel.Title,
		Status:             StatusCompleted,
		VideosImported:     len(imported),
		VideosSkipped:      skipped,
		ChunksIngested:     chunksIngested,
		TranscriptsMissing: transcriptsMissing,
	}, nil
}

func (s *service) lookupChannel(ctx context.Context, req Request) (*domain.Channel, *youtube.ChannelInfo, error) {
	if id := strings.TrimSpace(req.ExistingChannelID); id != "" {
		channelID, err := uuid.Parse(id)
		if err != nil {
			return nil, nil, apierr.New(http.StatusBadRequest, "INVALID_REQUEST", fmt.Errorf("existingChannelId must be a channel id: %w", err))
		}
		channel, err := s.channels.GetByID(ctx, channelID)
		if err != nil {
			return nil, nil, fmt.Errorf("channel lookup: %w", err)
		}
		return channel, nil, nil
	}

	info, err := s.yt.ResolveChannel(ctx, req.ChannelURL)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve channel: %w", err)
	}
	return nil, info, nil
}

// ingestTranscript fetches, chunks, embeds and stores one video's
// transcript. Returns the chunk count.
func (s *service) ingestTranscript(ctx context.Context, channelID uuid.UUID, video *domain.Video) (int, error) {
	segments, err := s.source.Fetch(ctx, video.PlatformID)
	if err != nil {
		return 0, err
	}
	chunks := buildChunks(video.ID, channelID, segments)
	if len(chunks) == 0 {
		return 0, transcripts.ErrUnavailable
	}

	embeddings, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	vectors := make([]pinecone.Vector, 0, len(chunks))
	for i, c := range chunks {
		encoded, err := repos.EncodeEmbedding(embeddings[i])
		if err != nil {
			return 0, fmt.Errorf("embedding encode: %w", err)
		}
		c.Embedding = encoded
		vectors = append(vectors, pinecone.Vector{
			ID:     c.ID.String(),
			Values: embeddings[i],
			Metadata: map[string]any{
				"video_id": video.ID.String(),
			},
		})
	}

	if _, err := s.chunks.ReplaceForVideo(ctx, video.ID, chunks); err != nil {
		return 0, fmt.Errorf("chunk store: %w", err)
	}
	if err := s.store.Upsert(ctx, channelID.String(), vectors); err != nil {
		return 0, fmt.Errorf("vector upsert: %w", err)
	}
	if err := s.videos.SetTranscriptStatus(ctx, video.ID, domain.TranscriptStatusIngested); err != nil {
		s.log.Warn("Transcript status update failed", "video_id", video.ID, "error", err)
	}
	return len(chunks), nil
}

// embedChunks runs the embedding calls in bounded parallel batches.
func (s *service) embedChunks(ctx context.Context, chunks []*domain.TranscriptChunk) ([][]float32, error) {
	embeddings := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(chunks); start += embedBatchSize {
		start := start
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Text)
			}
			batch, err := s.ai.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(batch) != end-start {
				return fmt.Errorf("embedding count mismatch: got %d, want %d", len(batch), end-start)
			}
			copy(embeddings[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

func classifyContent(v youtube.VideoInfo) string {
	switch {
	case v.IsLive:
		return domain.ContentTypeLive
	case v.IsShort:
		return domain.ContentTypeShort
	default:
		return domain.ContentTypeVideo
	}
}

func contentTypeAllowed(contentType string, filters ContentTypeFilters) bool {
	switch contentType {
	case domain.ContentTypeShort:
		return filters.Shorts
	case domain.ContentTypeLive:
		return filters.Lives
	default:
		return filters.Videos
	}
}
