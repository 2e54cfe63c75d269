package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lumenlabs/creatorchat-backend/internal/data/repos"
	"github.com/lumenlabs/creatorchat-backend/internal/domain"
	"github.com/lumenlabs/creatorchat-backend/internal/guard"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/apierr"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/openai"
)

// Service runs one chat request end to end: rate limit, classify, expand,
// embed, retrieve, gate, then either refuse or complete. Stages are strictly
// sequential; each consumes the previous stage's output.
type Service interface {
	Answer(ctx context.Context, req Request) (*Response, error)
}

type service struct {
	log       *logger.Logger
	cfg       Config
	ai        openai.Client
	retriever *Retriever
	channels  repos.ChannelRepo
	videos    repos.VideoRepo
	usage     repos.UsageRepo
	limiter   *guard.RateLimiter
}

func NewService(
	baseLog *logger.Logger,
	cfg Config,
	ai openai.Client,
	retriever *Retriever,
	channels repos.ChannelRepo,
	videos repos.VideoRepo,
	usage repos.UsageRepo,
	limiter *guard.RateLimiter,
) Service {
	return &service{
		log:       baseLog.With("service", "ChatService"),
		cfg:       cfg,
		ai:        ai,
		retriever: retriever,
		channels:  channels,
		videos:    videos,
		usage:     usage,
		limiter:   limiter,
	}
}

func (s *service) Answer(ctx context.Context, req Request) (*Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_REQUEST", errors.New("query is required"))
	}
	if req.CallerIdentity.UserID == "" && req.CallerIdentity.PublicClientID == "" {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_REQUEST", errors.New("caller identity is required"))
	}
	channelID, err := uuid.Parse(strings.TrimSpace(req.ChannelScope))
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_REQUEST", fmt.Errorf("channelScope must be a channel id: %w", err))
	}

	isPublic := req.CallerIdentity.IsPublic()
	profile := s.cfg.AuthenticatedLimit
	if isPublic {
		profile = s.cfg.PublicLimit
	}
	decision := s.limiter.Check(ctx, req.CallerIdentity.Key()+":chat", profile)
	if !decision.Allowed {
		return nil, &guard.RateLimitedError{RetryAfter: decision.RetryAfter}
	}

	history := req.ConversationHistory
	if s.cfg.HistoryWindow > 0 && len(history) > s.cfg.HistoryWindow {
		history = history[len(history)-s.cfg.HistoryWindow:]
	}
	hasHistory := len(history) > 0

	qt := Classify(query, hasHistory)
	expanded := Expand(query, history, qt, s.cfg.ExpansionDepth)

	embeddings, err := s.ai.Embed(ctx, []string{expanded})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, errors.New("embedding provider returned no vector")
	}

	chunks, err := s.retriever.Retrieve(ctx, embeddings[0], channelID, qt, isPublic)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}

	creator := CreatorIdentity{}
	if channel, err := s.channels.GetByID(ctx, channelID); err == nil {
		creator.ChannelTitle = channel.Title
	} else {
		s.log.Warn("Channel lookup failed, answering without creator identity", "channel_id", channelID, "error", err)
	}

	assessment := Assess(chunks, qt, query, s.cfg)
	if !assessment.ShouldAnswer {
		resp := s.refuse(qt, creator)
		s.countMessage(ctx, req.CallerIdentity)
		return resp, nil
	}

	videoIDs := make([]uuid.UUID, 0, len(chunks))
	seenVideos := make(map[uuid.UUID]struct{}, len(chunks))
	for _, c := range chunks {
		if _, ok := seenVideos[c.VideoID]; ok {
			continue
		}
		seenVideos[c.VideoID] = struct{}{}
		videoIDs = append(videoIDs, c.VideoID)
	}
	videos, err := s.videos.MapByIDs(ctx, videoIDs)
	if err != nil {
		s.log.Warn("Video metadata lookup failed, citations will lack titles", "error", err)
		videos = map[uuid.UUID]*domain.Video{}
	}

	prompt := BuildPrompt(query, chunks, history, qt, creator, assessment.Level, videos)
	answer, err := s.ai.GenerateText(ctx, prompt, query)
	if err != nil {
		// An aborted caller must not be billed for a message.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	s.countMessage(ctx, req.CallerIdentity)

	return &Response{
		Answer:        answer,
		Citations:     BuildCitations(chunks, videos, s.cfg.MaxCitations),
		ShowCitations: ShowCitations(qt, query),
		Confidence:    assessment.Level,
		Evidence: Evidence{
			ChunksUsed:       len(chunks),
			VideosReferenced: len(videoIDs),
			Score:            assessment.WeightedScore,
		},
		IsRefusal: false,
	}, nil
}

// refuse is the designed insufficient-evidence response, not an error.
func (s *service) refuse(qt QuestionType, creator CreatorIdentity) *Response {
	msg := fmt.Sprintf("I couldn't find that covered in %s's videos.", creator.display())
	if qt == QuestionMoment {
		msg = fmt.Sprintf("I couldn't find a specific moment matching that in %s's videos.", creator.display())
	}
	return &Response{
		Answer:        msg,
		Citations:     []Citation{},
		ShowCitations: false,
		Confidence:    ConfidenceNotCovered,
		Evidence:      Evidence{},
		IsRefusal:     true,
	}
}

// countMessage is best-effort bookkeeping. The user already has their
// response; a failed increment is logged, never surfaced.
func (s *service) countMessage(ctx context.Context, identity CallerIdentity) {
	if ctx.Err() != nil {
		return
	}
	if err := s.usage.IncrementMessages(ctx, identity.Key()); err != nil {
		s.log.Warn("Usage counter increment failed", "owner_key", identity.Key(), "error", err)
	}
}
