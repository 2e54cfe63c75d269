package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
	"github.com/lumenlabs/creatorchat-backend/internal/guard"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/apierr"
)

type fakeAI struct {
	embedCalls    int
	generateCalls int
	answer        string
	generateErr   error
}

func (f *fakeAI) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	f.embedCalls++
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeAI) GenerateText(ctx context.Context, _ string, _ string) (string, error) {
	f.generateCalls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.answer, nil
}

type fakeChannelRepo struct {
	channel *domain.Channel
}

func (f *fakeChannelRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Channel, error) {
	if f.channel == nil || f.channel.ID != id {
		return nil, errors.New("channel not found")
	}
	return f.channel, nil
}

func (f *fakeChannelRepo) GetByPlatformID(context.Context, string) (*domain.Channel, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChannelRepo) Upsert(_ context.Context, c *domain.Channel) (*domain.Channel, error) {
	f.channel = c
	return c, nil
}

type fakeVideoRepo struct {
	videos map[uuid.UUID]*domain.Video
}

func (f *fakeVideoRepo) UpsertMany(_ context.Context, videos []*domain.Video) ([]*domain.Video, error) {
	for _, v := range videos {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		f.videos[v.ID] = v
	}
	return videos, nil
}

func (f *fakeVideoRepo) GetByPlatformIDs(context.Context, []string) ([]*domain.Video, error) {
	return nil, nil
}

func (f *fakeVideoRepo) MapByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Video, error) {
	out := make(map[uuid.UUID]*domain.Video, len(ids))
	for _, id := range ids {
		if v, ok := f.videos[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (f *fakeVideoRepo) SetTranscriptStatus(_ context.Context, id uuid.UUID, status string) error {
	if v, ok := f.videos[id]; ok {
		v.TranscriptStatus = status
	}
	return nil
}

type fakeUsageRepo struct {
	increments []string
}

func (f *fakeUsageRepo) IncrementMessages(_ context.Context, ownerKey string) error {
	f.increments = append(f.increments, ownerKey)
	return nil
}

func (f *fakeUsageRepo) GetDay(context.Context, string, string) (*domain.UsageCounter, error) {
	return nil, errors.New("not implemented")
}

type pipelineFixture struct {
	svc       Service
	ai        *fakeAI
	usage     *fakeUsageRepo
	store     *fakeVectorStore
	chunks    *fakeChunkRepo
	videos    *fakeVideoRepo
	channelID uuid.UUID
	kvStore   *guard.MemoryStore
}

func newPipelineFixture(t *testing.T, cfg Config) *pipelineFixture {
	t.Helper()
	log := chatTestLogger(t)
	channelID := uuid.New()

	ai := &fakeAI{answer: "She covers that around the two minute mark."}
	store := &fakeVectorStore{}
	chunks := &fakeChunkRepo{byID: map[uuid.UUID]*domain.TranscriptChunk{}}
	videos := &fakeVideoRepo{videos: map[uuid.UUID]*domain.Video{}}
	channels := &fakeChannelRepo{channel: &domain.Channel{ID: channelID, Title: "Maya on Money"}}
	usage := &fakeUsageRepo{}

	kv := guard.NewMemoryStore(time.Minute)
	t.Cleanup(kv.Close)
	limiter := guard.NewRateLimiter(kv, log)

	retriever := NewRetriever(log, store, chunks, cfg)
	svc := NewService(log, cfg, ai, retriever, channels, videos, usage, limiter)
	return &pipelineFixture{
		svc:       svc,
		ai:        ai,
		usage:     usage,
		store:     store,
		chunks:    chunks,
		videos:    videos,
		channelID: channelID,
		kvStore:   kv,
	}
}

// seedScoredChunk registers one chunk with its video and returns the vector
// match the fake index will serve.
func (fx *pipelineFixture) seedScoredChunk(score float64, withTimestamps bool) {
	video := &domain.Video{ID: uuid.New(), ChannelID: fx.channelID, Title: "Pricing deep dive"}
	fx.videos.videos[video.ID] = video
	c := &domain.TranscriptChunk{
		ID:        uuid.New(),
		VideoID:   video.ID,
		ChannelID: fx.channelID,
		Text:      "We priced the course at ninety dollars after the beta.",
	}
	if withTimestamps {
		start, end := 120.0, 150.0
		c.StartTime, c.EndTime = &start, &end
	}
	fx.chunks.byID[c.ID] = c
	fx.store.matches = append(fx.store.matches, fakeMatch(c.ID, score))
}

func TestAnswerMomentWithStrongMatch(t *testing.T) {
	fx := newPipelineFixture(t, DefaultConfig())
	fx.seedScoredChunk(0.5, true)

	resp, err := fx.svc.Answer(context.Background(), Request{
		Query:          "Where did she talk about pricing?",
		ChannelScope:   fx.channelID.String(),
		CallerIdentity: CallerIdentity{UserID: "user-1"},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.IsRefusal {
		t.Fatal("expected an answer, got a refusal")
	}
	if resp.Confidence != ConfidenceHigh {
		t.Fatalf("confidence = %q, want high", resp.Confidence)
	}
	if len(resp.Citations) != 1 {
		t.Fatalf("got %d citations, want 1", len(resp.Citations))
	}
	if !resp.Citations[0].HasTimestamp || resp.Citations[0].Timestamp == "" {
		t.Fatalf("moment citation must carry a timestamp: %+v", resp.Citations[0])
	}
	if resp.Evidence.ChunksUsed != 1 || resp.Evidence.VideosReferenced != 1 {
		t.Fatalf("evidence = %+v", resp.Evidence)
	}
	if fx.ai.generateCalls != 1 {
		t.Fatalf("generate calls = %d, want 1", fx.ai.generateCalls)
	}
	if len(fx.usage.increments) != 1 {
		t.Fatalf("usage increments = %d, want 1", len(fx.usage.increments))
	}
}

func TestAnswerMomentWithoutTimestampsRefuses(t *testing.T) {
	fx := newPipelineFixture(t, DefaultConfig())
	fx.seedScoredChunk(0.9, false)
	fx.seedScoredChunk(0.8, false)

	resp, err := fx.svc.Answer(context.Background(), Request{
		Query:          "Where did she talk about pricing?",
		ChannelScope:   fx.channelID.String(),
		CallerIdentity: CallerIdentity{UserID: "user-1"},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !resp.IsRefusal {
		t.Fatal("expected forced refusal when no chunk carries timestamps")
	}
	if resp.Confidence != ConfidenceNotCovered {
		t.Fatalf("confidence = %q, want not_covered", resp.Confidence)
	}
	if fx.ai.generateCalls != 0 {
		t.Fatal("refusal must short-circuit before the completion call")
	}
}

func TestAnswerRefusalPairsWithNotCovered(t *testing.T) {
	fx := newPipelineFixture(t, DefaultConfig())
	// No seeded chunks: retrieval comes back empty.
	resp, err := fx.svc.Answer(context.Background(), Request{
		Query:          "how does she think about pricing experiments in practice",
		ChannelScope:   fx.channelID.String(),
		CallerIdentity: CallerIdentity{UserID: "user-1"},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.IsRefusal != (resp.Confidence == ConfidenceNotCovered) {
		t.Fatalf("isRefusal %v inconsistent with confidence %q", resp.IsRefusal, resp.Confidence)
	}
	if !resp.IsRefusal {
		t.Fatal("empty retrieval should refuse")
	}
}

func TestAnswerRejectsEmptyQuery(t *testing.T) {
	fx := newPipelineFixture(t, DefaultConfig())
	_, err := fx.svc.Answer(context.Background(), Request{
		Query:          "   ",
		ChannelScope:   fx.channelID.String(),
		CallerIdentity: CallerIdentity{UserID: "user-1"},
	})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != 400 {
		t.Fatalf("err = %v, want 400 input error", err)
	}
	if len(fx.usage.increments) != 0 {
		t.Fatal("input errors must have no side effects")
	}
}

func TestAnswerRateLimitsPublicCallers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PublicLimit = guard.LimitProfile{Limit: 1, Window: 10 * time.Minute}
	fx := newPipelineFixture(t, cfg)
	fx.seedScoredChunk(0.5, true)

	req := Request{
		Query:          "Where did she talk about pricing?",
		ChannelScope:   fx.channelID.String(),
		CallerIdentity: CallerIdentity{PublicClientID: "anon-7"},
	}
	if _, err := fx.svc.Answer(context.Background(), req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := fx.svc.Answer(context.Background(), req)
	var limited *guard.RateLimitedError
	if !errors.As(err, &limited) {
		t.Fatalf("err = %v, want RateLimitedError", err)
	}
	if limited.RetryAfterSeconds() < 1 {
		t.Fatalf("retryAfterSeconds = %d, want >= 1", limited.RetryAfterSeconds())
	}
}

func TestAnswerSkipsUsageOnCancellation(t *testing.T) {
	fx := newPipelineFixture(t, DefaultConfig())
	fx.seedScoredChunk(0.5, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fx.svc.Answer(ctx, Request{
		Query:          "Where did she talk about pricing?",
		ChannelScope:   fx.channelID.String(),
		CallerIdentity: CallerIdentity{UserID: "user-1"},
	})
	if err == nil {
		t.Fatal("cancelled request should fail")
	}
	if len(fx.usage.increments) != 0 {
		t.Fatal("aborted request must not count against the quota")
	}
}
