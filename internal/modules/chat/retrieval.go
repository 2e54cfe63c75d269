package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumenlabs/creatorchat-backend/internal/data/repos"
	"github.com/lumenlabs/creatorchat-backend/internal/domain"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/pinecone"
)

// Retriever runs the similarity search for one question, escalating to the
// looser threshold when the strict pass comes back empty. Moment questions
// never escalate: a low-confidence moment is worse than a refusal.
type Retriever struct {
	log    *logger.Logger
	store  pinecone.VectorStore
	chunks repos.ChunkRepo
	cfg    Config
}

func NewRetriever(baseLog *logger.Logger, store pinecone.VectorStore, chunks repos.ChunkRepo, cfg Config) *Retriever {
	return &Retriever{
		log:    baseLog.With("service", "Retriever"),
		store:  store,
		chunks: chunks,
		cfg:    cfg,
	}
}

// profileFor resolves the question type's retrieval shape, clamping public
// callers to smaller result sets and higher minimum thresholds.
func (r *Retriever) profileFor(qt QuestionType, isPublic bool) RetrievalProfile {
	profile, ok := r.cfg.Profiles[qt]
	if !ok {
		profile = r.cfg.Profiles[QuestionGeneral]
	}
	if !isPublic {
		return profile
	}
	if r.cfg.PublicMaxMatchCount > 0 && profile.MatchCount > r.cfg.PublicMaxMatchCount {
		profile.MatchCount = r.cfg.PublicMaxMatchCount
	}
	if floor, ok := r.cfg.PublicMinThresholds[qt]; ok {
		if profile.MinThreshold < floor {
			profile.MinThreshold = floor
		}
		if profile.PreferredThreshold < floor {
			profile.PreferredThreshold = floor
		}
	}
	return profile
}

// Retrieve embeds nothing itself; it takes the already-embedded expanded
// query. Results come back similarity-descending with Similarity populated.
func (r *Retriever) Retrieve(ctx context.Context, embedding []float32, channelID uuid.UUID, qt QuestionType, isPublic bool) ([]*domain.TranscriptChunk, error) {
	profile := r.profileFor(qt, isPublic)

	matches, err := r.store.QueryMatches(ctx, channelID.String(), embedding, profile.MatchCount, nil)
	if err != nil {
		// The database scan is slower but keeps answers flowing when the
		// index is unreachable.
		r.log.Warn("Vector store query failed, falling back to database scan", "channel_id", channelID, "error", err)
		return r.retrieveFromDatabase(ctx, embedding, channelID, qt, profile)
	}

	for _, threshold := range profile.Thresholds(qt) {
		kept := matches[:0:0]
		for _, m := range matches {
			if m.Score >= threshold {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			continue
		}
		return r.hydrate(ctx, channelID, kept)
	}
	return []*domain.TranscriptChunk{}, nil
}

func (r *Retriever) retrieveFromDatabase(ctx context.Context, embedding []float32, channelID uuid.UUID, qt QuestionType, profile RetrievalProfile) ([]*domain.TranscriptChunk, error) {
	rows, err := r.chunks.SearchBySimilarity(ctx, channelID, embedding, profile.MatchCount)
	if err != nil {
		return nil, err
	}
	for _, threshold := range profile.Thresholds(qt) {
		var kept []*domain.TranscriptChunk
		for _, c := range rows {
			if c.Similarity >= threshold {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			return kept, nil
		}
	}
	return []*domain.TranscriptChunk{}, nil
}

// hydrate loads the matched chunk rows and carries the index similarity onto
// them, preserving match order.
func (r *Retriever) hydrate(ctx context.Context, channelID uuid.UUID, matches []pinecone.VectorMatch) ([]*domain.TranscriptChunk, error) {
	ids := make([]uuid.UUID, 0, len(matches))
	scores := make(map[uuid.UUID]float64, len(matches))
	for _, m := range matches {
		id, err := uuid.Parse(m.ID)
		if err != nil {
			r.log.Warn("Skipping vector match with non-uuid id", "id", m.ID)
			continue
		}
		ids = append(ids, id)
		scores[id] = m.Score
	}
	chunks, err := r.chunks.GetByIDs(ctx, channelID, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		c.Similarity = scores[c.ID]
	}
	return chunks, nil
}
