package repos

import (
	"context"
	"encoding/json"
	"math"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

type ChunkRepo interface {
	ReplaceForVideo(ctx context.Context, videoID uuid.UUID, chunks []*domain.TranscriptChunk) ([]*domain.TranscriptChunk, error)
	// GetByIDs returns chunks in the order of ids, dropping ids with no row.
	GetByIDs(ctx context.Context, channelID uuid.UUID, ids []uuid.UUID) ([]*domain.TranscriptChunk, error)
	// SearchBySimilarity is the database fallback used when the vector index
	// is unavailable. It scans the channel's chunks and ranks by cosine
	// similarity against the query embedding.
	SearchBySimilarity(ctx context.Context, channelID uuid.UUID, queryEmbedding []float32, limit int) ([]*domain.TranscriptChunk, error)
}

type chunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkRepo(db *gorm.DB, baseLog *logger.Logger) ChunkRepo {
	return &chunkRepo{db: db, log: baseLog.With("repo", "ChunkRepo")}
}

func (r *chunkRepo) ReplaceForVideo(ctx context.Context, videoID uuid.UUID, chunks []*domain.TranscriptChunk) ([]*domain.TranscriptChunk, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", videoID).Delete(&domain.TranscriptChunk{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		for _, c := range chunks {
			if c.ID == uuid.Nil {
				c.ID = uuid.New()
			}
		}

		// Keep batches small because Text is large
		const batchSize = 100
		return tx.CreateInBatches(chunks, batchSize).Error
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *chunkRepo) GetByIDs(ctx context.Context, channelID uuid.UUID, ids []uuid.UUID) ([]*domain.TranscriptChunk, error) {
	if len(ids) == 0 {
		return []*domain.TranscriptChunk{}, nil
	}
	var rows []*domain.TranscriptChunk
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND id IN ?", channelID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.TranscriptChunk, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}
	ordered := make([]*domain.TranscriptChunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (r *chunkRepo) SearchBySimilarity(ctx context.Context, channelID uuid.UUID, queryEmbedding []float32, limit int) ([]*domain.TranscriptChunk, error) {
	if limit <= 0 || len(queryEmbedding) == 0 {
		return []*domain.TranscriptChunk{}, nil
	}
	var rows []*domain.TranscriptChunk
	if err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	scored := rows[:0]
	for _, c := range rows {
		emb, err := DecodeEmbedding(c.Embedding)
		if err != nil || len(emb) != len(queryEmbedding) {
			continue
		}
		c.Similarity = Cosine(queryEmbedding, emb)
		scored = append(scored, c)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func EncodeEmbedding(values []float32) (datatypes.JSON, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func DecodeEmbedding(raw datatypes.JSON) ([]float32, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []float32
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
