package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

type VideoRepo interface {
	UpsertMany(ctx context.Context, videos []*domain.Video) ([]*domain.Video, error)
	GetByPlatformIDs(ctx context.Context, platformIDs []string) ([]*domain.Video, error)
	MapByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Video, error)
	SetTranscriptStatus(ctx context.Context, id uuid.UUID, status string) error
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	return &videoRepo{db: db, log: baseLog.With("repo", "VideoRepo")}
}

func (r *videoRepo) UpsertMany(ctx context.Context, videos []*domain.Video) ([]*domain.Video, error) {
	if len(videos) == 0 {
		return []*domain.Video{}, nil
	}
	for _, v := range videos {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "content_type", "published_at", "duration_seconds", "updated_at"}),
		}).
		CreateInBatches(videos, 200).Error
	if err != nil {
		return nil, err
	}
	platformIDs := make([]string, 0, len(videos))
	for _, v := range videos {
		platformIDs = append(platformIDs, v.PlatformID)
	}
	return r.GetByPlatformIDs(ctx, platformIDs)
}

func (r *videoRepo) GetByPlatformIDs(ctx context.Context, platformIDs []string) ([]*domain.Video, error) {
	var results []*domain.Video
	if len(platformIDs) == 0 {
		return results, nil
	}
	if err := r.db.WithContext(ctx).
		Where("platform_id IN ?", platformIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *videoRepo) MapByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Video, error) {
	out := make(map[uuid.UUID]*domain.Video, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var results []*domain.Video
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	for _, v := range results {
		out[v.ID] = v
	}
	return out, nil
}

func (r *videoRepo) SetTranscriptStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Video{}).
		Where("id = ?", id).
		Update("transcript_status", status).Error
}
