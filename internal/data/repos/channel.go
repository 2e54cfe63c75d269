package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

type ChannelRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error)
	GetByPlatformID(ctx context.Context, platformID string) (*domain.Channel, error)
	Upsert(ctx context.Context, channel *domain.Channel) (*domain.Channel, error)
}

type channelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChannelRepo(db *gorm.DB, baseLog *logger.Logger) ChannelRepo {
	return &channelRepo{db: db, log: baseLog.With("repo", "ChannelRepo")}
}

func (r *channelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
	var out domain.Channel
	if err := r.db.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *channelRepo) GetByPlatformID(ctx context.Context, platformID string) (*domain.Channel, error) {
	var out domain.Channel
	if err := r.db.WithContext(ctx).First(&out, "platform_id = ?", platformID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *channelRepo) Upsert(ctx context.Context, channel *domain.Channel) (*domain.Channel, error) {
	if channel.ID == uuid.Nil {
		channel.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "handle", "url", "updated_at"}),
		}).
		Create(channel).Error
	if err != nil {
		return nil, err
	}
	return r.GetByPlatformID(ctx, channel.PlatformID)
}
