package repos

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

type UsageRepo interface {
	IncrementMessages(ctx context.Context, ownerKey string) error
	GetDay(ctx context.Context, ownerKey, day string) (*domain.UsageCounter, error)
}

type usageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageRepo(db *gorm.DB, baseLog *logger.Logger) UsageRepo {
	return &usageRepo{db: db, log: baseLog.With("repo", "UsageRepo")}
}

func (r *usageRepo) IncrementMessages(ctx context.Context, ownerKey string) error {
	now := time.Now().UTC()
	row := &domain.UsageCounter{
		OwnerKey:  ownerKey,
		Day:       now.Format("2006-01-02"),
		Messages:  1,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_key"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"messages":   gorm.Expr("usage_counter.messages + 1"),
				"updated_at": now,
			}),
		}).
		Create(row).Error
}

func (r *usageRepo) GetDay(ctx context.Context, ownerKey, day string) (*domain.UsageCounter, error) {
	var out domain.UsageCounter
	if err := r.db.WithContext(ctx).
		First(&out, "owner_key = ? AND day = ?", ownerKey, day).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
