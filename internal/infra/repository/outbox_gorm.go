package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutboxGormRepository struct {
	db *gorm.DB
}

func NewOutboxGormRepository(db *gorm.DB) *OutboxGormRepository {
	return &OutboxGormRepository{db: db}
}

func (r *OutboxGormRepository) Create(ctx context.Context, ev model.OutboxEvent) error {
	if err := r.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return err
	}
	return nil
}

// ClaimPending はPENDINGをID昇順で最大limit件ロックして返す。
// SKIP LOCKEDなのでディスパッチャが複数いても同じ行は掴まない
func (r *OutboxGormRepository) ClaimPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var evs []model.OutboxEvent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", model.OutboxStatusPending).
		Order("id asc").
		Limit(limit).
		Find(&evs).Error
	if err != nil {
		return []model.OutboxEvent{}, err
	}
	return evs, nil
}

func (r *OutboxGormRepository) MarkDispatched(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.OutboxEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":        model.OutboxStatusDispatched,
			"dispatched_at": at,
		}).Error
}
