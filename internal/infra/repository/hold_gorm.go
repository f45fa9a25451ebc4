package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type HoldGormRepository struct {
	db *gorm.DB
}

func NewHoldGormRepository(db *gorm.DB) *HoldGormRepository {
	return &HoldGormRepository{db: db}
}

// 在庫チェックはしない（有効在庫の確認は上の層で警告のみ）
func (r *HoldGormRepository) Create(ctx context.Context, hold model.InventoryHold) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&hold).Error; err != nil {
		return 0, err
	}
	return hold.ID, nil
}

// ReleaseAllForReference は対象参照のACTIVEを全件RELEASEDにする。
// 部分解放はしない。解放した行を返す（件数ログ用で、以降のロジックには使わない）
func (r *HoldGormRepository) ReleaseAllForReference(ctx context.Context, refType string, refValue string) ([]model.InventoryHold, error) {
	var holds []model.InventoryHold
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_value = ? AND status = ?",
			refType, refValue, model.HoldStatusActive).
		Find(&holds).Error
	if err != nil {
		return nil, err
	}
	if len(holds) == 0 {
		return []model.InventoryHold{}, nil
	}

	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.InventoryHold{}).
		Where("reference_type = ? AND reference_value = ? AND status = ?",
			refType, refValue, model.HoldStatusActive).
		Updates(map[string]any{
			"status":      model.HoldStatusReleased,
			"released_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	for i := range holds {
		holds[i].Status = model.HoldStatusReleased
		holds[i].ReleasedAt = &now
	}
	return holds, nil
}

func (r *HoldGormRepository) ListActiveByReference(ctx context.Context, refType string, refValue string) ([]model.InventoryHold, error) {
	var holds []model.InventoryHold
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_value = ? AND status = ?",
			refType, refValue, model.HoldStatusActive).
		Order("id asc").
		Find(&holds).Error
	if err != nil {
		return []model.InventoryHold{}, err
	}
	return holds, nil
}

// 有効在庫 = stock_quantity - この合計
func (r *HoldGormRepository) SumActiveByProduct(ctx context.Context, productID int64) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&model.InventoryHold{}).
		Where("product_id = ? AND status = ?", productID, model.HoldStatusActive).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}
