package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) FindByProductID(ctx context.Context, productID int64) (model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Inventory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

// AdjustStock はデルタを適用して適用後の数量を返す。
// 床なし。行が無ければ0からの加算として作る（UPSERT）
func (r *InventoryGormRepository) AdjustStock(ctx context.Context, productID int64, delta int64) (int64, error) {
	var newQty int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO inventory (product_id, stock_quantity, updated_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (product_id)
		DO UPDATE SET stock_quantity = inventory.stock_quantity + EXCLUDED.stock_quantity,
		              updated_at = NOW()
		RETURNING stock_quantity`,
		productID, delta,
	).Scan(&newQty).Error
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}
