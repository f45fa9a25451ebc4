package repository

import (
	"context"

	"app/internal/domain/model"
)

// 明細は一括で消して入れ直す（部分更新はしない）
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
