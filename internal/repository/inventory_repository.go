package repository

import (
	"app/internal/domain/model"
	"context"
)

type InventoryRepository interface {
	// 在庫行の取得（無ければ ErrNotFound）
	FindByProductID(ctx context.Context, productID int64) (model.Inventory, error)

	// 符号付きデルタを適用して適用後の数量を返す。
	// 床なし（マイナス在庫＝受注残を許容）。行が無ければ0からの加算として作る
	AdjustStock(ctx context.Context, productID int64, delta int64) (int64, error)

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
