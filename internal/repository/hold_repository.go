package repository

import (
	"context"

	"app/internal/domain/model"
)

// 在庫引当の保存・解放の約束。
// ここでは有効在庫のチェックはしない（チェックは1つ上の層で警告のみ）。
// 引当が在庫不足でも拒否しないのは取り寄せ販売を許すための仕様。
type HoldRepository interface {
	Create(ctx context.Context, hold model.InventoryHold) (int64, error)

	// 対象参照のACTIVEを全件RELEASEDにして解放時刻を入れる。
	// 解放した行を返す（ログ・件数用）
	ReleaseAllForReference(ctx context.Context, refType string, refValue string) ([]model.InventoryHold, error)

	ListActiveByReference(ctx context.Context, refType string, refValue string) ([]model.InventoryHold, error)

	// 商品のACTIVE引当数量の合計。有効在庫 = stock - この値
	SumActiveByProduct(ctx context.Context, productID int64) (int64, error)
}
