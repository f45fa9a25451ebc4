package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

type InventoryUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewInventoryUsecase(tx repo.TransactionManager, log *zap.Logger) *InventoryUsecase {
	return &InventoryUsecase{tx: tx, log: log}
}

type AvailabilityOutput struct {
	ProductID          int64 `json:"product_id"`
	StockQuantity      int64 `json:"stock_quantity"`
	ActiveHoldQuantity int64 `json:"active_hold_quantity"`
	AvailableQuantity  int64 `json:"available_quantity"`
}

// GetAvailability は有効在庫の取得。
// 有効在庫 = stock_quantity - ACTIVE引当の合計。毎回計算する（別の正を持たない）
func (u *InventoryUsecase) GetAvailability(ctx context.Context, productID int64) (AvailabilityOutput, error) {
	if productID <= 0 {
		return AvailabilityOutput{}, errValidation("invalid product id")
	}

	var out AvailabilityOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, err := r.Inventory().FindByProductID(ctx, productID)
		if err == repo.ErrNotFound {
			return errNotFound()
		}
		if err != nil {
			return errInternal()
		}

		held, err := r.Holds().SumActiveByProduct(ctx, productID)
		if err != nil {
			return errInternal()
		}

		out = AvailabilityOutput{
			ProductID:          productID,
			StockQuantity:      inv.StockQuantity,
			ActiveHoldQuantity: held,
			AvailableQuantity:  inv.StockQuantity - held,
		}
		return nil
	})

	if err != nil {
		return AvailabilityOutput{}, err
	}
	return out, nil
}

type AdminAdjustStockInput struct {
	Delta  int64
	Reason string
}

type AdjustStockOutput struct {
	ProductID     int64 `json:"product_id"`
	StockQuantity int64 `json:"stock_quantity"`
}

// AdminAdjustStock は在庫数の手動調整（棚卸し・入荷など）。
// 調整履歴と監査ログを同じトランザクションで残し、stockUpdateも積む
func (u *InventoryUsecase) AdminAdjustStock(ctx context.Context, adminUserID int64, productID int64, in AdminAdjustStockInput) (AdjustStockOutput, error) {
	if adminUserID <= 0 {
		return AdjustStockOutput{}, errUnauthorized()
	}
	if productID <= 0 {
		return AdjustStockOutput{}, errValidation("invalid product id")
	}
	if in.Delta == 0 {
		return AdjustStockOutput{}, errValidation("delta must not be 0")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return AdjustStockOutput{}, errValidation("reason required")
	}

	var out AdjustStockOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		newQty, err := r.Inventory().AdjustStock(ctx, productID, in.Delta)
		if err != nil {
			return errInternal()
		}

		now := time.Now()
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Delta:       in.Delta,
			Reason:      strings.TrimSpace(in.Reason),
			CreatedAt:   now,
		}); err != nil {
			return errInternal()
		}

		beforeJSON := fmt.Sprintf(`{"stock_quantity":%d}`, newQty-in.Delta)
		afterJSON := fmt.Sprintf(`{"stock_quantity":%d}`, newQty)
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionAdjustStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    now,
		}); err != nil {
			return errInternal()
		}

		if err := enqueueStockUpdate(ctx, r, productID, newQty); err != nil {
			return errInternal()
		}

		if newQty < 0 {
			u.log.Warn("stock negative after manual adjustment",
				zap.Int64("product_id", productID),
				zap.Int64("stock_quantity", newQty),
			)
		}
		u.log.Info("stock adjusted",
			zap.Int64("admin_user_id", adminUserID),
			zap.Int64("product_id", productID),
			zap.Int64("delta", in.Delta),
			zap.Int64("stock_quantity", newQty),
		)

		out = AdjustStockOutput{ProductID: productID, StockQuantity: newQty}
		return nil
	})

	if err != nil {
		return AdjustStockOutput{}, err
	}
	return out, nil
}
