package usecase

import (
	"context"
	"fmt"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// CancelOrder は注文のキャンセル。所有者か管理者のみ。
// ロールバックではなく前進専用の終端遷移。効果は履歴（出荷済みかどうか）で変わる：
//   - 出荷済み＋返品確認あり → 明細ぶん在庫を戻す
//   - 未出荷               → 引当を全解放（在庫は動いていないので戻さない）
//   - 出荷済み＋返品なし    → 在庫も引当も触らない（後続の返品受入フローで処理する想定）
func (u *OrderUsecase) CancelOrder(ctx context.Context, orderID int64, userID int64, role string, goodsReturned bool) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, errUnauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, errValidation("invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return errNotFound()
		}
		if err != nil {
			return errInternal()
		}

		if o.UserID != userID && role != RoleAdmin {
			return errUnauthorized()
		}
		if o.Status == model.OrderStatusCancelled {
			return errAlreadyCancelled()
		}
		//配達済みは現物が返ってきた確認が無いと取り消せない
		if o.Status == model.OrderStatusDelivered && !goodsReturned {
			return errReturnConfirmationRequired()
		}

		fromStatus := o.Status
		wasShipped := o.Status == model.OrderStatusShipped || o.Status == model.OrderStatusDelivered

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return errInternal()
		}

		switch {
		case wasShipped && goodsReturned:
			//出荷時に消費した在庫を返品ぶん戻す。
			//マイナスだった残高がゼロに近づくだけのこともある
			for _, it := range items {
				newQty, err := r.Inventory().AdjustStock(ctx, it.ProductID, it.Quantity)
				if err != nil {
					return errInternal()
				}
				if err := enqueueStockUpdate(ctx, r, it.ProductID, newQty); err != nil {
					return errInternal()
				}
				u.log.Info("stock restored on goods return",
					zap.Int64("order_id", orderID),
					zap.Int64("product_id", it.ProductID),
					zap.Int64("quantity", it.Quantity),
					zap.Int64("stock_quantity", newQty),
				)
			}

		case !wasShipped:
			//需要が消えるだけ。在庫は動いていない
			released, err := r.Holds().ReleaseAllForReference(ctx, model.HoldReferenceOrder, orderRef(orderID))
			if err != nil {
				return errInternal()
			}
			u.log.Info("holds released on cancellation",
				zap.Int64("order_id", orderID),
				zap.Int("released_holds", len(released)),
			)

		default:
			//wasShipped && !goodsReturned：出荷時に在庫も引当も処理済み。
			//ここでは何も動かさない
		}

		o.Status = model.OrderStatusCancelled
		o.UpdatedAt = time.Now()
		if err := r.Orders().Update(ctx, o); err != nil {
			return errInternal()
		}
		if err := enqueueInvoiceUpdate(ctx, r, o); err != nil {
			return errInternal()
		}

		//管理者によるキャンセルは監査ログにも残す
		if role == RoleAdmin && o.UserID != userID {
			beforeJSON := fmt.Sprintf(`{"status":%q}`, string(fromStatus))
			afterJSON := fmt.Sprintf(`{"status":%q,"goods_returned":%t}`, string(model.OrderStatusCancelled), goodsReturned)
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  userID,
				Action:       model.AuditActionCancelOrder,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				BeforeJSON:   beforeJSON,
				AfterJSON:    afterJSON,
				CreatedAt:    time.Now(),
			}); err != nil {
				return errInternal()
			}
		}

		u.log.Info("order cancelled",
			zap.Int64("order_id", orderID),
			zap.String("from_status", string(fromStatus)),
			zap.Bool("was_shipped", wasShipped),
			zap.Bool("goods_returned", goodsReturned),
		)

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}
