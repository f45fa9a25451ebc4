package usecase

import (
	"context"
	"sort"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

type UpdateOrderInput struct {
	//Setで「指定あり」。Valueがnilなら納期のクリア
	TargetDeliveryDate Field[*time.Time]
	Items              Field[[]ItemInput]
	Status             Field[model.OrderStatus]
	PaymentStatus      Field[model.PaymentStatus]
}

// sameItemSet は保存済み明細と指定明細が同一集合かを判定する。
// product_idでソートして (product_id, quantity, unit_price) を突き合わせる
func sameItemSet(stored []model.OrderItem, in []ItemInput) bool {
	if len(stored) != len(in) {
		return false
	}

	a := make([]model.OrderItem, len(stored))
	copy(a, stored)
	sort.Slice(a, func(i, j int) bool { return a[i].ProductID < a[j].ProductID })

	b := make([]ItemInput, len(in))
	copy(b, in)
	sort.Slice(b, func(i, j int) bool { return b[i].ProductID < b[j].ProductID })

	for i := range a {
		if a[i].ProductID != b[i].ProductID ||
			a[i].Quantity != b[i].Quantity ||
			a[i].UnitPriceSnapshot != b[i].UnitPrice {
			return false
		}
	}
	return true
}

// UpdateOrder は注文の部分更新。ステータスは前進のみ。
// CANCELLEDへの変更はここでは受けない（返品確認が絡むのでキャンセル専用APIを使う）。
// SHIPPEDへの遷移と同じトランザクションで在庫減算と引当解放を行う。
func (u *OrderUsecase) UpdateOrder(ctx context.Context, orderID int64, in UpdateOrderInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, errValidation("invalid id")
	}
	if in.Items.Set {
		if err := validateItems(in.Items.Value); err != nil {
			return OrderOutput{}, err
		}
	}
	if in.PaymentStatus.Set && !model.ValidPaymentStatus(in.PaymentStatus.Value) {
		return OrderOutput{}, errValidation("invalid payment_status")
	}
	if in.Status.Set {
		//キャンセルは専用操作のみ。現在の状態に関係なく拒否
		if in.Status.Value == model.OrderStatusCancelled {
			return OrderOutput{}, errInvalidTransition("cancellation must use the cancel operation")
		}
		if _, ok := model.StatusRank(in.Status.Value); !ok {
			return OrderOutput{}, errInvalidTransition("unknown status")
		}
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//読む→判断する→書く。判断の前に行ロック
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return errNotFound()
		}
		if err != nil {
			return errInternal()
		}

		curRank, ok := model.StatusRank(o.Status)
		if !ok {
			//キャンセル済みは終端。引当も解放済みなので何も受け付けない
			return errInvalidTransition("order is cancelled")
		}
		fromStatus := o.Status

		if in.Status.Set {
			tRank, _ := model.StatusRank(in.Status.Value)
			if tRank < curRank {
				return errInvalidTransition("status cannot move backwards")
			}
		}

		currentItems, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return errInternal()
		}

		itemsChanged := in.Items.Set && !sameItemSet(currentItems, in.Items.Value)

		//出荷済みの明細は凍結
		if itemsChanged && model.IsDispatched(o.Status) {
			return errItemsLocked()
		}

		effectiveItems := currentItems

		//明細入れ替え：引当を解放→明細を消して入れ直す→新数量で引当し直す
		if itemsChanged {
			released, err := r.Holds().ReleaseAllForReference(ctx, model.HoldReferenceOrder, orderRef(orderID))
			if err != nil {
				return errInternal()
			}
			if err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
				return errInternal()
			}

			now := time.Now()
			newItems := make([]model.OrderItem, 0, len(in.Items.Value))
			for _, it := range in.Items.Value {
				newItems = append(newItems, model.OrderItem{
					ProductID:         it.ProductID,
					Quantity:          it.Quantity,
					UnitPriceSnapshot: it.UnitPrice,
					CreatedAt:         now,
				})
			}
			if err := r.OrderItems().CreateBulk(ctx, orderID, newItems); err != nil {
				return errInternal()
			}

			for _, it := range in.Items.Value {
				if err := u.warnIfShort(ctx, r, orderID, it); err != nil {
					return errInternal()
				}
				if _, err := r.Holds().Create(ctx, model.InventoryHold{
					ProductID:      it.ProductID,
					Quantity:       it.Quantity,
					Reason:         "order items replaced",
					ReferenceType:  model.HoldReferenceOrder,
					ReferenceValue: orderRef(orderID),
					Status:         model.HoldStatusActive,
					CreatedAt:      now,
				}); err != nil {
					return errInternal()
				}
			}

			u.log.Info("order items replaced",
				zap.Int64("order_id", orderID),
				zap.Int("released_holds", len(released)),
				zap.Int("new_items", len(newItems)),
			)
			effectiveItems = newItems
		}

		if in.TargetDeliveryDate.Set {
			o.TargetDeliveryDate = in.TargetDeliveryDate.Value
		}
		if in.PaymentStatus.Set {
			o.PaymentStatus = in.PaymentStatus.Value
		}

		//出荷フック：未出荷→SHIPPEDのときだけ。
		//明細ぶん在庫を減らし（マイナス可）、この注文の引当を全解放する。
		//すでにSHIPPEDの注文に同じ更新が来ても再減算はしない
		shippedRank, _ := model.StatusRank(model.OrderStatusShipped)
		if in.Status.Set && in.Status.Value == model.OrderStatusShipped && curRank < shippedRank {
			for _, it := range effectiveItems {
				newQty, err := r.Inventory().AdjustStock(ctx, it.ProductID, -it.Quantity)
				if err != nil {
					return errInternal()
				}
				if newQty < 0 {
					u.log.Warn("stock went negative on shipment",
						zap.Int64("order_id", orderID),
						zap.Int64("product_id", it.ProductID),
						zap.Int64("stock_quantity", newQty),
					)
				}
				if err := enqueueStockUpdate(ctx, r, it.ProductID, newQty); err != nil {
					return errInternal()
				}
			}

			released, err := r.Holds().ReleaseAllForReference(ctx, model.HoldReferenceOrder, orderRef(orderID))
			if err != nil {
				return errInternal()
			}
			u.log.Info("holds released on shipment",
				zap.Int64("order_id", orderID),
				zap.Int("released_holds", len(released)),
			)
		}

		if in.Status.Set {
			o.Status = in.Status.Value
		}
		o.UpdatedAt = time.Now()

		if err := r.Orders().Update(ctx, o); err != nil {
			return errInternal()
		}
		if err := enqueueInvoiceUpdate(ctx, r, o); err != nil {
			return errInternal()
		}

		u.log.Info("order updated",
			zap.Int64("order_id", orderID),
			zap.String("from_status", string(fromStatus)),
			zap.String("to_status", string(o.Status)),
			zap.Bool("items_changed", itemsChanged),
		)

		out = toOrderOutput(o, effectiveItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}
