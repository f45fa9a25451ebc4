package usecase

import (
	"context"
	"encoding/json"
	"strconv"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

// 在庫が動いたら商品ごとにstockUpdateを積む。
// 配送はディスパッチャ任せ。ここで積むだけならコアのトランザクションは
// 通知チャネルの状態に引きずられない
func enqueueStockUpdate(ctx context.Context, r repo.TxRepos, productID int64, stockQuantity int64) error {
	payload, err := json.Marshal(model.StockUpdatePayload{
		ProductID:     productID,
		StockQuantity: stockQuantity,
	})
	if err != nil {
		return err
	}
	return r.Outbox().Create(ctx, model.OutboxEvent{
		EventID:   uuid.NewString(),
		EventType: model.EventTypeStockUpdate,
		Topic:     model.TopicStockUpdate,
		Key:       strconv.FormatInt(productID, 10),
		Payload:   string(payload),
		Status:    model.OutboxStatusPending,
	})
}

// 請求書が紐づいている注文の変更はinvoiceUpdateも積む
func enqueueInvoiceUpdate(ctx context.Context, r repo.TxRepos, o model.Order) error {
	if o.InvoiceID == nil {
		return nil
	}
	payload, err := json.Marshal(model.InvoiceUpdatePayload{
		InvoiceID: *o.InvoiceID,
		OrderID:   o.ID,
		Status:    string(o.Status),
	})
	if err != nil {
		return err
	}
	return r.Outbox().Create(ctx, model.OutboxEvent{
		EventID:   uuid.NewString(),
		EventType: model.EventTypeInvoiceUpdate,
		Topic:     model.TopicInvoiceUpdate,
		Key:       orderRef(o.ID),
		Payload:   string(payload),
		Status:    model.OutboxStatusPending,
	})
}
