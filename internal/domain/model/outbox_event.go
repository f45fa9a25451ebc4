package model

import "time"

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusDispatched OutboxStatus = "DISPATCHED"
)

const (
	EventTypeStockUpdate   = "stockUpdate"
	EventTypeInvoiceUpdate = "invoiceUpdate"
)

const (
	TopicStockUpdate   = "inventory.stock.updated"
	TopicInvoiceUpdate = "order.invoice.updated"
)

// 送信待ちイベント（outbox）
// 在庫・注文を更新したトランザクションの中で積み、配送は別プロセスの
// ディスパッチャが行う。at-least-once。配送失敗してもコアの処理は失敗しない。
type OutboxEvent struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string `gorm:"type:varchar(36);not null;uniqueIndex" json:"event_id"`
	EventType string `gorm:"type:varchar(50);not null" json:"event_type"`
	Topic     string `gorm:"type:varchar(100);not null" json:"topic"`

	//パーティションキー（product_id / order_id）
	Key     string `gorm:"type:varchar(100);not null" json:"key"`
	Payload string `gorm:"type:text;not null" json:"payload"`

	Status       OutboxStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	DispatchedAt *time.Time   `json:"dispatched_at"`
	CreatedAt    time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
}

// stockUpdateイベントの中身
type StockUpdatePayload struct {
	ProductID     int64 `json:"product_id"`
	StockQuantity int64 `json:"stock_quantity"`
}

// invoiceUpdateイベントの中身
type InvoiceUpdatePayload struct {
	InvoiceID int64  `json:"invoice_id"`
	OrderID   int64  `json:"order_id"`
	Status    string `json:"status"`
}
