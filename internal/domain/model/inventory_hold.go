package model

import "time"

type HoldStatus string

const (
	HoldStatusActive   HoldStatus = "ACTIVE"
	HoldStatusReleased HoldStatus = "RELEASED"
)

// 引当の参照先種別。今は注文のみ（拡張可）。
const HoldReferenceOrder = "ORDER"

// 在庫引当（予約）
// 物理在庫は動かさず、需要だけを記録する。有効在庫の計算に使う。
// 数量は作成時に確定し、部分解放はしない（解放は行単位で一括）。
type InventoryHold struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID      int64      `gorm:"not null;index" json:"product_id"`
	Quantity       int64      `gorm:"not null" json:"quantity"`
	Reason         string     `gorm:"type:varchar(255);not null" json:"reason"`
	ReferenceType  string     `gorm:"type:varchar(50);not null;index" json:"reference_type"`
	ReferenceValue string     `gorm:"type:varchar(255);not null;index" json:"reference_value"`
	Status         HoldStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ReleasedAt     *time.Time `json:"released_at"`
	CreatedAt      time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}
