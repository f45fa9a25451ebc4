package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusTesting    OrderStatus = "TESTING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"

	//キャンセルはランク外の終端。通常のステータス更新では到達できない
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

//前進のみ許可するためのランク表。Cancelledは載せない
var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusTesting:    2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

// StatusRank はランク値を返す。ランク外（CANCELLEDや不明値）は ok=false。
func StatusRank(s OrderStatus) (int, bool) {
	r, ok := statusRank[s]
	return r, ok
}

// CanAdvance は from -> to が後退でないかを判定する。
// 同ランク（同じステータス）は許可。どちらかがランク外なら false。
func CanAdvance(from, to OrderStatus) bool {
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr >= fr
}

// IsDispatched は出荷済み以降（SHIPPED/DELIVERED）かどうか。
// 出荷済みになった注文の明細は変更不可。
func IsDispatched(s OrderStatus) bool {
	r, ok := statusRank[s]
	if !ok {
		return false
	}
	return r >= statusRank[OrderStatusShipped]
}

// 支払いステータスは注文ステータスと独立。このコアでは中身を解釈しない
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

type Order struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64         `gorm:"not null;index" json:"user_id"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`

	//希望納期（任意）
	TargetDeliveryDate *time.Time `gorm:"type:date" json:"target_delivery_date"`

	//請求書が発行済みなら紐づく（請求書自体の管理は対象外）
	InvoiceID *int64 `gorm:"index" json:"invoice_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
