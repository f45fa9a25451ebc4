package model

import "time"

// 在庫は1商品1行（倉庫分割はしない）。
// マイナス在庫は受注残（取り寄せ販売）として許容する。床なし。
type Inventory struct {
	ProductID     int64     `gorm:"primaryKey" json:"product_id"`
	StockQuantity int64     `gorm:"not null" json:"stock_quantity"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Inventory) TableName() string {
	return "inventory"
}
