package redisx

import (
	"time"

	"github.com/redis/go-redis/v9"

	"app/internal/domain/model"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// リアルタイム配信のpub/subチャンネル
const (
	ChannelStockUpdate   = "events:stock_update"
	ChannelInvoiceUpdate = "events:invoice_update"
)

// ChannelFor はイベント種別から配信チャンネルを引く。不明な種別は空文字
func ChannelFor(eventType string) string {
	switch eventType {
	case model.EventTypeStockUpdate:
		return ChannelStockUpdate
	case model.EventTypeInvoiceUpdate:
		return ChannelInvoiceUpdate
	default:
		return ""
	}
}
