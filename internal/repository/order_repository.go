package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type OrderListFilter struct {
	UserID *int64
	Status string
	From   *time.Time
	To     *time.Time

	//カーソル（前ページ最後の注文ID）。0なら先頭から。ID降順で返す
	Cursor int64
	Limit  int
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//行ロック付き取得（FOR UPDATE）。
	//同じ注文への同時更新を直列化する。読む→判断する→書く、の前に必ず取る
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)

	Create(ctx context.Context, order model.Order) (int64, error)
	Update(ctx context.Context, order model.Order) error

	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
}
