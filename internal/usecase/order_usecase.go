package usecase

import (
	"context"
	"strconv"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// 管理者ロール。所有者でなくても注文の参照・キャンセルができる
const RoleAdmin = "ADMIN"

type OrderUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, log *zap.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, log: log}
}

type ItemInput struct {
	ProductID int64
	Quantity  int64
	UnitPrice int64
}

type CreateOrderInput struct {
	TargetDeliveryDate *time.Time
	Items              []ItemInput
}

type OrderItemOutput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

type OrderOutput struct {
	ID                 int64             `json:"id"`
	UserID             int64             `json:"user_id"`
	Status             string            `json:"status"`
	PaymentStatus      string            `json:"payment_status"`
	TargetDeliveryDate *time.Time        `json:"target_delivery_date"`
	InvoiceID          *int64            `json:"invoice_id"`
	CreatedAt          time.Time         `json:"created_at"`
	Items              []OrderItemOutput `json:"items"`
}

// 引当の参照値は注文IDの文字列表現
func orderRef(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return errValidation("items required")
	}
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if it.ProductID <= 0 {
			return errValidation("invalid product_id")
		}
		if it.Quantity <= 0 {
			return errValidation("quantity must be > 0")
		}
		if it.UnitPrice < 0 {
			return errValidation("unit_price must be >= 0")
		}
		if seen[it.ProductID] {
			return errValidation("duplicate product in items")
		}
		seen[it.ProductID] = true
	}
	return nil
}

// 有効在庫の事前チェック。足りなくても警告ログだけで止めない。
// マイナス在庫＝受注残（取り寄せ）の注文を仕様として許している
func (u *OrderUsecase) warnIfShort(ctx context.Context, r repo.TxRepos, orderID int64, it ItemInput) error {
	var stock int64
	inv, err := r.Inventory().FindByProductID(ctx, it.ProductID)
	if err == repo.ErrNotFound {
		stock = 0
	} else if err != nil {
		return err
	} else {
		stock = inv.StockQuantity
	}

	held, err := r.Holds().SumActiveByProduct(ctx, it.ProductID)
	if err != nil {
		return err
	}

	available := stock - held
	if available < it.Quantity {
		u.log.Warn("availability short, accepting as backlog",
			zap.Int64("order_id", orderID),
			zap.Int64("product_id", it.ProductID),
			zap.Int64("requested", it.Quantity),
			zap.Int64("available", available),
		)
	}
	return nil
}

// CreateOrder は注文作成。明細と同数の引当をACTIVEで作る。
// この時点で物理在庫は動かさない（動くのは出荷時）。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, errUnauthorized()
	}
	if err := validateItems(in.Items); err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := time.Now()

		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:             userID,
			Status:             model.OrderStatusPending,
			PaymentStatus:      model.PaymentStatusPending,
			TargetDeliveryDate: in.TargetDeliveryDate,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if err != nil {
			return errInternal()
		}

		items := make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, model.OrderItem{
				ProductID:         it.ProductID,
				Quantity:          it.Quantity,
				UnitPriceSnapshot: it.UnitPrice,
				CreatedAt:         now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return errInternal()
		}

		//明細1行につき引当1件
		for _, it := range in.Items {
			if err := u.warnIfShort(ctx, r, orderID, it); err != nil {
				return errInternal()
			}
			if _, err := r.Holds().Create(ctx, model.InventoryHold{
				ProductID:      it.ProductID,
				Quantity:       it.Quantity,
				Reason:         "order placement",
				ReferenceType:  model.HoldReferenceOrder,
				ReferenceValue: orderRef(orderID),
				Status:         model.HoldStatusActive,
				CreatedAt:      now,
			}); err != nil {
				return errInternal()
			}
			u.log.Info("hold created",
				zap.Int64("order_id", orderID),
				zap.Int64("product_id", it.ProductID),
				zap.Int64("quantity", it.Quantity),
			)
		}

		u.log.Info("order created",
			zap.Int64("order_id", orderID),
			zap.Int64("user_id", userID),
			zap.Int("item_count", len(in.Items)),
		)

		created := model.Order{
			ID:                 orderID,
			UserID:             userID,
			Status:             model.OrderStatusPending,
			PaymentStatus:      model.PaymentStatusPending,
			TargetDeliveryDate: in.TargetDeliveryDate,
			CreatedAt:          now,
		}
		out = toOrderOutput(created, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// GetOrder は注文詳細。他人の注文は「存在しない扱い」（管理者を除く）。
func (u *OrderUsecase) GetOrder(ctx context.Context, userID int64, role string, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, errUnauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, errValidation("invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return errNotFound()
		}
		if err != nil {
			return errInternal()
		}
		if o.UserID != userID && role != RoleAdmin {
			return errNotFound()
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return errInternal()
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

type HoldOutput struct {
	ID         int64      `json:"id"`
	ProductID  int64      `json:"product_id"`
	Quantity   int64      `json:"quantity"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	ReleasedAt *time.Time `json:"released_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ListOrderHolds は注文に紐づくACTIVE引当の一覧。所有者か管理者のみ
func (u *OrderUsecase) ListOrderHolds(ctx context.Context, userID int64, role string, orderID int64) ([]HoldOutput, error) {
	if userID <= 0 {
		return nil, errUnauthorized()
	}
	if orderID <= 0 {
		return nil, errValidation("invalid id")
	}

	var out []HoldOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return errNotFound()
		}
		if err != nil {
			return errInternal()
		}
		if o.UserID != userID && role != RoleAdmin {
			return errNotFound()
		}

		holds, err := r.Holds().ListActiveByReference(ctx, model.HoldReferenceOrder, orderRef(orderID))
		if err != nil {
			return errInternal()
		}

		out = make([]HoldOutput, 0, len(holds))
		for _, h := range holds {
			out = append(out, HoldOutput{
				ID:         h.ID,
				ProductID:  h.ProductID,
				Quantity:   h.Quantity,
				Reason:     h.Reason,
				Status:     string(h.Status),
				ReleasedAt: h.ReleasedAt,
				CreatedAt:  h.CreatedAt,
			})
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

type ListOrdersInput struct {
	//他ユーザーを指定できるのは管理者のみ
	UserID *int64
	Status string
	From   *time.Time
	To     *time.Time
	Cursor int64
	Limit  int
}

type ListOrdersOutput struct {
	Items []OrderOutput `json:"items"`
	//次ページのカーソル。0なら最後まで読んだ
	NextCursor int64 `json:"next_cursor"`
}

func (u *OrderUsecase) ListOrders(ctx context.Context, userID int64, role string, in ListOrdersInput) (ListOrdersOutput, error) {
	if userID <= 0 {
		return ListOrdersOutput{}, errUnauthorized()
	}
	if in.Limit < 0 || in.Limit > 100 {
		return ListOrdersOutput{}, errValidation("invalid limit")
	}
	limit := in.Limit
	if limit == 0 {
		limit = 50
	}
	if in.Status != "" {
		s := model.OrderStatus(in.Status)
		if _, ok := model.StatusRank(s); !ok && s != model.OrderStatusCancelled {
			return ListOrdersOutput{}, errValidation("invalid status filter")
		}
	}

	f := repo.OrderListFilter{
		UserID: in.UserID,
		Status: in.Status,
		From:   in.From,
		To:     in.To,
		Cursor: in.Cursor,
		Limit:  limit,
	}
	//一般ユーザーは自分の注文に固定
	if role != RoleAdmin {
		uid := userID
		f.UserID = &uid
	}

	var out ListOrdersOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().List(ctx, f)
		if err != nil {
			return errInternal()
		}

		out.Items = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return errInternal()
			}
			out.Items = append(out.Items, toOrderOutput(o, items))
		}
		if len(orders) == limit {
			out.NextCursor = orders[len(orders)-1].ID
		}
		return nil
	})

	if err != nil {
		return ListOrdersOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPriceSnapshot,
		})
	}

	return OrderOutput{
		ID:                 o.ID,
		UserID:             o.UserID,
		Status:             string(o.Status),
		PaymentStatus:      string(o.PaymentStatus),
		TargetDeliveryDate: o.TargetDeliveryDate,
		InvoiceID:          o.InvoiceID,
		CreatedAt:          o.CreatedAt,
		Items:              outItems,
	}
}
