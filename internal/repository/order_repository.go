package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 管理者用の一覧条件。From/To は order_date に対して両端を含む。
type AdminOrderListFilter struct {
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// ステータスごとの件数と合計金額
type OrderStatusAggregate struct {
	Status model.OrderStatus
	Count  int64
	Amount decimal.Decimal
}

type OrderRepository interface {
	// 明細・ユーザー・住所をpreloadして返す
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, error)

	// 番号の重複は ErrDuplicateOrderNumber
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, completedAt *time.Time) error

	// id・持ち主・取消可能な状態の3つが揃ったときだけ Cancelled にする
	CancelIfOwnedAndOpen(ctx context.Context, orderID, userID int64) (bool, error)

	// その日のprefixを持つ注文番号
	ListOrderNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)

	//集計
	AggregateByStatus(ctx context.Context) ([]OrderStatusAggregate, error)
	CountPlacedBetween(ctx context.Context, from, to time.Time) (int64, error)
	SumAmountSince(ctx context.Context, status model.OrderStatus, since time.Time) (decimal.Decimal, error)
}
