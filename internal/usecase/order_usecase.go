package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 注文番号の衝突でTxをやり直す回数の上限
const placeOrderMaxAttempts = 3

const maxNotesLength = 500

type OrderUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
	clock     Clock
	log       *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, addresses repo.AddressRepository, clock Clock, log *zap.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, addresses: addresses, clock: clock, log: log}
}

type PlaceOrderInput struct {
	AddressID int64
	Notes     *string
}

type OrderUserOutput struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type OrderItemOutput struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID          int64             `json:"id"`
	OrderNumber string            `json:"order_number"`
	UserID      int64             `json:"user_id"`
	Status      string            `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	OrderDate   time.Time         `json:"order_date"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Notes       *string           `json:"notes,omitempty"`
	User        OrderUserOutput   `json:"user"`
	Address     *model.Address    `json:"address,omitempty"`
	Items       []OrderItemOutput `json:"items"`
}

// カートを注文に確定する。
// 住所の確認だけTxの外、それ以降（カート検証〜カートを空にする）は1つのTx。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}
	notes := normalizeNotes(in.Notes)
	if notes != nil && utf8.RuneCountInString(*notes) > maxNotesLength {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "notes must be at most 500 characters")
	}

	//address_idの存在確認＋所有チェック（他人の住所も見つからない扱い）
	addr, err := u.addresses.FindByIDAndUserID(ctx, in.AddressID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, wrapHTTPError(http.StatusNotFound, ErrAddressNotFound)
	}
	if err != nil {
		return OrderOutput{}, dbError(u.log, "find address", err)
	}

	for attempt := 1; attempt <= placeOrderMaxAttempts; attempt++ {
		var out OrderOutput
		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			o, err := u.commit(ctx, r, userID, addr.ID, notes)
			if err != nil {
				return err
			}
			out = toOrderOutput(o)
			return nil
		})
		if err == nil {
			u.log.Info("order placed",
				zap.Int64("user_id", userID),
				zap.Int64("order_id", out.ID),
				zap.String("order_number", out.OrderNumber),
				zap.String("total_amount", out.TotalAmount.StringFixed(2)),
			)
			return out, nil
		}
		if !errors.Is(err, repo.ErrDuplicateOrderNumber) {
			return OrderOutput{}, err
		}
		u.log.Warn("order number collision, retrying",
			zap.Int64("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return OrderOutput{}, wrapHTTPError(http.StatusServiceUnavailable, ErrOrderNumberExhausted)
}

// Tx内の本体。errorを返せば全部rollbackされる。
func (u *OrderUsecase) commit(ctx context.Context, r repo.TxRepos, userID, addressID int64, notes *string) (model.Order, error) {
	//カート行をロックして、同じカートの同時確定を直列にする
	cart, err := r.Carts().LockByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, wrapHTTPError(http.StatusConflict, ErrEmptyCart)
	}
	if err != nil {
		return model.Order{}, dbError(u.log, "lock cart", err)
	}

	lines, err := r.CartItems().ListWithProducts(ctx, cart.ID)
	if err != nil {
		return model.Order{}, dbError(u.log, "list cart items", err)
	}
	if len(lines) == 0 {
		return model.Order{}, wrapHTTPError(http.StatusConflict, ErrEmptyCart)
	}

	//販売可否をここで再確認し、この時点の価格で固定する
	items := make([]model.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, ci := range lines {
		if ci.Product.ID == 0 || !ci.Product.IsAvailable {
			return model.Order{}, wrapHTTPError(http.StatusConflict, &ProductUnavailableError{
				ProductID:   ci.ProductID,
				ProductName: ci.Product.Name,
			})
		}
		it := model.SnapshotCartLine(ci)
		items = append(items, it)
		total = total.Add(it.Subtotal)
	}

	now := u.clock.Now().UTC()
	number, err := AllocateOrderNumber(ctx, r.Orders(), now)
	if err != nil {
		return model.Order{}, dbError(u.log, "allocate order number", err)
	}

	orderID, err := r.Orders().Create(ctx, model.Order{
		UserID:      userID,
		OrderNumber: number,
		Status:      model.OrderStatusPending,
		TotalAmount: total,
		OrderDate:   now,
		Notes:       notes,
		AddressID:   &addressID,
	})
	if errors.Is(err, repo.ErrDuplicateOrderNumber) {
		return model.Order{}, err
	}
	if err != nil {
		return model.Order{}, dbError(u.log, "create order", err)
	}

	if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
		return model.Order{}, dbError(u.log, "create order items", err)
	}

	//カートは残して中身だけ空にする
	if err := r.CartItems().DeleteAll(ctx, cart.ID); err != nil {
		return model.Order{}, dbError(u.log, "clear cart", err)
	}
	if err := r.Carts().Touch(ctx, cart.ID, now); err != nil {
		return model.Order{}, dbError(u.log, "touch cart", err)
	}

	created, err := r.Orders().FindByID(ctx, orderID)
	if err != nil {
		return model.Order{}, dbError(u.log, "reload order", err)
	}
	return created, nil
}

// 新しい順
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByUserID(ctx, userID)
		if err != nil {
			return dbError(u.log, "list orders", err)
		}
		outs = toOrderOutputs(orders)
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// ownerUserIDがnilなら管理者として誰の注文でも返す。
func (u *OrderUsecase) GetOrder(ctx context.Context, orderID int64, ownerUserID *int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return wrapHTTPError(http.StatusNotFound, ErrOrderNotFound)
		}
		if err != nil {
			return dbError(u.log, "find order", err)
		}
		if ownerUserID != nil && o.UserID != *ownerUserID {
			//他人の注文は「存在しない扱い」にする
			return wrapHTTPError(http.StatusNotFound, ErrOrderNotFound)
		}

		out = toOrderOutput(o)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 本人の Pending / Processing の注文だけ取り消せる。
// 取り消せなかったときは false（見つからない・他人・終端はすべて同じ）。
func (u *OrderUsecase) CancelOrder(ctx context.Context, orderID int64, userID int64) (bool, error) {
	if userID <= 0 {
		return false, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return false, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var cancelled bool
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Orders().CancelIfOwnedAndOpen(ctx, orderID, userID)
		if err != nil {
			return dbError(u.log, "cancel order", err)
		}
		cancelled = ok
		return nil
	})
	if err != nil {
		return false, err
	}

	if cancelled {
		u.log.Info("order cancelled", zap.Int64("order_id", orderID), zap.Int64("user_id", userID))
	}
	return cancelled, nil
}

// 前後の空白を落とし、空ならNULL
func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	s := strings.TrimSpace(*notes)
	if s == "" {
		return nil
	}
	return &s
}

func toOrderOutputs(orders []model.Order) []OrderOutput {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs
}

func toOrderOutput(o model.Order) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}

	return OrderOutput{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		OrderDate:   o.OrderDate,
		CompletedAt: o.CompletedAt,
		Notes:       o.Notes,
		User: OrderUserOutput{
			ID:       o.User.ID,
			Username: o.User.Username,
			Email:    o.User.Email,
		},
		Address: o.Address,
		Items:   outItems,
	}
}
