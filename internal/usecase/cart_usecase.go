package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartUsecase は /cart の業務ロジックです。
// 金額はいつも商品の現在価格で計算する（スナップショットは注文確定時だけ）。
type CartUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	log   *zap.Logger
}

func NewCartUsecase(tx repo.TransactionManager, clock Clock, log *zap.Logger) *CartUsecase {
	return &CartUsecase{tx: tx, clock: clock, log: log}
}

type CartItemOutput struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	IsAvailable bool            `json:"is_available"`
	AddedAt     time.Time       `json:"added_at"`
}

type CartOutput struct {
	CartID      int64            `json:"cart_id"`
	UserID      int64            `json:"user_id"`
	Items       []CartItemOutput `json:"items"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	ItemCount   int64            `json:"item_count"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type CartSummary struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int64           `json:"item_count"`
}

type AddCartItemInput struct {
	ProductID int64
	Quantity  int64
}

// 明細の合計金額（現在価格）と数量の合計
func ValueCartLines(lines []model.CartItem) (decimal.Decimal, int64) {
	total := decimal.Zero
	var count int64
	for _, ci := range lines {
		total = total.Add(ci.LineTotal())
		count += ci.Quantity
	}
	return total, count
}

// カート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID, u.clock.Now())
		if err != nil {
			return dbError(u.log, "get or create cart", err)
		}
		out, err = u.buildCartOutput(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// カートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartItemInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity <= 0 {
		return CartOutput{}, wrapHTTPError(http.StatusBadRequest, ErrInvalidQuantity)
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 商品チェック（販売中のみ）
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return wrapHTTPError(http.StatusNotFound, ErrProductNotFound)
		}
		if err != nil {
			return dbError(u.log, "find product", err)
		}
		if !p.IsAvailable {
			return wrapHTTPError(http.StatusConflict, ErrProductNotAvailable)
		}

		now := u.clock.Now()
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID, now)
		if err != nil {
			return dbError(u.log, "get or create cart", err)
		}

		if err := r.CartItems().AddQuantity(ctx, cart.ID, in.ProductID, in.Quantity, now); err != nil {
			return dbError(u.log, "add cart item", err)
		}

		cart, err = u.touch(ctx, r, cart)
		if err != nil {
			return err
		}
		out, err = u.buildCartOutput(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 数量変更。0以下なら明細を消す。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := u.findCart(ctx, r, userID)
		if err != nil {
			return err
		}

		if qty <= 0 {
			err = r.CartItems().Delete(ctx, cart.ID, productID)
		} else {
			err = r.CartItems().SetQuantity(ctx, cart.ID, productID, qty)
		}
		if errors.Is(err, repo.ErrNotFound) {
			return wrapHTTPError(http.StatusNotFound, ErrCartItemNotFound)
		}
		if err != nil {
			return dbError(u.log, "update cart item", err)
		}

		cart, err = u.touch(ctx, r, cart)
		if err != nil {
			return err
		}
		out, err = u.buildCartOutput(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 明細削除
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := u.findCart(ctx, r, userID)
		if err != nil {
			return err
		}

		err = r.CartItems().Delete(ctx, cart.ID, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return wrapHTTPError(http.StatusNotFound, ErrCartItemNotFound)
		}
		if err != nil {
			return dbError(u.log, "delete cart item", err)
		}

		cart, err = u.touch(ctx, r, cart)
		if err != nil {
			return err
		}
		out, err = u.buildCartOutput(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 明細を全部消す（カートは残す）
func (u *CartUsecase) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := u.findCart(ctx, r, userID)
		if err != nil {
			return err
		}
		if err := r.CartItems().DeleteAll(ctx, cart.ID); err != nil {
			return dbError(u.log, "clear cart", err)
		}
		_, err = u.touch(ctx, r, cart)
		return err
	})
}

// 合計金額と点数。カートが無ければどちらも0。
func (u *CartUsecase) Summary(ctx context.Context, userID int64) (CartSummary, error) {
	if userID <= 0 {
		return CartSummary{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	sum := CartSummary{TotalAmount: decimal.Zero}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return dbError(u.log, "find cart", err)
		}

		lines, err := r.CartItems().ListWithProducts(ctx, cart.ID)
		if err != nil {
			return dbError(u.log, "list cart items", err)
		}
		sum.TotalAmount, sum.ItemCount = ValueCartLines(lines)
		return nil
	})
	if err != nil {
		return CartSummary{}, err
	}
	return sum, nil
}

func (u *CartUsecase) findCart(ctx context.Context, r repo.TxRepos, userID int64) (model.Cart, error) {
	cart, err := r.Carts().FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, wrapHTTPError(http.StatusNotFound, ErrCartNotFound)
	}
	if err != nil {
		return model.Cart{}, dbError(u.log, "find cart", err)
	}
	return cart, nil
}

// 変更のたびに updated_at を進める
func (u *CartUsecase) touch(ctx context.Context, r repo.TxRepos, cart model.Cart) (model.Cart, error) {
	now := u.clock.Now().UTC()
	if err := r.Carts().Touch(ctx, cart.ID, now); err != nil {
		return model.Cart{}, dbError(u.log, "touch cart", err)
	}
	cart.UpdatedAt = now
	return cart, nil
}

func (u *CartUsecase) buildCartOutput(ctx context.Context, r repo.TxRepos, cart model.Cart) (CartOutput, error) {
	lines, err := r.CartItems().ListWithProducts(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, dbError(u.log, "list cart items", err)
	}

	items := make([]CartItemOutput, 0, len(lines))
	for _, ci := range lines {
		items = append(items, CartItemOutput{
			ProductID:   ci.ProductID,
			ProductName: ci.Product.Name,
			ImageURL:    ci.Product.ImageURL,
			Price:       ci.Product.Price,
			Quantity:    ci.Quantity,
			Subtotal:    ci.LineTotal(),
			IsAvailable: ci.Product.IsAvailable,
			AddedAt:     ci.AddedAt,
		})
	}
	total, count := ValueCartLines(lines)

	return CartOutput{
		CartID:      cart.ID,
		UserID:      cart.UserID,
		Items:       items,
		TotalAmount: total,
		ItemCount:   count,
		UpdatedAt:   cart.UpdatedAt,
	}, nil
}
