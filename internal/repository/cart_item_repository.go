package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	// 明細を商品の現在値付きで返す（Product をpreload）
	ListWithProducts(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は数量を加算（added_at は最初に入れた時刻のまま）
	AddQuantity(ctx context.Context, cartID int64, productID int64, addQty int64, at time.Time) error
	SetQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error
	Delete(ctx context.Context, cartID int64, productID int64) error
	// 明細を全部消す
	DeleteAll(ctx context.Context, cartID int64) error
}
