package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	// 商品が注文履歴に出てくるか
	ExistsForProduct(ctx context.Context, productID int64) (bool, error)
}
