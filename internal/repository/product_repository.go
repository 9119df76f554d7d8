package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 一覧検索。IsAvailable が nil なら販売可否で絞らない。
type ProductListQuery struct {
	ProductTypeID *int64
	CategoryID    *int64
	IsAvailable   *bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	Search(ctx context.Context, term string) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	ListTypes(ctx context.Context) ([]model.ProductType, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	SetAvailability(ctx context.Context, id int64, available bool) error
	Delete(ctx context.Context, id int64) error
	// どこかのカートに入っているか
	InAnyCart(ctx context.Context, id int64) (bool, error)
}
