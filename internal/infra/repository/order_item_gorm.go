package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *OrderItemGormRepository) ExistsForProduct(ctx context.Context, productID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&n).Error
	return n > 0, err
}
