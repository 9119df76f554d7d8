package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細
// 価格は持たない。評価はいつも商品の現在価格で行う。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_cart_items_cart_product;index" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	AddedAt   time.Time `gorm:"not null" json:"added_at"`

	Product Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

// 現在価格×数量
func (ci CartItem) LineTotal() decimal.Decimal {
	return ci.Product.Price.Mul(decimal.NewFromInt(ci.Quantity))
}
