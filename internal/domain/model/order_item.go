package model

import "github.com/shopspring/decimal"

// 注文確定時点の商品名・単価を固定で持つ。後から商品が変わっても書き換えない。
type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64           `gorm:"not null;index" json:"order_id"`
	ProductID   int64           `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(100);not null" json:"product_name"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

// カート明細をそのときの商品情報でスナップショットする
func SnapshotCartLine(ci CartItem) OrderItem {
	return OrderItem{
		ProductID:   ci.ProductID,
		ProductName: ci.Product.Name,
		Quantity:    ci.Quantity,
		UnitPrice:   ci.Product.Price,
		Subtotal:    ci.LineTotal(),
	}
}
