package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// 受け付ける4つの値か
func (s OrderStatus) Valid() bool {
	for _, v := range orderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Completed / Cancelled は終端
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// 終端でないステータス（本人が取り消せる状態）。Pending, Processing の順。
func OpenOrderStatuses() []OrderStatus {
	open := make([]OrderStatus, 0, len(orderStatuses))
	for _, s := range orderStatuses {
		if !s.Terminal() {
			open = append(open, s)
		}
	}
	return open
}

// 作成後に変わるのは Status と CompletedAt だけ。
// CompletedAt は Status が Completed のときだけ入っている。
type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"not null;index" json:"user_id"`
	OrderNumber string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"order_number"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	OrderDate   time.Time       `gorm:"not null;index" json:"order_date"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Notes       *string         `gorm:"type:varchar(500)" json:"notes,omitempty"`
	AddressID   *int64          `gorm:"index" json:"address_id,omitempty"`

	Items   []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	User    User        `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Address *Address    `gorm:"foreignKey:AddressID;constraint:OnDelete:SET NULL" json:"-"`
}
