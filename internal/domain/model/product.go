package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"type:varchar(100);not null" json:"name"`
	Description   string          `gorm:"type:varchar(500)" json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	ProductTypeID int64           `gorm:"not null;index" json:"product_type_id"`
	CategoryID    *int64          `gorm:"index" json:"category_id,omitempty"`
	ImageURL      string          `gorm:"type:varchar(255)" json:"image_url"`
	IsAvailable   bool            `gorm:"not null;default:true" json:"is_available"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`

	ProductType *ProductType `gorm:"foreignKey:ProductTypeID;constraint:OnDelete:RESTRICT" json:"product_type,omitempty"`
	Category    *Category    `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// 商品の種類（ケーキ、焼き菓子など）
type ProductType struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
}

type Category struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:varchar(200)" json:"description"`
}
