package model

import "time"

// 配送先住所
// 注文からはIDで参照するだけで、注文処理では変更しない。
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//宛名
	FullName string `gorm:"type:varchar(100);not null" json:"full_name"`

	//電話番号
	PhoneNumber string `gorm:"type:varchar(20);not null" json:"phone_number"`

	//番地など
	StreetAddress string `gorm:"type:varchar(200);not null" json:"street_address"`

	City       string `gorm:"type:varchar(100);not null" json:"city"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country    string `gorm:"type:varchar(100);not null" json:"country"`

	//配達メモ
	AddressNotes *string `gorm:"type:varchar(500)" json:"address_notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
