package model

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleAdmin    Role = "Admin"
)

// 認証側が管理するユーザー。ここでは参照だけ。
type User struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string         `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	Email     string         `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Role      Role           `gorm:"type:varchar(20);not null;default:'Customer'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
