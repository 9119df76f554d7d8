package db

import (
	"storefront/internal/config"
	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
// ユニーク制約違反は gorm.ErrDuplicatedKey に変換させる。
func Connect(cfg config.Config) (*gorm.DB, error) {
	return Open(postgres.Open(cfg.DSN()), cfg.IsProduction())
}

// Dialectorを差し替えられるようにしておく（テストではSQLite）
func Open(dialector gorm.Dialector, quiet bool) (*gorm.DB, error) {
	level := logger.Warn
	if quiet {
		level = logger.Error
	}
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
}

// 参照される側から順にテーブルを作る
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.ProductType{},
		&model.Category{},
		&model.Product{},
		&model.Address{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	)
}
