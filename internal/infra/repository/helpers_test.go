package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQL文だけを確認するときはsqlmock
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

// テストごとに別のインメモリDB。外部キーは有効。
// コネクションを1本にして、Txの直列化をDB側に任せる。
func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())

	gormDB, err := db.Open(sqlite.Open(dsn), true)
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// テスト用のひと揃い
type fixture struct {
	db       *gorm.DB
	customer model.User
	other    model.User
	address  model.Address
	latte    model.Product
	muffin   model.Product
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seed(t *testing.T, gdb *gorm.DB) fixture {
	t.Helper()
	f := fixture{db: gdb}

	f.customer = model.User{Username: "hanako", Email: "hanako@example.com", Role: model.RoleCustomer}
	f.other = model.User{Username: "taro", Email: "taro@example.com", Role: model.RoleCustomer}
	require.NoError(t, gdb.Create(&f.customer).Error)
	require.NoError(t, gdb.Create(&f.other).Error)

	f.address = model.Address{
		UserID:        f.customer.ID,
		FullName:      "Hanako Yamada",
		PhoneNumber:   "090-0000-0000",
		StreetAddress: "1-2-3 Umeda",
		City:          "Osaka",
		PostalCode:    "530-0001",
		Country:       "JP",
	}
	require.NoError(t, gdb.Create(&f.address).Error)

	drinks := model.ProductType{Name: "Drinks"}
	require.NoError(t, gdb.Create(&drinks).Error)

	f.latte = model.Product{Name: "Latte", Description: "Steamed milk", Price: dec("10.00"), ProductTypeID: drinks.ID, IsAvailable: true}
	f.muffin = model.Product{Name: "Muffin", Description: "Blueberry", Price: dec("5.00"), ProductTypeID: drinks.ID, IsAvailable: true}
	require.NoError(t, gdb.Create(&f.latte).Error)
	require.NoError(t, gdb.Create(&f.muffin).Error)
	return f
}

// 顧客のカートに商品を入れる
func (f fixture) fillCart(t *testing.T, lines map[int64]int64) model.Cart {
	t.Helper()
	ctx := context.Background()
	carts := infraRepo.NewCartGormRepository(f.db)

	cart, err := carts.GetOrCreateByUserID(ctx, f.customer.ID, day1)
	require.NoError(t, err)
	for productID, qty := range lines {
		require.NoError(t, carts.AddQuantity(ctx, cart.ID, productID, qty, day1))
	}
	return cart
}

func (f fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}
