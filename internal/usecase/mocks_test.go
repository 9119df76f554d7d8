package usecase_test

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	cartItems  repo.CartItemRepository
	products   repo.ProductRepository
	auditLogs  repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) Carts() repo.CartRepository           { return r.carts }
func (r *TxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, completedAt *time.Time) error {
	args := m.Called(ctx, orderID, status, completedAt)
	return args.Error(0)
}

func (m *OrderRepoMock) CancelIfOwnedAndOpen(ctx context.Context, orderID, userID int64) (bool, error) {
	args := m.Called(ctx, orderID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) ListOrderNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	nums, _ := args.Get(0).([]string)
	return nums, args.Error(1)
}

func (m *OrderRepoMock) AggregateByStatus(ctx context.Context) ([]repo.OrderStatusAggregate, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]repo.OrderStatusAggregate)
	return rows, args.Error(1)
}

func (m *OrderRepoMock) CountPlacedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) SumAmountSince(ctx context.Context, status model.OrderStatus, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, status, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ExistsForProduct(ctx context.Context, productID int64) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64, at time.Time) (model.Cart, error) {
	args := m.Called(ctx, userID, at)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) LockByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Touch(ctx context.Context, cartID int64, at time.Time) error {
	args := m.Called(ctx, cartID, at)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListWithProducts(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) AddQuantity(ctx context.Context, cartID int64, productID int64, addQty int64, at time.Time) error {
	args := m.Called(ctx, cartID, productID, addQty, at)
	return args.Error(0)
}

func (m *CartItemRepoMock) SetQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error {
	args := m.Called(ctx, cartID, productID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) Delete(ctx context.Context, cartID int64, productID int64) error {
	args := m.Called(ctx, cartID, productID)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteAll(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) Search(ctx context.Context, term string) ([]model.Product, error) {
	args := m.Called(ctx, term)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ListTypes(ctx context.Context) ([]model.ProductType, error) {
	args := m.Called(ctx)
	ts, _ := args.Get(0).([]model.ProductType)
	return ts, args.Error(1)
}

func (m *ProductRepoMock) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]model.Category)
	return cs, args.Error(1)
}

func (m *ProductRepoMock) SetAvailability(ctx context.Context, id int64, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductRepoMock) InAnyCart(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	as, _ := args.Get(0).([]model.Address)
	return as, args.Error(1)
}

func (m *AddressRepoMock) FindByIDAndUserID(ctx context.Context, addressID, userID int64) (model.Address, error) {
	args := m.Called(ctx, addressID, userID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

type CatalogCacheMock struct{ mock.Mock }

func (m *CatalogCacheMock) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	args := m.Called(ctx, key, dst)
	return args.Bool(0), args.Error(1)
}

func (m *CatalogCacheMock) Set(ctx context.Context, key string, v interface{}) error {
	args := m.Called(ctx, key, v)
	return args.Error(0)
}

func (m *CatalogCacheMock) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// =====================
// Helpers
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// 全部のrepo mockを持つセット
type repoSet struct {
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	carts      *CartRepoMock
	cartItems  *CartItemRepoMock
	products   *ProductRepoMock
	audit      *AuditRepoMock
}

func newRepoSet() *repoSet {
	s := &repoSet{
		tx:         new(TxManagerMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		carts:      new(CartRepoMock),
		cartItems:  new(CartItemRepoMock),
		products:   new(ProductRepoMock),
		audit:      new(AuditRepoMock),
	}
	s.tx.Repos = &TxReposMock{
		orders:     s.orders,
		orderItems: s.orderItems,
		carts:      s.carts,
		cartItems:  s.cartItems,
		products:   s.products,
		auditLogs:  s.audit,
	}
	s.tx.On("WithinTx", mock.Anything).Return(nil)
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
