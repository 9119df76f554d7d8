package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細・ユーザー・住所付きで読む
func (r *OrderGormRepository) hydrated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id asc") }).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Address")
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.hydrated(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	var items []model.Order
	err := r.hydrated(ctx).
		Where("user_id = ?", userID).
		Order("order_date desc").
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, error) {
	q := r.hydrated(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み（両端を含む）
	if f.From != nil {
		q = q.Where("order_date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("order_date <= ?", f.To.UTC())
	}

	var items []model.Order
	if err := q.Order("order_date desc").Order("id desc").Find(&items).Error; err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&order).Error
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", repo.ErrDuplicateOrderNumber, order.OrderNumber)
		}
		return 0, err
	}
	return order.ID, nil
}

// completedAt が nil なら completed_at は NULL に戻す
func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, completedAt *time.Time) error {
	values := map[string]interface{}{"status": status, "completed_at": nil}
	if completedAt != nil {
		values["completed_at"] = completedAt.UTC()
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(values)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 条件付きUPDATE 1本で判定と更新を同時に行う
func (r *OrderGormRepository) CancelIfOwnedAndOpen(ctx context.Context, orderID, userID int64) (bool, error) {
	var open []string
	for _, st := range model.OpenOrderStatuses() {
		open = append(open, string(st))
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND user_id = ? AND status IN ?", orderID, userID, open).
		Update("status", model.OrderStatusCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OrderGormRepository) ListOrderNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Pluck("order_number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

func (r *OrderGormRepository) AggregateByStatus(ctx context.Context) ([]repo.OrderStatusAggregate, error) {
	var rows []repo.OrderStatusAggregate
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// [from, to) に入った注文数
func (r *OrderGormRepository) CountPlacedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_date >= ? AND order_date < ?", from.UTC(), to.UTC()).
		Count(&n).Error
	return n, err
}

func (r *OrderGormRepository) SumAmountSince(ctx context.Context, status model.OrderStatus, since time.Time) (decimal.Decimal, error) {
	var row struct {
		Amount decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS amount").
		Where("status = ? AND order_date >= ?", status, since.UTC()).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Amount, nil
}
