package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// carts と cart_items の両方を扱う
type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを取得し、無ければ at の時刻で作成
// user_id のユニーク制約で同時作成でも1つに収まる
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64, at time.Time) (model.Cart, error) {
	now := at.UTC()
	newCart := model.Cart{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	db := r.db.WithContext(ctx)
	err := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&newCart).Error
	if err != nil {
		return model.Cart{}, err
	}

	// 作った/既にあった どちらでも読み直す
	var cart model.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *CartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.findByUserID(r.db.WithContext(ctx), userID)
}

// Tx内で使う。SQLiteではロック句は無視される。
func (r *CartGormRepository) LockByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.findByUserID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *CartGormRepository) findByUserID(db *gorm.DB, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// carts.updated_at を進める
func (r *CartGormRepository) Touch(ctx context.Context, cartID int64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		UpdateColumn("updated_at", at.UTC())

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カート明細を商品付きで一覧取得
func (r *CartGormRepository) ListWithProducts(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// 同一商品は数量加算（1文のupsert）
func (r *CartGormRepository) AddQuantity(ctx context.Context, cartID int64, productID int64, addQty int64, at time.Time) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	item := model.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  addQty,
		AddedAt:   at.UTC(),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			}),
		}).
		Omit(clause.Associations).
		Create(&item).Error
}

// 明細の数量を更新
func (r *CartGormRepository) SetQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		UpdateColumn("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *CartGormRepository) Delete(ctx context.Context, cartID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&model.CartItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 指定カートの明細を全削除（カート自体は残す）
func (r *CartGormRepository) DeleteAll(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
