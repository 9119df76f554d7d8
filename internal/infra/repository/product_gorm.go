package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("ProductType").Preload("Category")
}

// 種類・カテゴリ・販売可否で絞って、種類→名前の順で返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	tx := r.withRefs(ctx).Model(&model.Product{})

	if q.ProductTypeID != nil {
		tx = tx.Where("product_type_id = ?", *q.ProductTypeID)
	}
	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}
	if q.IsAvailable != nil {
		tx = tx.Where("is_available = ?", *q.IsAvailable)
	}

	var products []model.Product
	if err := tx.Order("product_type_id asc").Order("name asc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 名前・説明の部分一致（大文字小文字を区別しない）。販売中のみ。
func (r *ProductGormRepository) Search(ctx context.Context, term string) ([]model.Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"

	var products []model.Product
	err := r.withRefs(ctx).
		Where("is_available = ?", true).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like).
		Order("name asc").
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.withRefs(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) ListTypes(ctx context.Context) ([]model.ProductType, error) {
	var types []model.ProductType
	if err := r.db.WithContext(ctx).Order("name asc").Find(&types).Error; err != nil {
		return []model.ProductType{}, err
	}
	return types, nil
}

func (r *ProductGormRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&cats).Error; err != nil {
		return []model.Category{}, err
	}
	return cats, nil
}

// 販売可否の切り替え
func (r *ProductGormRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 物理削除。カート・注文から参照されていれば ErrReferenced。
func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return fmt.Errorf("delete product %d: %w", id, repo.ErrReferenced)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) InAnyCart(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("product_id = ?", id).
		Count(&n).Error
	return n > 0, err
}
