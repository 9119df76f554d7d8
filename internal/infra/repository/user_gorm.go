package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	domainrepo "storefront/internal/repository"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてmiddlewareに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// IDでユーザーを1件取得（論理削除済みは見つからない扱い）
func (r *userGormRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, domainrepo.ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}
