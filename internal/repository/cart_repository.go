package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64, at time.Time) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 行ロック付き（SELECT ... FOR UPDATE）。Tx内で使う。
	LockByUserID(ctx context.Context, userID int64) (model.Cart, error)
	Touch(ctx context.Context, cartID int64, at time.Time) error
}
