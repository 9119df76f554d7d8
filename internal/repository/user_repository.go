package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// ユーザーは認証側の持ち物。ここでは存在確認にだけ使う。
type UserRepository interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}
