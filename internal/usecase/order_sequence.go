package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 注文を作るTxの中で呼ぶ。
// 同時に同じ番号を取った場合は orders.order_number のユニーク制約で片方が落ち、
// PlaceOrder が Tx ごとやり直す。
func AllocateOrderNumber(ctx context.Context, orders repo.OrderRepository, at time.Time) (string, error) {
	prefix := model.OrderNumberPrefix(at)
	existing, err := orders.ListOrderNumbersByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return model.NextOrderNumber(prefix, existing), nil
}
