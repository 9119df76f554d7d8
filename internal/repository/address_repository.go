package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//作成後はIDなどが埋まったaddressを返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//ユーザーが持つ住所一覧を返す
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	//(住所ID, 持ち主) の組で1件取得。他人の住所は ErrNotFound。
	FindByIDAndUserID(ctx context.Context, addressID, userID int64) (model.Address, error)
}
