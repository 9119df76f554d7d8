package usecase

import "context"

// カタログの読み取りキャッシュ。カートと注文確定では使わない。
type CatalogCache interface {
	// 見つからなければ false
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	InvalidateAll(ctx context.Context) error
}

// キャッシュ無し（REDIS_ADDR未設定時）
type NoopCatalogCache struct{}

func (NoopCatalogCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NoopCatalogCache) Set(context.Context, string, interface{}) error         { return nil }
func (NoopCatalogCache) InvalidateAll(context.Context) error                    { return nil }
