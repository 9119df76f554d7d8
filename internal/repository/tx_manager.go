package repository

import "context"

// 同じTxに乗ったリポジトリ一式。WithinTx の fn の中でだけ使う。
type TxRepos interface {
	Carts() CartRepository
	CartItems() CartItemRepository
	Products() ProductRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	AuditLogs() AuditLogRepository
}

// fn が error を返せば rollback、nil なら commit。
// ctx がキャンセルされた場合も rollback される。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
