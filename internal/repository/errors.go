package repository

import "errors"

var ErrNotFound = errors.New("not found")

// orders.order_number のユニーク制約に当たった
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

// 他の行から参照されていて消せない
var ErrReferenced = errors.New("row is still referenced")
