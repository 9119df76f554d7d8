package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

var (
	ErrAddressNotFound      = errors.New("address not found or does not belong to user")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrInvalidQuantity      = errors.New("quantity must be greater than 0")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrOrderNotFound        = errors.New("order not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNotAvailable  = errors.New("product is not available")
	ErrProductInCart        = errors.New("cannot delete product that is in customer carts")
	ErrProductInOrders      = errors.New("cannot delete product that appears in order history")
	ErrProductReferenced    = errors.New("cannot delete product that is still referenced")
	ErrOrderNumberExhausted = errors.New("could not allocate an order number, try again")
)

// 注文確定時に販売停止になっていた商品。errors.Is(err, ErrProductNotAvailable) でも拾える。
type ProductUnavailableError struct {
	ProductID   int64
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	if e.ProductName == "" {
		return fmt.Sprintf("product %d is no longer available", e.ProductID)
	}
	return fmt.Sprintf("product '%s' is no longer available", e.ProductName)
}

func (e *ProductUnavailableError) Is(target error) bool {
	return target == ErrProductNotAvailable
}

// handlerでそのままHTTPレスポンスにする。Errがあれば errors.Is/As で辿れる。
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// errのメッセージをそのままレスポンスに使う
func wrapHTTPError(status int, err error) error {
	return &HTTPError{
		Status:  status,
		Message: err.Error(),
		Err:     err,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 想定外のDBエラー。中身はログにだけ出す。
func dbError(log *zap.Logger, op string, err error) error {
	log.Error("db error", zap.String("op", op), zap.Error(err))
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "db error",
		Err:     err,
	}
}
