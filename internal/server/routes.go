package server

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlers はルーティングに載せるハンドラ一式
type Handlers struct {
	Products      *handler.ProductHandler
	AdminProducts *handler.AdminProductHandler
	Cart          *handler.CartHandler
	Addresses     *handler.AddressHandler
	Orders        *handler.OrderHandler
	AdminOrders   *handler.AdminOrderHandler
	AuditLogs     *handler.AdminAuditLogHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.SuccessResponse{Message: "ok"})
	})

	//公開
	h.Products.RegisterRoutes(e)

	//ログイン必須
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.Addresses.RegisterRoutes(e, cfg, userRepo)
	h.Orders.RegisterRoutes(e, cfg, userRepo)

	//管理者
	h.AdminProducts.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrders.RegisterRoutes(e, cfg, userRepo)
	h.AuditLogs.RegisterRoutes(e, cfg, userRepo)
}
