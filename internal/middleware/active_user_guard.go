package middleware

import (
	"errors"
	"net/http"

	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// トークンのユーザーがまだ存在するか確認する（削除済みなら401）。
func ActiveUserGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			rawUserID := c.Get(CtxUserIDKey)
			userID, ok := rawUserID.(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			_, err := userRepo.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			return next(c)
		}
	}
}
