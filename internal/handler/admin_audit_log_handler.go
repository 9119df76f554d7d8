package handler

import (
	"net/http"
	"strconv"
	"time"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminAuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAdminAuditLogHandler(uc *usecase.AuditLogUsecase) *AdminAuditLogHandler {
	return &AdminAuditLogHandler{uc: uc}
}

func (h *AdminAuditLogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin/audit-logs")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.ActiveUserGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("", h.list)
}

func (h *AdminAuditLogHandler) list(c echo.Context) error {
	in := usecase.AuditLogListInput{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
	}

	var ok bool
	if in.ActorUserID, ok = optionalInt64Query(c, "actor_user_id"); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
	}
	if in.ResourceID, ok = optionalInt64Query(c, "resource_id"); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid resource_id"})
	}

	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		in.From = &tm
	}
	if v := c.QueryParam("to"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		in.To = &tm
	}

	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		in.Limit = n
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
