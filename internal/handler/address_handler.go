package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

type AddressCreateRequest struct {
	FullName      string  `json:"full_name" validate:"required,max=100"`
	PhoneNumber   string  `json:"phone_number" validate:"required,max=20"`
	StreetAddress string  `json:"street_address" validate:"required"`
	City          string  `json:"city" validate:"required,max=100"`
	PostalCode    string  `json:"postal_code" validate:"required,max=20"`
	Country       string  `json:"country" validate:"required,max=100"`
	AddressNotes  *string `json:"address_notes" validate:"omitempty,max=500"`
}

func (h *AddressHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/addresses")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.ActiveUserGuard(userRepo))

	g.GET("", h.list)
	g.POST("", h.create)
}

func (h *AddressHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	list, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

func (h *AddressHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddressCreateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	created, err := h.uc.Create(c.Request().Context(), userID, usecase.AddressCreateInput{
		FullName:      req.FullName,
		PhoneNumber:   req.PhoneNumber,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		AddressNotes:  req.AddressNotes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}
