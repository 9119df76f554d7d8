package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/search", h.search)
	e.GET("/products/types", h.types)
	e.GET("/products/categories", h.categories)
	e.GET("/products/:id", h.detail)
}

func optionalInt64Query(c echo.Context, name string) (*int64, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	x, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, false
	}
	return &x, true
}

func (h *ProductHandler) list(c echo.Context) error {
	typeID, ok := optionalInt64Query(c, "product_type_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_type_id"})
	}

	categoryID, ok := optionalInt64Query(c, "category_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid category_id"})
	}

	// include_unavailable（default false）
	includeUnavailable := false
	if v := c.QueryParam("include_unavailable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid include_unavailable"})
		}
		includeUnavailable = b
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		ProductTypeID:      typeID,
		CategoryID:         categoryID,
		IncludeUnavailable: includeUnavailable,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) search(c echo.Context) error {
	out, err := h.uc.SearchProducts(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) types(c echo.Context) error {
	out, err := h.uc.ListTypes(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) categories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}
