package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var productNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func newProductUsecase(s *repoSet, cache usecase.CatalogCache) *usecase.ProductUsecase {
	return usecase.NewProductUsecase(s.products, s.tx, cache, fixedClock{t: productNow}, zap.NewNop())
}

func TestProductUsecase_ListProducts_DefaultsToAvailable(t *testing.T) {
	s := newRepoSet()
	cache := new(CatalogCacheMock)

	key := "products:type=-:category=-:all=false"
	cache.On("Get", mock.Anything, key, mock.Anything).Return(false, nil)
	cache.On("Set", mock.Anything, key, mock.Anything).Return(nil)
	s.products.On("List", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.IsAvailable != nil && *q.IsAvailable && q.ProductTypeID == nil && q.CategoryID == nil
	})).Return([]model.Product{{ID: 1, Name: "Latte", Price: dec("4.50"), IsAvailable: true}}, nil)

	uc := newProductUsecase(s, cache)
	out, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	s.products.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestProductUsecase_ListProducts_IncludeUnavailableAndFilters(t *testing.T) {
	s := newRepoSet()
	typeID := int64(2)
	catID := int64(5)

	s.products.On("List", mock.Anything, repo.ProductListQuery{ProductTypeID: &typeID, CategoryID: &catID}).
		Return([]model.Product{}, nil)

	uc := newProductUsecase(s, nil)
	_, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{
		ProductTypeID:      &typeID,
		CategoryID:         &catID,
		IncludeUnavailable: true,
	})
	require.NoError(t, err)
	s.products.AssertExpectations(t)
}

func TestProductUsecase_GetProduct_CacheHitSkipsDB(t *testing.T) {
	s := newRepoSet()
	cache := new(CatalogCacheMock)

	cache.On("Get", mock.Anything, "product:9", mock.Anything).
		Run(func(args mock.Arguments) {
			dst := args.Get(2).(*model.Product)
			*dst = model.Product{ID: 9, Name: "Espresso"}
		}).
		Return(true, nil)

	uc := newProductUsecase(s, cache)
	p, err := uc.GetProduct(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "Espresso", p.Name)

	s.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestProductUsecase_GetProduct_CacheErrorFallsBackToDB(t *testing.T) {
	s := newRepoSet()
	cache := new(CatalogCacheMock)

	cache.On("Get", mock.Anything, "product:9", mock.Anything).Return(false, errors.New("redis down"))
	cache.On("Set", mock.Anything, "product:9", mock.Anything).Return(errors.New("redis down"))
	s.products.On("FindByID", mock.Anything, int64(9)).Return(model.Product{ID: 9, Name: "Espresso"}, nil)

	uc := newProductUsecase(s, cache)
	p, err := uc.GetProduct(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
}

func TestProductUsecase_GetProduct_NotFound(t *testing.T) {
	s := newRepoSet()
	s.products.On("FindByID", mock.Anything, int64(9)).Return(model.Product{}, repo.ErrNotFound)

	uc := newProductUsecase(s, nil)
	_, err := uc.GetProduct(context.Background(), 9)
	requireHTTPStatus(t, err, http.StatusNotFound)
}

func TestProductUsecase_SearchProducts_Validation(t *testing.T) {
	s := newRepoSet()
	uc := newProductUsecase(s, nil)

	_, err := uc.SearchProducts(context.Background(), "   ")
	requireHTTPStatus(t, err, http.StatusBadRequest)

	_, err = uc.SearchProducts(context.Background(), strings.Repeat("a", 101))
	requireHTTPStatus(t, err, http.StatusBadRequest)

	s.products.On("Search", mock.Anything, "tea").Return([]model.Product{{ID: 3, Name: "Green Tea"}}, nil)
	out, err := uc.SearchProducts(context.Background(), " tea ")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestProductUsecase_AdminSetAvailability(t *testing.T) {
	s := newRepoSet()
	cache := new(CatalogCacheMock)

	s.products.On("FindByID", mock.Anything, int64(4)).Return(model.Product{ID: 4, IsAvailable: true}, nil)
	s.products.On("SetAvailability", mock.Anything, int64(4), false).Return(nil)
	s.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionSetProductAvailability &&
			l.ResourceType == model.AuditResourceProduct &&
			l.ResourceID == 4 &&
			l.BeforeJSON == `{"is_available":true}` &&
			l.AfterJSON == `{"is_available":false}` &&
			l.CreatedAt.Equal(productNow)
	})).Return(nil)
	cache.On("InvalidateAll", mock.Anything).Return(nil)

	uc := newProductUsecase(s, cache)
	p, err := uc.AdminSetAvailability(context.Background(), 1, 4, false)
	require.NoError(t, err)
	assert.False(t, p.IsAvailable)

	s.audit.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestProductUsecase_AdminDeleteProduct_InCart(t *testing.T) {
	s := newRepoSet()
	cache := new(CatalogCacheMock)

	s.products.On("FindByID", mock.Anything, int64(4)).Return(model.Product{ID: 4}, nil)
	s.products.On("InAnyCart", mock.Anything, int64(4)).Return(true, nil)

	uc := newProductUsecase(s, cache)
	err := uc.AdminDeleteProduct(context.Background(), 1, 4)

	requireHTTPStatus(t, err, http.StatusConflict)
	assert.ErrorIs(t, err, usecase.ErrProductInCart)
	s.products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "InvalidateAll", mock.Anything)
}

func TestProductUsecase_AdminDeleteProduct_InOrders(t *testing.T) {
	s := newRepoSet()

	s.products.On("FindByID", mock.Anything, int64(4)).Return(model.Product{ID: 4}, nil)
	s.products.On("InAnyCart", mock.Anything, int64(4)).Return(false, nil)
	s.orderItems.On("ExistsForProduct", mock.Anything, int64(4)).Return(true, nil)

	uc := newProductUsecase(s, nil)
	err := uc.AdminDeleteProduct(context.Background(), 1, 4)

	requireHTTPStatus(t, err, http.StatusConflict)
	assert.ErrorIs(t, err, usecase.ErrProductInOrders)
	s.products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProductUsecase_AdminDeleteProduct_ForeignKeyRace(t *testing.T) {
	s := newRepoSet()

	s.products.On("FindByID", mock.Anything, int64(4)).Return(model.Product{ID: 4}, nil)
	s.products.On("InAnyCart", mock.Anything, int64(4)).Return(false, nil)
	s.orderItems.On("ExistsForProduct", mock.Anything, int64(4)).Return(false, nil)
	s.products.On("Delete", mock.Anything, int64(4)).Return(fmt.Errorf("delete product 4: %w", repo.ErrReferenced))

	uc := newProductUsecase(s, nil)
	err := uc.AdminDeleteProduct(context.Background(), 1, 4)
	requireHTTPStatus(t, err, http.StatusConflict)
	assert.ErrorIs(t, err, usecase.ErrProductReferenced)
	assert.NotErrorIs(t, err, usecase.ErrProductInCart)
	s.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductUsecase_AdminDeleteProduct_Success(t *testing.T) {
	s := newRepoSet()
	cache := new(CatalogCacheMock)

	s.products.On("FindByID", mock.Anything, int64(4)).Return(model.Product{ID: 4, Name: "Old Blend"}, nil)
	s.products.On("InAnyCart", mock.Anything, int64(4)).Return(false, nil)
	s.orderItems.On("ExistsForProduct", mock.Anything, int64(4)).Return(false, nil)
	s.products.On("Delete", mock.Anything, int64(4)).Return(nil)
	s.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteProduct && strings.Contains(l.BeforeJSON, "Old Blend")
	})).Return(nil)
	cache.On("InvalidateAll", mock.Anything).Return(nil)

	uc := newProductUsecase(s, cache)
	require.NoError(t, uc.AdminDeleteProduct(context.Background(), 1, 4))

	s.products.AssertExpectations(t)
	s.audit.AssertExpectations(t)
	cache.AssertExpectations(t)
}
