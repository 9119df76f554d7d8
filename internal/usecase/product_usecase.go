package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

type ProductUsecase struct {
	products repo.ProductRepository
	tx       repo.TransactionManager
	cache    CatalogCache
	clock    Clock
	log      *zap.Logger
}

// DI
func NewProductUsecase(
	products repo.ProductRepository,
	tx repo.TransactionManager,
	cache CatalogCache,
	clock Clock,
	log *zap.Logger,
) *ProductUsecase {
	if cache == nil {
		cache = NoopCatalogCache{}
	}
	return &ProductUsecase{
		products: products,
		tx:       tx,
		cache:    cache,
		clock:    clock,
		log:      log,
	}
}

// GET /productsの入力DTO
// IncludeUnavailable が false なら販売中だけ。
type ListProductsInput struct {
	ProductTypeID      *int64
	CategoryID         *int64
	IncludeUnavailable bool
}

func (in ListProductsInput) cacheKey() string {
	return fmt.Sprintf("products:type=%s:category=%s:all=%t",
		optionalID(in.ProductTypeID), optionalID(in.CategoryID), in.IncludeUnavailable)
}

func optionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) ([]model.Product, error) {
	var out []model.Product
	if u.fromCache(ctx, in.cacheKey(), &out) {
		return out, nil
	}

	q := repo.ProductListQuery{
		ProductTypeID: in.ProductTypeID,
		CategoryID:    in.CategoryID,
	}
	if !in.IncludeUnavailable {
		available := true
		q.IsAvailable = &available
	}

	out, err := u.products.List(ctx, q)
	if err != nil {
		return []model.Product{}, dbError(u.log, "list products", err)
	}
	u.toCache(ctx, in.cacheKey(), out)
	return out, nil
}

// 検索はキャッシュしない
func (u *ProductUsecase) SearchProducts(ctx context.Context, term string) ([]model.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.Product{}, NewHTTPError(http.StatusBadRequest, "q is required")
	}
	if len(term) > 100 {
		return []model.Product{}, NewHTTPError(http.StatusBadRequest, "q is too long")
	}

	out, err := u.products.Search(ctx, term)
	if err != nil {
		return []model.Product{}, dbError(u.log, "search products", err)
	}
	return out, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	key := fmt.Sprintf("product:%d", productID)
	var p model.Product
	if u.fromCache(ctx, key, &p) {
		return p, nil
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, wrapHTTPError(http.StatusNotFound, ErrProductNotFound)
	}
	if err != nil {
		return model.Product{}, dbError(u.log, "find product", err)
	}
	u.toCache(ctx, key, p)
	return p, nil
}

func (u *ProductUsecase) ListTypes(ctx context.Context) ([]model.ProductType, error) {
	var out []model.ProductType
	if u.fromCache(ctx, "product-types", &out) {
		return out, nil
	}

	out, err := u.products.ListTypes(ctx)
	if err != nil {
		return []model.ProductType{}, dbError(u.log, "list product types", err)
	}
	u.toCache(ctx, "product-types", out)
	return out, nil
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if u.fromCache(ctx, "categories", &out) {
		return out, nil
	}

	out, err := u.products.ListCategories(ctx)
	if err != nil {
		return []model.Category{}, dbError(u.log, "list categories", err)
	}
	u.toCache(ctx, "categories", out)
	return out, nil
}

// 販売可否の切り替え（監査ログ付き）
func (u *ProductUsecase) AdminSetAvailability(ctx context.Context, adminUserID int64, productID int64, available bool) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return wrapHTTPError(http.StatusNotFound, ErrProductNotFound)
		}
		if err != nil {
			return dbError(u.log, "find product", err)
		}

		if err := r.Products().SetAvailability(ctx, productID, available); err != nil {
			return dbError(u.log, "set availability", err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionSetProductAvailability,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   fmt.Sprintf(`{"is_available":%t}`, p.IsAvailable),
			AfterJSON:    fmt.Sprintf(`{"is_available":%t}`, available),
			CreatedAt:    u.clock.Now().UTC(),
		}); err != nil {
			return dbError(u.log, "create audit log", err)
		}

		p.IsAvailable = available
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}

	u.invalidate(ctx)
	return out, nil
}

// カートにも注文履歴にも無い商品だけ物理削除できる
func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return wrapHTTPError(http.StatusNotFound, ErrProductNotFound)
		}
		if err != nil {
			return dbError(u.log, "find product", err)
		}

		inCart, err := r.Products().InAnyCart(ctx, productID)
		if err != nil {
			return dbError(u.log, "check carts", err)
		}
		if inCart {
			return wrapHTTPError(http.StatusConflict, ErrProductInCart)
		}

		ordered, err := r.OrderItems().ExistsForProduct(ctx, productID)
		if err != nil {
			return dbError(u.log, "check order items", err)
		}
		if ordered {
			return wrapHTTPError(http.StatusConflict, ErrProductInOrders)
		}

		if err := r.Products().Delete(ctx, productID); err != nil {
			// チェック後に参照が増えた場合。カートか注文かはもう分からない
			if errors.Is(err, repo.ErrReferenced) {
				return wrapHTTPError(http.StatusConflict, ErrProductReferenced)
			}
			return dbError(u.log, "delete product", err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionDeleteProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   mustJSON(p),
			AfterJSON:    "{}",
			CreatedAt:    u.clock.Now().UTC(),
		}); err != nil {
			return dbError(u.log, "create audit log", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.invalidate(ctx)
	return nil
}

// キャッシュの失敗はリクエストを落とさずDBへ
func (u *ProductUsecase) fromCache(ctx context.Context, key string, dst interface{}) bool {
	ok, err := u.cache.Get(ctx, key, dst)
	if err != nil {
		u.log.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

func (u *ProductUsecase) toCache(ctx context.Context, key string, v interface{}) {
	if err := u.cache.Set(ctx, key, v); err != nil {
		u.log.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (u *ProductUsecase) invalidate(ctx context.Context) {
	if err := u.cache.InvalidateAll(ctx); err != nil {
		u.log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
