package main

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logger"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	//設定（.env → 環境変数）
	cfg, err := config.LoadWithDotenv(".env", "../.env")
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx := context.Background()

	//カタログキャッシュ（REDIS_ADDRが無ければ無効）
	var catalogCache usecase.CatalogCache = usecase.NoopCatalogCache{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, catalog cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			catalogCache = cache.NewCatalogRedisCache(rdb, cfg.CatalogCacheTTL)
		}
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	clock := usecase.SystemClock{}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, txm, catalogCache, clock, log)
	cartUC := usecase.NewCartUsecase(txm, clock, log)
	addressUC := usecase.NewAddressUsecase(addressRepo, log)
	orderUC := usecase.NewOrderUsecase(txm, addressRepo, clock, log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, clock, log)
	statsUC := usecase.NewStatisticsUsecase(txm, clock, log)
	auditUC := usecase.NewAuditLogUsecase(infraRepo.NewAuditLogGormRepository(gormDB), log)

	//Handler生成
	e := server.New(cfg, log, userRepo, server.Handlers{
		Products:      handler.NewProductHandler(productUC),
		AdminProducts: handler.NewAdminProductHandler(productUC),
		Cart:          handler.NewCartHandler(cartUC),
		Addresses:     handler.NewAddressHandler(addressUC),
		Orders:        handler.NewOrderHandler(orderUC),
		AdminOrders:   handler.NewAdminOrderHandler(adminOrderUC, statsUC),
		AuditLogs:     handler.NewAdminAuditLogHandler(auditUC),
	})

	return server.Run(ctx, e, ":"+cfg.Port, log)
}
