package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderStatistics struct {
	TotalOrders       int64           `json:"total_orders"`
	PendingOrders     int64           `json:"pending_orders"`
	ProcessingOrders  int64           `json:"processing_orders"`
	CompletedOrders   int64           `json:"completed_orders"`
	CancelledOrders   int64           `json:"cancelled_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TodayOrders       int64           `json:"today_orders"`
	WeekRevenue       decimal.Decimal `json:"week_revenue"`
}

// 呼ばれるたびにその場で集計する（キャッシュしない）
type StatisticsUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	log   *zap.Logger
}

func NewStatisticsUsecase(tx repo.TransactionManager, clock Clock, log *zap.Logger) *StatisticsUsecase {
	return &StatisticsUsecase{tx: tx, clock: clock, log: log}
}

func (u *StatisticsUsecase) Compute(ctx context.Context) (OrderStatistics, error) {
	now := u.clock.Now().UTC()
	today := startOfDayUTC(now)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	var stats OrderStatistics

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rows, err := r.Orders().AggregateByStatus(ctx)
		if err != nil {
			return dbError(u.log, "aggregate orders", err)
		}
		stats = foldStatusAggregates(rows)

		stats.TodayOrders, err = r.Orders().CountPlacedBetween(ctx, today, today.Add(24*time.Hour))
		if err != nil {
			return dbError(u.log, "count today orders", err)
		}

		stats.WeekRevenue, err = r.Orders().SumAmountSince(ctx, model.OrderStatusCompleted, weekAgo)
		if err != nil {
			return dbError(u.log, "sum week revenue", err)
		}
		return nil
	})
	if err != nil {
		return OrderStatistics{}, err
	}
	return stats, nil
}

// 売上は Completed だけ。平均は完了件数で割って小数2桁に丸める。
func foldStatusAggregates(rows []repo.OrderStatusAggregate) OrderStatistics {
	stats := OrderStatistics{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		WeekRevenue:       decimal.Zero,
	}
	for _, row := range rows {
		stats.TotalOrders += row.Count
		switch row.Status {
		case model.OrderStatusPending:
			stats.PendingOrders = row.Count
		case model.OrderStatusProcessing:
			stats.ProcessingOrders = row.Count
		case model.OrderStatusCompleted:
			stats.CompletedOrders = row.Count
			stats.TotalRevenue = row.Amount
		case model.OrderStatusCancelled:
			stats.CancelledOrders = row.Count
		}
	}
	if stats.CompletedOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.DivRound(decimal.NewFromInt(stats.CompletedOrders), 2)
	}
	return stats
}
