package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

type AdminOrderUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	log   *zap.Logger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, clock Clock, log *zap.Logger) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, clock: clock, log: log}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 監査ログに残す注文の状態
type orderStatusSnapshot struct {
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// 注文一覧（新しい順）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "from must not be after to")
	}
	f.Status = strings.TrimSpace(f.Status)

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return dbError(u.log, "list admin orders", err)
		}
		outs = toOrderOutputs(orders)
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// ステータス更新。Completed へ変えたときだけ completed_at を入れ、
// Completed から外れたら completed_at は消す。
// 終端（Completed / Cancelled）からの変更も運用者には許している。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return OrderOutput{}, wrapHTTPError(http.StatusBadRequest, ErrInvalidStatus)
	}

	var out OrderOutput
	changed := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return wrapHTTPError(http.StatusNotFound, ErrOrderNotFound)
		}
		if err != nil {
			return dbError(u.log, "find order", err)
		}

		// すでに同じなら何もしない
		if o.Status == newStatus {
			out = toOrderOutput(o)
			return nil
		}

		now := u.clock.Now().UTC()
		var completedAt *time.Time
		if newStatus == model.OrderStatusCompleted {
			completedAt = &now
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus, completedAt); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return wrapHTTPError(http.StatusNotFound, ErrOrderNotFound)
			}
			return dbError(u.log, "update order status", err)
		}

		before := orderStatusSnapshot{Status: string(o.Status), CompletedAt: o.CompletedAt}
		after := orderStatusSnapshot{Status: string(newStatus), CompletedAt: completedAt}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   mustJSON(before),
			AfterJSON:    mustJSON(after),
			CreatedAt:    now,
		}); err != nil {
			return dbError(u.log, "create audit log", err)
		}

		updated, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return dbError(u.log, "reload order", err)
		}
		out = toOrderOutput(updated)
		changed = true
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	if changed {
		u.log.Info("order status updated",
			zap.Int64("order_id", orderID),
			zap.Int64("actor_user_id", actorAdminUserID),
			zap.String("status", string(newStatus)),
		)
	}
	return out, nil
}

// 監査ログ用。失敗しない型しか渡さない。
func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
