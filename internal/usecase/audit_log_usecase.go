package usecase

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

const maxAuditLogLimit = 200

// 管理画面の監査ログ一覧（読むだけ）
type AuditLogUsecase struct {
	logs repo.AuditLogRepository
	log  *zap.Logger
}

func NewAuditLogUsecase(logs repo.AuditLogRepository, log *zap.Logger) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs, log: log}
}

type AuditLogListInput struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
}

func (u *AuditLogUsecase) List(ctx context.Context, in AuditLogListInput) ([]model.AuditLog, error) {
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "from must not be after to")
	}
	if in.Limit < 0 || in.Limit > maxAuditLogLimit {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 200")
	}

	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		From:        in.From,
		To:          in.To,
		Limit:       in.Limit,
	}

	//未知の値は400（黙って全件を返さない）
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		if !a.Valid() {
			return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid action")
		}
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		if !rt.Valid() {
			return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
		}
		f.ResourceType = &rt
	}

	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, dbError(u.log, "list audit logs", err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
