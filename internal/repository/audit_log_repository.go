package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// nil の条件は絞り込まない。Limit が 0 以下なら既定の件数。
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
