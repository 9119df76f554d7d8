package model

import "time"

type AuditAction string

const (
	AuditActionUpdateOrderStatus      AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionSetProductAvailability AuditAction = "SET_PRODUCT_AVAILABILITY"
	AuditActionDeleteProduct          AuditAction = "DELETE_PRODUCT"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionUpdateOrderStatus, AuditActionSetProductAvailability, AuditActionDeleteProduct:
		return true
	}
	return false
}

type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
)

func (t AuditResourceType) Valid() bool {
	return t == AuditResourceProduct || t == AuditResourceOrder
}

// 管理者操作の記録。変更前後は JSON 文字列のまま持つ（削除時の After は空）。
// 更新系と同じTxで書くので、ロールバックされた操作は残らない。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index:idx_audit_resource" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index:idx_audit_resource" json:"resource_id"`
	BeforeJSON   string            `gorm:"type:text" json:"before_json"`
	AfterJSON    string            `gorm:"type:text" json:"after_json"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"created_at"`
}
