package models

import "time"

type AuditAction string

const (
	AuditActionCreate      AuditAction = "create"
	AuditActionUpdate      AuditAction = "update"
	AuditActionDelete      AuditAction = "delete"
	AuditActionBulkCreate  AuditAction = "bulk_create"
	AuditActionBulkDelete  AuditAction = "bulk_delete"
	AuditActionBulkReplace AuditAction = "bulk_replace"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Hangi entity? (ör: "stock")
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	// Toplu işlemlerde boş kalır
	EntityID string `gorm:"size:64;index" json:"entity_id"`

	Action AuditAction `gorm:"size:20" json:"action"`

	// İstemci kimliği (X-Client-ID), yoksa boş
	ClientID string `gorm:"size:100" json:"client_id"`

	// Opsiyonel açıklama (küçük bir özet)
	Description string `gorm:"size:255" json:"description"`

	// Önceki ve sonraki hal (JSON)
	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`
}
