package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"stok-backend/internal/models"

	"gorm.io/gorm"
)

const EntityStock = "stock"

type LogOptions struct {
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

type ListOptions struct {
	EntityType string
	EntityID   string
	Limit      int
}

type clientIDKey struct{}

// WithClientID: işlemi tetikleyen istemci kimliğini context'e ekler
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

func ClientIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}

// BuildLog: LogOptions'tan kaydedilecek satırı hazırlar
func BuildLog(ctx context.Context, opts LogOptions) models.AuditLog {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	return models.AuditLog{
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		ClientID:    ClientIDFrom(ctx),
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}
}

type Writer struct {
	db *gorm.DB
}

func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

func (w *Writer) Write(ctx context.Context, opts LogOptions) error {
	log := BuildLog(ctx, opts)
	if err := w.db.WithContext(ctx).Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

func (w *Writer) List(ctx context.Context, opts ListOptions) ([]models.AuditLog, error) {
	dbq := w.db.WithContext(ctx).Model(&models.AuditLog{})
	if opts.EntityType != "" {
		dbq = dbq.Where("entity_type = ?", opts.EntityType)
	}
	if opts.EntityID != "" {
		dbq = dbq.Where("entity_id = ?", opts.EntityID)
	}

	var logs []models.AuditLog
	if err := dbq.Order("created_at DESC, id DESC").Limit(opts.Limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit loglar listelenemedi: %w", err)
	}
	return logs, nil
}
