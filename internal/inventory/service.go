package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"stok-backend/internal/audit"
	"stok-backend/internal/models"

	"github.com/google/uuid"
)

// AuditWriter: stok değişikliklerinin kaydedildiği yer
type AuditWriter interface {
	Write(ctx context.Context, opts audit.LogOptions) error
}

type noopAudit struct{}

func (noopAudit) Write(context.Context, audit.LogOptions) error { return nil }

// View: filtrelenmiş, sıralanmış liste ve toplamları
type View struct {
	Query   ListQuery
	Items   []models.Stock
	Summary Summary
}

type Service struct {
	repo     Repository
	replacer *BulkReplacer
	audit    AuditWriter
	metrics  Metrics
}

type ServiceOption func(*Service)

func WithAudit(w AuditWriter) ServiceOption {
	return func(s *Service) {
		if w != nil {
			s.audit = w
		}
	}
}

func WithServiceMetrics(m Metrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithReplacer overrides the default two-step replacer built from the repository.
func WithReplacer(r *BulkReplacer) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.replacer = r
		}
	}
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:    repo,
		audit:   noopAudit{},
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.replacer == nil {
		s.replacer = NewBulkReplacer(repo, WithMetrics(s.metrics))
	}
	return s
}

func (s *Service) writeAudit(ctx context.Context, opts audit.LogOptions) {
	opts.EntityType = audit.EntityStock
	if err := s.audit.Write(ctx, opts); err != nil {
		// Audit log hatası işlemi engellememeli
		log.Printf("Audit log yazılamadı (%s): %v", opts.Action, err)
	}
}

func (s *Service) List(ctx context.Context, q ListQuery) (View, error) {
	records, err := s.repo.List(ctx, q.Filter())
	if err != nil {
		return View{}, err
	}
	items := ApplyView(records, q)
	return View{Query: q, Items: items, Summary: Summarize(items)}, nil
}

func (s *Service) Create(ctx context.Context, fields StockFields) (models.Stock, error) {
	fields = fields.Normalize()
	if err := Validate(fields); err != nil {
		return models.Stock{}, err
	}

	stock, err := s.repo.Create(ctx, fields)
	if err != nil {
		return models.Stock{}, err
	}

	s.writeAudit(ctx, audit.LogOptions{
		EntityID:    stock.ID.String(),
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Stok eklendi: %s", stock.Name),
		After:       stock,
	})
	return stock, nil
}

// Update replaces every mutable field; absent optional fields fall back to defaults.
func (s *Service) Update(ctx context.Context, id uuid.UUID, fields StockFields) (models.Stock, error) {
	fields = fields.Normalize()
	if err := Validate(fields); err != nil {
		return models.Stock{}, err
	}

	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Stock{}, err
	}

	stock, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return models.Stock{}, err
	}

	s.writeAudit(ctx, audit.LogOptions{
		EntityID:    stock.ID.String(),
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Stok güncellendi: %s", stock.Name),
		Before:      before,
		After:       stock,
	})
	return stock, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.writeAudit(ctx, audit.LogOptions{
		EntityID:    id.String(),
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Stok silindi: %s", before.Name),
		Before:      before,
	})
	return nil
}

func (s *Service) BulkCreate(ctx context.Context, batch []StockFields) ([]models.Stock, error) {
	normalized := make([]StockFields, len(batch))
	for i, f := range batch {
		normalized[i] = f.Normalize()
	}
	if err := ValidateBatch(normalized); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateMany(ctx, normalized)
	if err != nil {
		return nil, err
	}

	s.writeAudit(ctx, audit.LogOptions{
		Action:      models.AuditActionBulkCreate,
		Description: fmt.Sprintf("%d stok toplu eklendi", len(created)),
	})
	return created, nil
}

func (s *Service) BulkDelete(ctx context.Context) (int64, error) {
	deleted, err := s.repo.SoftDeleteAllActive(ctx)
	if err != nil {
		return 0, err
	}

	s.writeAudit(ctx, audit.LogOptions{
		Action:      models.AuditActionBulkDelete,
		Description: fmt.Sprintf("%d stok toplu silindi", deleted),
	})
	return deleted, nil
}

// Export renders the same view List would return as an xlsx workbook.
func (s *Service) Export(ctx context.Context, q ListQuery) (*bytes.Buffer, View, error) {
	view, err := s.List(ctx, q)
	if err != nil {
		return nil, View{}, err
	}
	buf, err := ExportWorkbook(view.Items)
	if err != nil {
		return nil, View{}, err
	}
	s.metrics.IncExports()
	return buf, view, nil
}

// ParseImport reads a workbook without writing anything.
func (s *Service) ParseImport(r io.Reader) ([]StockFields, error) {
	batch, err := ParseWorkbook(r)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Import replaces the whole active inventory with the rows of the workbook.
func (s *Service) Import(ctx context.Context, r io.Reader) (ReplaceResult, error) {
	batch, err := s.ParseImport(r)
	if err != nil {
		return ReplaceResult{State: ReplaceIdle}, err
	}
	return s.Replace(ctx, batch)
}

func (s *Service) Replace(ctx context.Context, batch []StockFields) (ReplaceResult, error) {
	res, err := s.replacer.Replace(ctx, batch)

	var partial *PartialReplaceError
	switch {
	case err == nil:
		s.writeAudit(ctx, audit.LogOptions{
			Action:      models.AuditActionBulkReplace,
			Description: fmt.Sprintf("Stok listesi değiştirildi: %d silindi, %d eklendi", res.Deleted, res.Inserted),
		})
	case errors.As(err, &partial):
		s.writeAudit(ctx, audit.LogOptions{
			Action:      models.AuditActionBulkReplace,
			Description: fmt.Sprintf("Stok listesi değiştirme yarıda kaldı: %d silindi, ekleme başarısız", partial.Deleted),
		})
	}
	return res, err
}
