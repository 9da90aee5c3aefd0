package inventory

import (
	"context"
	"log"

	"stok-backend/internal/models"

	"golang.org/x/sync/semaphore"
)

// ReplaceState: toplu değiştirme işleminin bulunduğu adım
type ReplaceState string

const (
	ReplaceIdle             ReplaceState = "idle"
	ReplaceDeletingExisting ReplaceState = "deleting_existing"
	ReplaceInsertingNew     ReplaceState = "inserting_new"
	ReplaceCompleted        ReplaceState = "completed"
	ReplaceErrorAborted     ReplaceState = "error_aborted"
	ReplaceErrorPartial     ReplaceState = "error_partial"
)

// Terminal reports whether no further transition can happen.
func (s ReplaceState) Terminal() bool {
	switch s {
	case ReplaceCompleted, ReplaceErrorAborted, ReplaceErrorPartial:
		return true
	}
	return false
}

type ReplaceResult struct {
	State    ReplaceState   `json:"state"`
	Deleted  int64          `json:"deleted"`
	Inserted int            `json:"inserted"`
	Stocks   []models.Stock `json:"-"`
}

// Metrics is the subset of the metrics collector the inventory package reports to.
type Metrics interface {
	ObserveBulkReplace(state string)
	AddImportedRows(n int)
	IncExports()
}

type noopMetrics struct{}

func (noopMetrics) ObserveBulkReplace(string) {}
func (noopMetrics) AddImportedRows(int)       {}
func (noopMetrics) IncExports()               {}

type ReplaceOption func(*BulkReplacer)

// WithAtomic runs both steps in one transaction when the repository supports it.
func WithAtomic(atomic bool) ReplaceOption {
	return func(b *BulkReplacer) { b.atomic = atomic }
}

func WithMetrics(m Metrics) ReplaceOption {
	return func(b *BulkReplacer) {
		if m != nil {
			b.metrics = m
		}
	}
}

// WithObserver registers a callback invoked on every state transition.
func WithObserver(fn func(ReplaceState)) ReplaceOption {
	return func(b *BulkReplacer) { b.observe = fn }
}

// BulkReplacer: mevcut tüm aktif stokları silip yerine yeni listeyi ekler.
// Aynı anda yalnızca bir değiştirme çalışabilir.
type BulkReplacer struct {
	repo    Repository
	atomic  bool
	metrics Metrics
	observe func(ReplaceState)
	sem     *semaphore.Weighted
}

func NewBulkReplacer(repo Repository, opts ...ReplaceOption) *BulkReplacer {
	b := &BulkReplacer{
		repo:    repo,
		metrics: noopMetrics{},
		sem:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Atomic reports whether Replace will use a single transaction.
func (b *BulkReplacer) Atomic() bool {
	if !b.atomic {
		return false
	}
	_, ok := b.repo.(AtomicReplacer)
	return ok
}

func (b *BulkReplacer) transition(res *ReplaceResult, s ReplaceState) {
	res.State = s
	if b.observe != nil {
		b.observe(s)
	}
	if s.Terminal() {
		b.metrics.ObserveBulkReplace(string(s))
	}
}

// Replace validates the batch, then soft-deletes every active record and inserts
// the batch. Invalid input is rejected before anything is deleted.
//
// In two-step mode a failed insert leaves zero active records; the returned
// error is a *PartialReplaceError carrying the number of deleted records.
// In atomic mode both steps run in one transaction, so observers only see
// deleting_existing followed by completed or error_aborted.
func (b *BulkReplacer) Replace(ctx context.Context, batch []StockFields) (ReplaceResult, error) {
	res := ReplaceResult{State: ReplaceIdle}

	normalized := make([]StockFields, len(batch))
	for i, f := range batch {
		normalized[i] = f.Normalize()
	}
	if err := ValidateBatch(normalized); err != nil {
		return res, err
	}

	if !b.sem.TryAcquire(1) {
		return res, ErrReplaceInProgress
	}
	defer b.sem.Release(1)

	if b.Atomic() {
		return b.replaceAtomic(ctx, res, normalized)
	}

	b.transition(&res, ReplaceDeletingExisting)
	deleted, err := b.repo.SoftDeleteAllActive(ctx)
	if err != nil {
		log.Printf("Toplu değiştirme: mevcut stoklar silinemedi: %v", err)
		b.transition(&res, ReplaceErrorAborted)
		return res, err
	}
	res.Deleted = deleted

	b.transition(&res, ReplaceInsertingNew)
	created, err := b.repo.CreateMany(ctx, normalized)
	if err != nil {
		log.Printf("[WARN] Toplu değiştirme yarıda kaldı: %d stok silindi, yeni kayıtlar eklenemedi: %v", deleted, err)
		b.transition(&res, ReplaceErrorPartial)
		return res, &PartialReplaceError{Deleted: deleted, Err: err}
	}

	res.Stocks = created
	res.Inserted = len(created)
	b.complete(&res)
	return res, nil
}

func (b *BulkReplacer) complete(res *ReplaceResult) {
	b.transition(res, ReplaceCompleted)
	b.metrics.AddImportedRows(res.Inserted)
}

func (b *BulkReplacer) replaceAtomic(ctx context.Context, res ReplaceResult, batch []StockFields) (ReplaceResult, error) {
	b.transition(&res, ReplaceDeletingExisting)
	deleted, created, err := b.repo.(AtomicReplacer).ReplaceAll(ctx, batch)
	if err != nil {
		log.Printf("Toplu değiştirme geri alındı: %v", err)
		b.transition(&res, ReplaceErrorAborted)
		return res, err
	}
	res.Deleted = deleted
	res.Stocks = created
	res.Inserted = len(created)
	b.complete(&res)
	return res, nil
}
