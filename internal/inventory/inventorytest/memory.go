// Package inventorytest provides an in-memory inventory.Repository for tests.
package inventorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"stok-backend/internal/inventory"
	"stok-backend/internal/models"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

var baseTime = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// Repository keeps records in memory and honours soft delete the way
// GormRepository does. Each created record gets a created_at one second
// later than the previous one.
type Repository struct {
	mu     sync.Mutex
	stocks []models.Stock
	ticks  int

	// Set to make the next call of the matching method fail.
	FailSoftDeleteAll error
	FailCreateMany    error
	FailList          error
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) now() time.Time {
	r.ticks++
	return baseTime.Add(time.Duration(r.ticks) * time.Second)
}

func (r *Repository) newStock(f inventory.StockFields) models.Stock {
	s := f.ToModel()
	s.ID = uuid.New()
	s.CreatedAt = r.now()
	s.UpdatedAt = s.CreatedAt
	return s
}

// Seed inserts records as-is, including soft-deleted ones.
func (r *Repository) Seed(stocks ...models.Stock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stocks = append(r.stocks, stocks...)
}

// All returns every record, soft-deleted ones included.
func (r *Repository) All() []models.Stock {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Stock, len(r.stocks))
	copy(out, r.stocks)
	return out
}

// ActiveCount returns the number of records without deleted_at.
func (r *Repository) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.stocks {
		if !s.DeletedAt.Valid {
			n++
		}
	}
	return n
}

func (r *Repository) List(_ context.Context, filter inventory.ListFilter) ([]models.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailList; err != nil {
		r.FailList = nil
		return nil, &inventory.RepositoryError{Op: "list", Err: err}
	}

	fold := cases.Fold()
	search := fold.String(filter.Search)
	out := make([]models.Stock, 0, len(r.stocks))
	for _, s := range r.stocks {
		if s.DeletedAt.Valid {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if search != "" && !strings.Contains(fold.String(s.Name), search) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) find(id uuid.UUID) int {
	for i, s := range r.stocks {
		if s.ID == id && !s.DeletedAt.Valid {
			return i
		}
	}
	return -1
}

func (r *Repository) Get(_ context.Context, id uuid.UUID) (models.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id)
	if i < 0 {
		return models.Stock{}, inventory.ErrStockNotFound
	}
	return r.stocks[i], nil
}

func (r *Repository) Create(_ context.Context, f inventory.StockFields) (models.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.newStock(f)
	r.stocks = append(r.stocks, s)
	return s, nil
}

func (r *Repository) CreateMany(_ context.Context, batch []inventory.StockFields) ([]models.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailCreateMany; err != nil {
		r.FailCreateMany = nil
		return nil, &inventory.RepositoryError{Op: "create_many", Err: err}
	}
	created := make([]models.Stock, 0, len(batch))
	for _, f := range batch {
		created = append(created, r.newStock(f))
	}
	r.stocks = append(r.stocks, created...)
	return created, nil
}

func (r *Repository) Update(_ context.Context, id uuid.UUID, f inventory.StockFields) (models.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id)
	if i < 0 {
		return models.Stock{}, inventory.ErrStockNotFound
	}
	f.Apply(&r.stocks[i])
	r.stocks[i].UpdatedAt = r.now()
	return r.stocks[i], nil
}

func (r *Repository) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id)
	if i < 0 {
		return inventory.ErrStockNotFound
	}
	r.stocks[i].DeletedAt = gorm.DeletedAt{Time: r.now(), Valid: true}
	return nil
}

func (r *Repository) SoftDeleteAllActive(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailSoftDeleteAll; err != nil {
		r.FailSoftDeleteAll = nil
		return 0, &inventory.RepositoryError{Op: "soft_delete_all", Err: err}
	}
	at := r.now()
	var n int64
	for i := range r.stocks {
		if !r.stocks[i].DeletedAt.Valid {
			r.stocks[i].DeletedAt = gorm.DeletedAt{Time: at, Valid: true}
			n++
		}
	}
	return n, nil
}

// AtomicRepository adds a transactional ReplaceAll: on failure the record set
// is restored to what it was before the call.
type AtomicRepository struct {
	*Repository
}

func NewAtomicRepository() *AtomicRepository {
	return &AtomicRepository{Repository: NewRepository()}
}

func (r *AtomicRepository) ReplaceAll(ctx context.Context, batch []inventory.StockFields) (int64, []models.Stock, error) {
	snapshot := r.All()

	deleted, err := r.SoftDeleteAllActive(ctx)
	if err == nil {
		var created []models.Stock
		if created, err = r.CreateMany(ctx, batch); err == nil {
			return deleted, created, nil
		}
	}

	r.mu.Lock()
	r.stocks = snapshot
	r.mu.Unlock()
	return 0, nil, err
}
