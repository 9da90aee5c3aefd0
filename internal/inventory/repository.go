package inventory

import (
	"context"
	"errors"
	"strings"

	"stok-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter: Repository seviyesinde uygulanan filtre. Boş Category tüm kategoriler demektir.
type ListFilter struct {
	Category models.StockCategory
	Search   string
}

// Repository: stok kayıtlarının saklandığı yer. Silinmiş kayıtlar hiçbir
// okuma işleminde dönmez.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]models.Stock, error)
	Get(ctx context.Context, id uuid.UUID) (models.Stock, error)
	Create(ctx context.Context, fields StockFields) (models.Stock, error)
	CreateMany(ctx context.Context, batch []StockFields) ([]models.Stock, error)
	Update(ctx context.Context, id uuid.UUID, fields StockFields) (models.Stock, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SoftDeleteAllActive(ctx context.Context) (int64, error)
}

// AtomicReplacer is implemented by repositories that can soft-delete all active
// records and insert a new batch in a single transaction.
type AtomicReplacer interface {
	ReplaceAll(ctx context.Context, batch []StockFields) (int64, []models.Stock, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *GormRepository) List(ctx context.Context, filter ListFilter) ([]models.Stock, error) {
	dbq := r.db.WithContext(ctx).Model(&models.Stock{})

	if filter.Category != "" {
		dbq = dbq.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		dbq = dbq.Where("name ILIKE ?", "%"+likeEscaper.Replace(filter.Search)+"%")
	}

	var stocks []models.Stock
	if err := dbq.Order("created_at DESC").Find(&stocks).Error; err != nil {
		return nil, &RepositoryError{Op: "list", Err: err}
	}
	return stocks, nil
}

func (r *GormRepository) Get(ctx context.Context, id uuid.UUID) (models.Stock, error) {
	var stock models.Stock
	if err := r.db.WithContext(ctx).First(&stock, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Stock{}, ErrStockNotFound
		}
		return models.Stock{}, &RepositoryError{Op: "get", Err: err}
	}
	return stock, nil
}

func (r *GormRepository) Create(ctx context.Context, fields StockFields) (models.Stock, error) {
	stock := fields.ToModel()
	if err := r.db.WithContext(ctx).Create(&stock).Error; err != nil {
		return models.Stock{}, &RepositoryError{Op: "create", Err: err}
	}
	return stock, nil
}

func (r *GormRepository) CreateMany(ctx context.Context, batch []StockFields) ([]models.Stock, error) {
	if len(batch) == 0 {
		return []models.Stock{}, nil
	}
	stocks := make([]models.Stock, 0, len(batch))
	for _, f := range batch {
		stocks = append(stocks, f.ToModel())
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&stocks, 500).Error; err != nil {
		return nil, &RepositoryError{Op: "create_many", Err: err}
	}
	return stocks, nil
}

func (r *GormRepository) Update(ctx context.Context, id uuid.UUID, fields StockFields) (models.Stock, error) {
	stock, err := r.Get(ctx, id)
	if err != nil {
		return models.Stock{}, err
	}

	fields.Apply(&stock)
	if err := r.db.WithContext(ctx).Save(&stock).Error; err != nil {
		return models.Stock{}, &RepositoryError{Op: "update", Err: err}
	}
	return stock, nil
}

func (r *GormRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Stock{}, "id = ?", id)
	if res.Error != nil {
		return &RepositoryError{Op: "soft_delete", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrStockNotFound
	}
	return nil
}

func (r *GormRepository) SoftDeleteAllActive(ctx context.Context) (int64, error) {
	// gorm, koşulsuz toplu güncellemeyi varsayılan olarak engelliyor; soft delete
	// kapsamı zaten "deleted_at IS NULL" ekliyor
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Stock{})
	if res.Error != nil {
		return 0, &RepositoryError{Op: "soft_delete_all", Err: res.Error}
	}
	return res.RowsAffected, nil
}

func (r *GormRepository) ReplaceAll(ctx context.Context, batch []StockFields) (int64, []models.Stock, error) {
	var (
		deleted int64
		created []models.Stock
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &GormRepository{db: tx}

		var err error
		deleted, err = txRepo.SoftDeleteAllActive(ctx)
		if err != nil {
			return err
		}
		created, err = txRepo.CreateMany(ctx, batch)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return deleted, created, nil
}
