package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockCategory string

const (
	CategoryHammadde StockCategory = "hammadde" // ham madde
	CategoryAmbalaj  StockCategory = "ambalaj"
)

type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Stock: Tek bir stok kalemi (ham madde veya ambalaj).
// DeletedAt doluysa kayıt silinmiş sayılır, listelerde ve toplamlarda görünmez.
type Stock struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Category    StockCategory   `gorm:"size:20;not null;index" json:"category"`
	Unit        string          `gorm:"size:20;not null" json:"unit"` // kg, adet, litre vs.
	Quantity    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	MinQuantity decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"min_quantity"` // kritik stok eşiği
	Price       decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"price"`        // birim fiyat
	Currency    Currency        `gorm:"size:3;not null" json:"currency"`
	SupplierID  *uuid.UUID      `gorm:"type:uuid" json:"supplier_id"`
	Notes       *string         `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"deleted_at"`
}

func (s *Stock) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsLowStock: Miktar minimum seviyenin altındaysa true. Saklanmaz, her okumada hesaplanır.
func (s Stock) IsLowStock() bool {
	return s.Quantity.LessThan(s.MinQuantity)
}

// TotalValue: miktar * birim fiyat (para birimi dönüşümü yapılmaz)
func (s Stock) TotalValue() decimal.Decimal {
	return s.Quantity.Mul(s.Price)
}
