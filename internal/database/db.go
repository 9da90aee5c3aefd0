package database

import (
	"fmt"
	"log"

	"stok-backend/internal/config"
	"stok-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open: Postgres bağlantısını açar ve tabloları migrate eder.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Stock{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	// Aktif stok listesi her zaman created_at DESC ile okunuyor, silinmemiş kayıtlar için kısmi index
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_stocks_active_created_at ON stocks (created_at DESC) WHERE deleted_at IS NULL").Error; err != nil {
		log.Printf("idx_stocks_active_created_at oluşturulamadı (devam ediliyor): %v", err)
	}

	return nil
}
