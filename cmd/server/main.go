package main

import (
	"context"
	"log"

	"stok-backend/internal/audit"
	"stok-backend/internal/config"
	"stok-backend/internal/database"
	"stok-backend/internal/i18n"
	"stok-backend/internal/inventory"
	"stok-backend/internal/observability"
	"stok-backend/internal/server"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()

	// Miktar ve fiyatlar JSON'da string değil sayı olarak dönsün
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	var prefs i18n.PreferenceStore = i18n.NewMemoryStore()
	if cfg.RedisAddr != "" {
		client, err := i18n.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("[WARN] Redis'e bağlanılamadı, dil tercihleri bellekte tutulacak: %v", err)
		} else {
			defer client.Close()
			prefs = i18n.NewRedisStore(client)
		}
	}

	metrics := observability.NewMetrics()
	auditWriter := audit.NewWriter(db)
	repo := inventory.NewGormRepository(db)

	replacer := inventory.NewBulkReplacer(repo,
		inventory.WithAtomic(cfg.BulkReplaceAtomic),
		inventory.WithMetrics(metrics),
	)
	stocks := inventory.NewService(repo,
		inventory.WithAudit(auditWriter),
		inventory.WithServiceMetrics(metrics),
		inventory.WithReplacer(replacer),
	)

	app := server.New(server.Deps{
		Config:      cfg,
		Stocks:      stocks,
		Preferences: prefs,
		AuditLogs:   auditWriter,
		Metrics:     metrics,
		Health: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
