// Package server wires the HTTP surface: middleware, routes and the central error handler.
package server

import (
	"context"
	"log"
	"strings"
	"time"

	"stok-backend/internal/audit"
	"stok-backend/internal/config"
	"stok-backend/internal/i18n"
	"stok-backend/internal/inventory"
	"stok-backend/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// multipart başlıkları için dosya limitinin üstüne eklenen pay
const uploadOverhead = 1 << 20

type Deps struct {
	Config      *config.Config
	Stocks      *inventory.Service
	Preferences i18n.PreferenceStore
	AuditLogs   audit.Lister
	Metrics     *observability.Metrics

	// Health is called by /healthz; nil means always healthy.
	Health func(ctx context.Context) error

	// DisableRequestLog turns off the access log (tests).
	DisableRequestLog bool
}

// ErrorHandler: tüm hatalar {"error": "..."} olarak döner
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
		})
	}
	log.Println("Beklenmeyen hata:", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Beklenmeyen sunucu hatası",
	})
}

func requestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func New(d Deps) *fiber.App {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    cfg.MaxUploadBytes + uploadOverhead,
	})

	app.Use(recover.New())
	if !d.DisableRequestLog {
		app.Use(logger.New())
	}
	app.Use(d.Metrics.Middleware())

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(corsOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, " + i18n.ClientIDHeader,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if d.Health != nil {
			if err := d.Health(c.UserContext()); err != nil {
				log.Printf("[WARN] Sağlık kontrolü başarısız: %v", err)
				return fiber.NewError(fiber.StatusServiceUnavailable, "Veritabanına ulaşılamıyor")
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	defaultLang, ok := i18n.ParseLanguage(cfg.DefaultLanguage)
	if !ok {
		defaultLang = i18n.DefaultLanguage
	}

	api := app.Group("/api")
	api.Use(requestTimeout(cfg.RequestTimeout))
	api.Use(i18n.SessionMiddleware(d.Preferences, defaultLang))

	// Stoklar
	inventory.RegisterRoutes(api.Group("/stocks"), d.Stocks, int64(cfg.MaxUploadBytes))

	// Dil tercihi
	api.Get("/preferences/language", i18n.GetLanguageHandler())
	api.Put("/preferences/language", i18n.SetLanguageHandler(d.Preferences))

	// Audit logs
	if d.AuditLogs != nil {
		api.Get("/audit-logs", audit.ListAuditLogsHandler(d.AuditLogs))
	}

	return app
}
