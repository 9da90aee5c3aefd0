package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"host=localhost user=postgres password=postgres dbname=stok port=5432 sslmode=disable"`
	CORSOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Dil tercihlerinin saklandığı Redis. Boşsa tercihler bellekte tutulur.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"tr"`

	// true ise toplu değiştirme (sil + ekle) tek transaction içinde yapılır
	BulkReplaceAtomic bool `envconfig:"BULK_REPLACE_ATOMIC" default:"true"`

	MaxUploadBytes int           `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env dosyası bulunamadı, environment değişkenleri kullanılıyor")
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("[FATAL] Konfigürasyon okunamadı: %v", err)
	}

	for _, w := range Warnings(cfg) {
		log.Println("[WARN] " + w)
	}

	return cfg
}

// Parse: environment değişkenlerini okur ve doğrular (.env yüklemez)
func Parse() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	switch cfg.DefaultLanguage {
	case "tr", "en", "ru":
	default:
		return nil, fmt.Errorf("DEFAULT_LANGUAGE desteklenmiyor: %q (tr, en, ru)", cfg.DefaultLanguage)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES pozitif olmalı")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT pozitif olmalı")
	}
	return &cfg, nil
}

// Warnings: production için gözden geçirilmesi gereken ayarlar. Varsayılan
// değerler struct tag'lerinden gelir; burada sadece değişkenin tanımlanıp
// tanımlanmadığına bakılır.
func Warnings(cfg *Config) []string {
	var out []string
	if _, ok := os.LookupEnv("DATABASE_DSN"); !ok {
		out = append(out, "DATABASE_DSN tanımlanmamış, varsayılan değer kullanılıyor. Production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}
	if _, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); !ok {
		out = append(out, "CORS_ALLOWED_ORIGINS tanımlanmamış, varsayılan değer kullanılıyor. Production için mutlaka kendi domain'ini tanımla.")
	}
	if cfg.RedisAddr == "" {
		out = append(out, "REDIS_ADDR tanımlanmamış, dil tercihleri sadece bellekte tutulacak.")
	}
	if !cfg.BulkReplaceAtomic {
		out = append(out, "BULK_REPLACE_ATOMIC=false: toplu içe aktarma iki adımda yapılır, ekleme başarısız olursa stok listesi boş kalabilir.")
	}
	return out
}
