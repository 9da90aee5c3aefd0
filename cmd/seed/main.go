// Command seed inserts the initial raw material list into the stocks table.
package main

import (
	"context"
	"log"

	"stok-backend/internal/audit"
	"stok-backend/internal/config"
	"stok-backend/internal/database"
	"stok-backend/internal/inventory"
	"stok-backend/internal/models"

	"github.com/shopspring/decimal"
)

const seedNote = "Ham madde listesinden eklendi"

type rawMaterial struct {
	Name     string
	Quantity int64
	Unit     string
}

// Ham madde stok listesi
var rawMaterials = []rawMaterial{
	{"Üre", 8550, "kg"},
	{"Amonyum Sülfat", 3050, "kg"},
	{"Kalsiyum Nitrat", 550, "kg"},
	{"MKP", 1200, "kg"},
	{"Magnezyum Nitrat", 3650, "kg"},
	{"Magnezyum Nitrat (Hydropnice)", 875, "kg"},
	{"Potasyum Nitrat", 2400, "kg"},
	{"MAP", 2300, "kg"},
	{"SBE Fosfat", 2275, "kg"},
	{"Monopotasyum Fosfat", 1050, "kg"},
	{"Monoadyum Glutamate", 1325, "kg"},
	{"Potassium Lignosulphanate", 1000, "kg"},
	{"Protina CP", 925, "kg"},
	{"Çinko Sülfat", 900, "kg"},
	{"Powercon", 1200, "kg"},
	{"Exfolat-62", 1625, "kg"},
	{"Bıtbonik Asit", 375, "kg"},
	{"Manganese Sulphate Monohydrate", 1200, "kg"},
}

var criticalRatio = decimal.RequireFromString("0.1")

// seedPayload: miktarın %10'u kritik stok, fiyat bilgisi yok
func seedPayload(m rawMaterial) inventory.StockFields {
	qty := decimal.NewFromInt(m.Quantity)
	return inventory.StockFields{
		Name:        m.Name,
		Category:    models.CategoryHammadde,
		Unit:        m.Unit,
		Quantity:    qty,
		MinQuantity: qty.Mul(criticalRatio).Floor(),
		Price:       decimal.Zero,
		Currency:    models.CurrencyTRY,
		Notes:       seedNote,
	}
}

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	svc := inventory.NewService(inventory.NewGormRepository(db), inventory.WithAudit(audit.NewWriter(db)))
	ctx := audit.WithClientID(context.Background(), "seed")

	log.Println("Stoklar ekleniyor...")

	success, failed := 0, 0
	for _, m := range rawMaterials {
		if _, err := svc.Create(ctx, seedPayload(m)); err != nil {
			failed++
			log.Printf("%s eklenemedi: %v", m.Name, err)
			continue
		}
		success++
		log.Printf("%s - %d %s eklendi", m.Name, m.Quantity, m.Unit)
	}

	log.Printf("Özet: %d başarılı, %d hata", success, failed)
}
