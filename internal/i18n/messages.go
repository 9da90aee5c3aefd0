package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	MsgStockCreated    = "stock.addSuccess"
	MsgStockUpdated    = "stock.updateSuccess"
	MsgStockDeleted    = "stock.deleteSuccess"
	MsgBulkCreated     = "stock.bulkCreateSuccess"
	MsgBulkDeleted     = "stock.bulkDeleteSuccess"
	MsgImportCompleted = "stock.importSuccess"
	MsgImportPartial   = "stock.importPartial"
	MsgLanguageUpdated = "language.updated"
)

var entries = map[language.Tag]map[string]string{
	language.Turkish: {
		MsgStockCreated:    "Stok başarıyla eklendi",
		MsgStockUpdated:    "Stok başarıyla güncellendi",
		MsgStockDeleted:    "Stok silindi",
		MsgBulkCreated:     "%d stok başarıyla eklendi",
		MsgBulkDeleted:     "Tüm stoklar silindi",
		MsgImportCompleted: "%d stok içe aktarıldı",
		MsgImportPartial:   "İçe aktarma yarıda kaldı: %d stok silindi ancak yeni kayıtlar eklenemedi",
		MsgLanguageUpdated: "Dil tercihi kaydedildi",
	},
	language.English: {
		MsgStockCreated:    "Stock added successfully",
		MsgStockUpdated:    "Stock updated successfully",
		MsgStockDeleted:    "Stock deleted",
		MsgBulkCreated:     "%d stocks added successfully",
		MsgBulkDeleted:     "All stocks deleted",
		MsgImportCompleted: "%d stocks imported",
		MsgImportPartial:   "Import incomplete: %d stocks were deleted but the new records could not be added",
		MsgLanguageUpdated: "Language preference saved",
	},
	language.Russian: {
		MsgStockCreated:    "Запас успешно добавлен",
		MsgStockUpdated:    "Запас успешно обновлён",
		MsgStockDeleted:    "Запас удалён",
		MsgBulkCreated:     "Успешно добавлено позиций: %d",
		MsgBulkDeleted:     "Все запасы удалены",
		MsgImportCompleted: "Импортировано позиций: %d",
		MsgImportPartial:   "Импорт не завершён: удалено позиций %d, но новые записи не добавлены",
		MsgLanguageUpdated: "Языковые настройки сохранены",
	},
}

var messages = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Turkish))
	for tag, msgs := range entries {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// T returns the localized message for key. Unknown keys are returned as-is.
func T(l Language, key string, args ...any) string {
	p := message.NewPrinter(l.Tag(), message.Catalog(messages))
	return p.Sprintf(key, args...)
}
