package inventory

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"stok-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

const (
	ExportSheetName = "Stoklar"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{
	"Sıra No", "Ürün Adı", "Kategori", "Miktar", "Birim",
	"Fiyat", "Para Birimi", "Min. Stok", "Notlar",
}

var exportColumnWidths = []float64{8, 30, 15, 12, 10, 12, 12, 12, 30}

// CategoryLabel: dosyada görünen kategori adı
func CategoryLabel(c models.StockCategory) string {
	if c == models.CategoryAmbalaj {
		return "Ambalaj"
	}
	return "Hammadde"
}

// ExportFilename: Stoklar_2025-01-31.xlsx
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("Stoklar_%s.xlsx", now.Format("2006-01-02"))
}

// ExportWorkbook writes the given records, in the given order, to a new xlsx workbook.
func ExportWorkbook(stocks []models.Stock) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return nil, &CodecError{Op: "export", Err: err}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, &CodecError{Op: "export", Err: err}
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ExportSheetName, cell, h); err != nil {
			return nil, &CodecError{Op: "export", Err: err}
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(ExportSheetName, col, col, exportColumnWidths[i]); err != nil {
			return nil, &CodecError{Op: "export", Err: err}
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(ExportSheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, &CodecError{Op: "export", Err: err}
	}

	for i, s := range stocks {
		notes := ""
		if s.Notes != nil {
			notes = *s.Notes
		}
		values := []interface{}{
			i + 1,
			s.Name,
			CategoryLabel(s.Category),
			s.Quantity.InexactFloat64(),
			s.Unit,
			s.Price.InexactFloat64(),
			string(s.Currency),
			s.MinQuantity.InexactFloat64(),
			notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(ExportSheetName, cell, v); err != nil {
				return nil, &CodecError{Op: "export", Err: err}
			}
		}
	}

	if len(stocks) > 0 {
		if err := f.AutoFilter(ExportSheetName, "A1:"+lastHeader, []excelize.AutoFilterOptions{}); err != nil {
			return nil, &CodecError{Op: "export", Err: err}
		}
	}
	if err := f.SetPanes(ExportSheetName, &excelize.Panes{Freeze: true, Split: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, &CodecError{Op: "export", Err: err}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &CodecError{Op: "export", Err: err}
	}
	return buf, nil
}

// importColumns: alan -> kabul edilen başlıklar (ilk dolu olan kullanılır)
var importColumns = map[string][]string{
	"name":         {"Ürün Adı", "Urun Adi"},
	"category":     {"Kategori"},
	"quantity":     {"Miktar"},
	"unit":         {"Birim"},
	"price":        {"Fiyat"},
	"currency":     {"Para Birimi"},
	"min_quantity": {"Min. Stok", "Min Stok"},
	"notes":        {"Notlar"},
}

func headerKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

type sheetRow struct {
	cells   []string
	columns map[string]int
}

func (r sheetRow) cell(header string) string {
	idx, ok := r.columns[headerKey(header)]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

func (r sheetRow) value(field string) string {
	for _, h := range importColumns[field] {
		if v := r.cell(h); v != "" {
			return v
		}
	}
	return ""
}

func (r sheetRow) blank() bool {
	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseTurkishAmount: Türkçe formatındaki sayıyı çevir (1.234,56 -> 1234.56)
func parseTurkishAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, "TL", "")
	s = strings.ReplaceAll(s, "₺", "")
	s = strings.TrimSpace(s)

	// Binlik ayırıcı noktaları kaldır, virgülü noktaya çevir
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	return decimal.NewFromString(s)
}

// parseAmount never fails: unparseable, negative or out-of-range input becomes 0.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		if d, err = parseTurkishAmount(s); err != nil {
			return decimal.Zero
		}
	}
	if d.IsNegative() || !AmountInRange(d) {
		return decimal.Zero
	}
	return d
}

func categoryFromLabel(s string) models.StockCategory {
	if lowerTR(s) == string(models.CategoryAmbalaj) {
		return models.CategoryAmbalaj
	}
	return models.CategoryHammadde
}

// ParseWorkbook reads the first sheet of an xlsx workbook into normalized payloads.
// Values are coerced, never rejected; validation is left to the caller.
func ParseWorkbook(r io.Reader) ([]StockFields, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &CodecError{Op: "import", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &CodecError{Op: "import", Err: fmt.Errorf("çalışma sayfası bulunamadı")}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &CodecError{Op: "import", Err: err}
	}
	if len(rows) == 0 {
		return []StockFields{}, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := headerKey(h)
		if key == "" {
			continue
		}
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}

	out := make([]StockFields, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := sheetRow{cells: cells, columns: columns}
		if row.blank() {
			continue
		}
		fields := StockFields{
			Name:        row.value("name"),
			Category:    categoryFromLabel(row.value("category")),
			Quantity:    parseAmount(row.value("quantity")),
			Unit:        row.value("unit"),
			Price:       parseAmount(row.value("price")),
			Currency:    models.Currency(row.value("currency")),
			MinQuantity: parseAmount(row.value("min_quantity")),
			Notes:       row.value("notes"),
		}
		out = append(out, fields.Normalize())
	}
	return out, nil
}
