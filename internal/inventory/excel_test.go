package inventory

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"stok-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory xlsx with the given rows on its first sheet.
func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, 2, 7, 23, 59, 0, 0, time.UTC)
	require.Equal(t, "Stoklar_2025-02-07.xlsx", ExportFilename(now))
}

func TestExportWorkbookLayout(t *testing.T) {
	notes := "Ham madde listesinden eklendi"
	stocks := []models.Stock{
		stockAt("Üre", models.CategoryHammadde, "8550", "12.75", "855", 2),
		stockAt("Koli", models.CategoryAmbalaj, "300", "5", "500", 1),
	}
	stocks[0].Notes = &notes

	buf, err := ExportWorkbook(stocks)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{ExportSheetName}, f.GetSheetList())

	rows, err := f.GetRows(ExportSheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, exportHeaders, rows[0])
	require.Equal(t, []string{"1", "Üre", "Hammadde", "8550", "kg", "12.75", "TRY", "855", notes}, rows[1])
	require.Equal(t, []string{"2", "Koli", "Ambalaj", "300", "kg", "5", "TRY", "500"}, rows[2])

	typ, err := f.GetCellType(ExportSheetName, "D2")
	require.NoError(t, err)
	require.NotEqual(t, excelize.CellTypeSharedString, typ)
	require.NotEqual(t, excelize.CellTypeInlineString, typ)
}

func TestExportWorkbookEmpty(t *testing.T) {
	buf, err := ExportWorkbook(nil)
	require.NoError(t, err)

	batch, err := ParseWorkbook(buf)
	require.NoError(t, err)
	require.Empty(t, batch)
}

func TestExportImportRoundTrip(t *testing.T) {
	notes := "depo 2"
	stocks := []models.Stock{
		stockAt("Üre", models.CategoryHammadde, "8550", "12.75", "855", 3),
		stockAt("Koli 40x60", models.CategoryAmbalaj, "300", "5", "500", 2),
		stockAt("Streç Film", models.CategoryAmbalaj, "0.5", "150", "10", 1),
	}
	stocks[1].Notes = &notes
	stocks[2].Currency = models.CurrencyEUR
	stocks[2].Unit = "rulo"

	buf, err := ExportWorkbook(stocks)
	require.NoError(t, err)

	batch, err := ParseWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, batch, len(stocks))

	for i, s := range stocks {
		want := FieldsOf(s)
		got := batch[i]
		require.Equal(t, want.Name, got.Name)
		require.Equal(t, want.Category, got.Category)
		require.Equal(t, want.Unit, got.Unit)
		require.Equal(t, want.Currency, got.Currency)
		require.Equal(t, want.Notes, got.Notes)
		require.True(t, want.Quantity.Equal(got.Quantity), got.Quantity.String())
		require.True(t, want.Price.Equal(got.Price), got.Price.String())
		require.True(t, want.MinQuantity.Equal(got.MinQuantity), got.MinQuantity.String())
	}
}

func TestParseWorkbookDefaults(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Ürün Adı", "Başka Kolon"},
		[]interface{}{"Şeker", "yok sayılır"},
	)

	batch, err := ParseWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	f := batch[0]
	require.Equal(t, "Şeker", f.Name)
	require.Equal(t, models.CategoryHammadde, f.Category)
	require.Equal(t, "kg", f.Unit)
	require.Equal(t, models.CurrencyTRY, f.Currency)
	require.Equal(t, "", f.Notes)
	require.True(t, f.Quantity.IsZero())
	require.True(t, f.Price.IsZero())
	require.True(t, f.MinQuantity.IsZero())
}

func TestParseWorkbookFallbackHeaders(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"urun adi", "KATEGORI", "Min Stok", "Para Birimi"},
		[]interface{}{"Koli", "AMBALAJ", "25", "USD"},
	)

	batch, err := ParseWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.Equal(t, "Koli", batch[0].Name)
	require.Equal(t, models.CurrencyUSD, batch[0].Currency)
	require.True(t, batch[0].MinQuantity.Equal(decimal.NewFromInt(25)))
}

func TestParseWorkbookPrimaryHeaderWins(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Ürün Adı", "Urun Adi"},
		[]interface{}{"Birincil", "Yedek"},
		[]interface{}{"", "Yedek"},
	)

	batch, err := ParseWorkbook(buf)
	require.NoError(t, err)
	require.Equal(t, "Birincil", batch[0].Name)
	require.Equal(t, "Yedek", batch[1].Name)
}

func TestParseWorkbookCategoryMapping(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Ürün Adı", "Kategori"},
		[]interface{}{"A", "Ambalaj"},
		[]interface{}{"B", "ambalaj"},
		[]interface{}{"C", "Hammadde"},
		[]interface{}{"D", "bilinmeyen"},
		[]interface{}{"E", ""},
	)

	batch, err := ParseWorkbook(buf)
	require.NoError(t, err)

	got := make([]models.StockCategory, 0, len(batch))
	for _, f := range batch {
		got = append(got, f.Category)
	}
	require.Equal(t, []models.StockCategory{
		models.CategoryAmbalaj, models.CategoryAmbalaj,
		models.CategoryHammadde, models.CategoryHammadde, models.CategoryHammadde,
	}, got)
}

func TestParseWorkbookCoercesNumbers(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Ürün Adı", "Miktar", "Fiyat"},
		[]interface{}{"Metin", "abc", "on lira"},
		[]interface{}{"Türkçe", "1.234,56", "12,5 TL"},
		[]interface{}{"Negatif", "-5", "-0,5"},
		[]interface{}{"Sayı", 42, 3.25},
	)

	batch, err := ParseWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, batch, 4)

	require.True(t, batch[0].Quantity.IsZero())
	require.True(t, batch[0].Price.IsZero())

	require.True(t, batch[1].Quantity.Equal(decimal.RequireFromString("1234.56")), batch[1].Quantity.String())
	require.True(t, batch[1].Price.Equal(decimal.RequireFromString("12.5")), batch[1].Price.String())

	require.True(t, batch[2].Quantity.IsZero())
	require.True(t, batch[2].Price.IsZero())

	require.True(t, batch[3].Quantity.Equal(decimal.NewFromInt(42)))
	require.True(t, batch[3].Price.Equal(decimal.RequireFromString("3.25")))
}

func TestParseWorkbookCoercesOutOfRangeAmounts(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Ürün Adı", "Miktar", "Min. Stok", "Fiyat"},
		[]interface{}{"Üs", "1e300000000", "1e-300000000", "0e300000000"},
		[]interface{}{"Büyük", "100000000000000", "1.000.000.000.000.000", 1e20},
		[]interface{}{"Sınırda", "99999999999999", "0,5", "12.75"},
	)

	batch, err := ParseWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for _, f := range batch[:2] {
		require.True(t, f.Quantity.IsZero(), f.Name)
		require.True(t, f.MinQuantity.IsZero(), f.Name)
		require.True(t, f.Price.IsZero(), f.Name)
	}
	require.True(t, batch[2].Quantity.Equal(decimal.RequireFromString("99999999999999")))
	require.True(t, batch[2].MinQuantity.Equal(decimal.RequireFromString("0.5")))
	require.NoError(t, ValidateBatch(batch))
}

func TestParseWorkbookSkipsBlankRows(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Ürün Adı", "Miktar"},
		[]interface{}{"Üre", "10"},
		[]interface{}{"", ""},
		[]interface{}{"  ", nil},
		[]interface{}{"MAP", "20"},
	)

	batch, err := ParseWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	require.Equal(t, "Üre", batch[0].Name)
	require.Equal(t, "MAP", batch[1].Name)
}

func TestParseWorkbookRejectsNonWorkbook(t *testing.T) {
	_, err := ParseWorkbook(strings.NewReader("Ürün Adı;Miktar\nÜre;10\n"))

	var cerr *CodecError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "import", cerr.Op)
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"":                       "0",
		"12.5":                   "12.5",
		"  7 ":                   "7",
		"1.234,56":               "1234.56",
		"1.234":                  "1.234",
		"0,75":                   "0.75",
		"₺ 1.000":                "1000",
		"abc":                    "0",
		"12,5,3":                 "0",
		"-3":                     "0",
		"-1.234,56":              "0",
		"1e300000000":            "0",
		"1e-300000000":           "0",
		"100000000000000":        "0",
		"100.000.000.000.000":    "0",
		"999.999.999.999.999,99": "0",
		"99999999999999,99":      "99999999999999.99",
	}
	for in, want := range cases {
		got := parseAmount(in)
		require.True(t, got.Equal(decimal.RequireFromString(want)), "%q -> %s", in, got)
	}
}
