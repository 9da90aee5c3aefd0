package inventory

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"stok-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultUnit = "kg"

// StockRequest: API'den gelen ham gövde. Gönderilmeyen alanlar nil kalır
// ve Fields() içinde varsayılan değerlerle doldurulur.
type StockRequest struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Unit        *string          `json:"unit"`
	Quantity    *decimal.Decimal `json:"quantity"`
	MinQuantity *decimal.Decimal `json:"min_quantity"`
	Price       *decimal.Decimal `json:"price"`
	Currency    *string          `json:"currency"`
	SupplierID  *string          `json:"supplier_id"`
	Notes       *string          `json:"notes"`
}

// StockFields: bir stok kaydının değiştirilebilir alanlarının tamamı
type StockFields struct {
	Name        string               `json:"name" validate:"required,max=255"`
	Category    models.StockCategory `json:"category" validate:"oneof=hammadde ambalaj"`
	Unit        string               `json:"unit" validate:"required,max=20"`
	Quantity    decimal.Decimal      `json:"quantity" validate:"gte=0,max_amount"`
	MinQuantity decimal.Decimal      `json:"min_quantity" validate:"gte=0,max_amount"`
	Price       decimal.Decimal      `json:"price" validate:"gte=0,max_amount"`
	Currency    models.Currency      `json:"currency" validate:"oneof=TRY USD EUR"`
	SupplierID  *uuid.UUID           `json:"supplier_id,omitempty"`
	Notes       string               `json:"notes"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Fields converts the request into normalized StockFields.
func (r StockRequest) Fields() (StockFields, error) {
	f := StockFields{
		Name:        deref(r.Name),
		Category:    models.StockCategory(deref(r.Category)),
		Unit:        deref(r.Unit),
		Quantity:    deref(r.Quantity),
		MinQuantity: deref(r.MinQuantity),
		Price:       deref(r.Price),
		Currency:    models.Currency(deref(r.Currency)),
		Notes:       deref(r.Notes),
	}
	if s := strings.TrimSpace(deref(r.SupplierID)); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return StockFields{}, &ValidationError{Fields: []FieldError{{Field: "supplier_id", Message: "geçerli bir UUID olmalı"}}}
		}
		f.SupplierID = &id
	}
	return f.Normalize(), nil
}

// Normalize applies every default in one place. It is idempotent.
func (f StockFields) Normalize() StockFields {
	f.Name = strings.TrimSpace(f.Name)
	f.Unit = strings.TrimSpace(f.Unit)
	if f.Unit == "" {
		f.Unit = DefaultUnit
	}
	f.Category = normalizeCategory(string(f.Category))
	f.Currency = normalizeCurrency(string(f.Currency))
	f.Notes = strings.TrimSpace(f.Notes)
	return f
}

func lowerTR(s string) string {
	return cases.Lower(language.Turkish).String(strings.TrimSpace(s))
}

func normalizeCategory(s string) models.StockCategory {
	switch c := lowerTR(s); c {
	case "":
		return models.CategoryHammadde
	default:
		return models.StockCategory(c)
	}
}

var currencyAliases = map[string]models.Currency{
	"":    models.CurrencyTRY,
	"TL":  models.CurrencyTRY,
	"₺":   models.CurrencyTRY,
	"$":   models.CurrencyUSD,
	"€":   models.CurrencyEUR,
	"TRY": models.CurrencyTRY,
	"USD": models.CurrencyUSD,
	"EUR": models.CurrencyEUR,
}

func normalizeCurrency(s string) models.Currency {
	s = strings.ToUpper(strings.TrimSpace(s))
	if c, ok := currencyAliases[s]; ok {
		return c
	}
	return models.Currency(s)
}

// Apply overwrites every mutable column of s (full replace, no merge).
func (f StockFields) Apply(s *models.Stock) {
	s.Name = f.Name
	s.Category = f.Category
	s.Unit = f.Unit
	s.Quantity = f.Quantity
	s.MinQuantity = f.MinQuantity
	s.Price = f.Price
	s.Currency = f.Currency
	s.SupplierID = f.SupplierID
	s.Notes = nil
	if f.Notes != "" {
		notes := f.Notes
		s.Notes = &notes
	}
}

// ToModel returns a new, unsaved record carrying f.
func (f StockFields) ToModel() models.Stock {
	var s models.Stock
	f.Apply(&s)
	return s
}

// FieldsOf returns the mutable fields of an existing record.
func FieldsOf(s models.Stock) StockFields {
	f := StockFields{
		Name:        s.Name,
		Category:    s.Category,
		Unit:        s.Unit,
		Quantity:    s.Quantity,
		MinQuantity: s.MinQuantity,
		Price:       s.Price,
		Currency:    s.Currency,
		SupplierID:  s.SupplierID,
	}
	if s.Notes != nil {
		f.Notes = *s.Notes
	}
	return f
}

// Miktar ve fiyat kolonları numeric(18,4): tam kısım en fazla 14 hane.
var maxAmount = decimal.New(1, 14)

const (
	minAmountExponent = -18
	maxAmountExponent = 14
)

// AmountInRange reports whether d fits the numeric(18,4) columns.
// Üs önce kontrol edilir: 1e300000000 gibi bir değeri karşılaştırmak ya da
// float'a çevirmek dev bir big.Int üretir.
func AmountInRange(d decimal.Decimal) bool {
	if e := d.Exponent(); e < minAmountExponent || e > maxAmountExponent {
		return false
	}
	return d.Abs().LessThan(maxAmount)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			if !AmountInRange(d) {
				// max_amount bunu yakalar; negatifse gte önce düşer
				return math.Inf(d.Sign())
			}
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	if err := v.RegisterValidation("max_amount", func(fl validator.FieldLevel) bool {
		return !math.IsInf(fl.Field().Float(), 0)
	}); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "zorunlu"
	case "gte":
		return "negatif olamaz"
	case "oneof":
		return "şunlardan biri olmalı: " + fe.Param()
	case "max":
		return fmt.Sprintf("en fazla %s karakter olabilir", fe.Param())
	case "max_amount":
		return "en fazla 14 haneli bir sayı olabilir"
	default:
		return "geçersiz"
	}
}

func validateFields(f StockFields, prefix string) []FieldError {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: strings.TrimSuffix(prefix, "."), Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: prefix + fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

// Validate checks a single normalized payload.
func Validate(f StockFields) error {
	if errs := validateFields(f, ""); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ValidateBatch checks every payload of a bulk operation; an empty batch is invalid.
func ValidateBatch(batch []StockFields) error {
	if len(batch) == 0 {
		return &ValidationError{Fields: []FieldError{{Field: "stocks", Message: "en az bir stok gerekli"}}}
	}
	var errs []FieldError
	for i, f := range batch {
		errs = append(errs, validateFields(f, fmt.Sprintf("stocks[%d].", i))...)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
