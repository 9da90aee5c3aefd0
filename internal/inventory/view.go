package inventory

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"stok-backend/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// CategoryAll: kategori filtresi uygulanmaz
const CategoryAll = "all"

// SortMode: listede kullanıcının seçtiği sıralama. Boş değer created_at DESC demektir.
type SortMode string

const (
	SortNone            SortMode = ""
	SortQuantityDesc    SortMode = "quantity_desc"
	SortTotalValueDesc  SortMode = "total_value_desc"
	sortNoneQueryString          = "none"
)

func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.TrimSpace(s)) {
	case SortNone, sortNoneQueryString:
		return SortNone, nil
	case SortQuantityDesc:
		return SortQuantityDesc, nil
	case SortTotalValueDesc:
		return SortTotalValueDesc, nil
	default:
		return SortNone, fmt.Errorf("geçersiz sıralama: %q", s)
	}
}

// Next: none -> quantity_desc -> total_value_desc -> none
func (m SortMode) Next() SortMode {
	switch m {
	case SortNone:
		return SortQuantityDesc
	case SortQuantityDesc:
		return SortTotalValueDesc
	default:
		return SortNone
	}
}

func (m SortMode) String() string {
	if m == SortNone {
		return sortNoneQueryString
	}
	return string(m)
}

type ListQuery struct {
	Category string // CategoryAll veya bir models.StockCategory
	Search   string
	Sort     SortMode
}

// ParseListQuery validates raw query parameters. Missing category means "all".
func ParseListQuery(category, search, sortMode string) (ListQuery, error) {
	q := ListQuery{Category: CategoryAll, Search: strings.TrimSpace(search)}

	switch c := lowerTR(category); c {
	case "", CategoryAll:
	case string(models.CategoryHammadde), string(models.CategoryAmbalaj):
		q.Category = c
	default:
		return ListQuery{}, fmt.Errorf("geçersiz kategori: %q", category)
	}

	mode, err := ParseSortMode(sortMode)
	if err != nil {
		return ListQuery{}, err
	}
	q.Sort = mode
	return q, nil
}

// Filter is the part of the query the repository can apply.
func (q ListQuery) Filter() ListFilter {
	f := ListFilter{Search: q.Search}
	if q.Category != CategoryAll && q.Category != "" {
		f.Category = models.StockCategory(q.Category)
	}
	return f
}

func containsFold(s, substr string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}

// Matches reports whether s passes both the category and the search filter.
func (q ListQuery) Matches(s models.Stock) bool {
	if q.Category != CategoryAll && q.Category != "" && string(s.Category) != q.Category {
		return false
	}
	return q.Search == "" || containsFold(s.Name, q.Search)
}

func baseLess(a, b models.Stock) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// ApplyView returns a new slice holding the filtered records in display order.
// The input is never modified; every sort starts again from the base order.
func ApplyView(records []models.Stock, q ListQuery) []models.Stock {
	out := make([]models.Stock, 0, len(records))
	for _, r := range records {
		if r.DeletedAt.Valid {
			continue
		}
		if q.Matches(r) {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return baseLess(out[i], out[j]) })

	switch q.Sort {
	case SortQuantityDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Quantity.GreaterThan(out[j].Quantity)
		})
	case SortTotalValueDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].TotalValue().GreaterThan(out[j].TotalValue())
		})
	}
	return out
}

type Summary struct {
	Count      int
	TotalValue decimal.Decimal
	LowStock   int
}

// Summarize aggregates an already filtered sequence. Currencies are summed as-is.
func Summarize(records []models.Stock) Summary {
	sum := Summary{TotalValue: decimal.Zero}
	for _, r := range records {
		sum.Count++
		sum.TotalValue = sum.TotalValue.Add(r.TotalValue())
		if r.IsLowStock() {
			sum.LowStock++
		}
	}
	return sum
}
