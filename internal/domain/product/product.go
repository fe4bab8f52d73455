package product

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// GenderAll is the gender selection that disables gender filtering.
const GenderAll = "All"

// Genders lists the gender options offered by the catalog filters.
var Genders = []string{GenderAll, "Female", "Male", "Unisex"}

// Category is a product category as exposed by the catalog API.
type Category struct {
	Code        string
	DisplayName string
}

// MetalType is the metal purity of a product.
type MetalType struct {
	Code        string
	DisplayName string
}

// Product represents a catalog item. Code is the sole key used for lookup,
// caching, share links and deep links.
type Product struct {
	Code        string
	Name        string
	Description string
	Category    Category
	MetalType   MetalType
	Gender      string
	Weight      string
	Price       decimal.Decimal
	Images      []string
	IsNew       bool
	OnSale      bool
	Featured    bool
	Sizes       []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Thumbnail returns the first image URL, or an empty string.
func (p Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Badges returns the labels shown on a product card. "Featured" is only
// shown when the product is neither new nor on sale.
func (p Product) Badges() []string {
	var badges []string
	if p.IsNew {
		badges = append(badges, "New")
	}
	if p.OnSale {
		badges = append(badges, "Sale")
	}
	if len(badges) == 0 && p.Featured {
		badges = append(badges, "Featured")
	}
	return badges
}

// Filter is the user's filter selection. Empty fields do not filter.
type Filter struct {
	Category  string
	MetalType string
	Gender    string
}

// GenderParam returns the gender to send upstream, or "" when the
// selection is empty or "All".
func (f Filter) GenderParam() string {
	g := strings.TrimSpace(f.Gender)
	if g == "" || strings.EqualFold(g, GenderAll) {
		return ""
	}
	return g
}

// Query fully determines a catalog list request. Queries with equal field
// values are interchangeable for caching.
type Query struct {
	Filter   Filter
	Search   string
	Page     int
	PageSize int
}

// Values renders the query as list request parameters, omitting unset
// filters.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.PageSize))
	if q.Filter.Category != "" {
		v.Set("category", q.Filter.Category)
	}
	if q.Filter.MetalType != "" {
		v.Set("metalType", q.Filter.MetalType)
	}
	if g := q.Filter.GenderParam(); g != "" {
		v.Set("gender", g)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// Key returns a canonical string form of the query for use as a cache key.
func (q Query) Key() string {
	return q.Values().Encode()
}

// ResultSet is one page of catalog results. Total counts matching items
// across all pages.
type ResultSet struct {
	Items []Product
	Total int
}

// Vocabulary is the set of filter options offered by the catalog API.
type Vocabulary struct {
	Categories []Category
	MetalTypes []MetalType
}

// Source is the catalog data source.
type Source interface {
	List(ctx context.Context, q Query) (*ResultSet, error)
	Get(ctx context.Context, code string) (*Product, error)
	Filters(ctx context.Context) (*Vocabulary, error)
}

// DuplicateCodeError reports two products in one result sharing a code.
type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return "duplicate product code " + strconv.Quote(e.Code)
}

// CheckUnique verifies that no two items share a product code.
func CheckUnique(items []Product) error {
	seen := make(map[string]struct{}, len(items))
	for _, p := range items {
		if _, ok := seen[p.Code]; ok {
			return &DuplicateCodeError{Code: p.Code}
		}
		seen[p.Code] = struct{}{}
	}
	return nil
}

// Find returns the item with the given code.
func Find(items []Product, code string) (Product, bool) {
	for _, p := range items {
		if p.Code == code {
			return p, true
		}
	}
	return Product{}, false
}
