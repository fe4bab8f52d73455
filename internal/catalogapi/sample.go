package catalogapi

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/alankar-storefront/internal/domain/product"
)

var _ product.Source = (*Sample)(nil)

// Sample is an in-memory catalog with the same list semantics as the
// upstream API. It backs the storefront when no upstream is configured.
type Sample struct {
	products []product.Product
	vocab    product.Vocabulary
}

// NewSample returns a catalog serving products. A nil slice selects the
// reference catalog.
func NewSample(products []product.Product) *Sample {
	if products == nil {
		products = SampleProducts()
	}
	return &Sample{
		products: products,
		vocab:    product.ReferenceVocabulary,
	}
}

// List filters, searches and paginates the in-memory products.
func (s *Sample) List(ctx context.Context, q product.Query) (*product.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	gender := q.Filter.GenderParam()

	var matched []product.Product
	for _, p := range s.products {
		if q.Filter.Category != "" && p.Category.Code != q.Filter.Category {
			continue
		}
		if q.Filter.MetalType != "" && p.MetalType.Code != q.Filter.MetalType {
			continue
		}
		if gender != "" && !strings.EqualFold(p.Gender, gender) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Code), search) {
			continue
		}
		matched = append(matched, p)
	}

	limit := q.PageSize
	if limit <= 0 {
		limit = len(matched)
	}
	page := max(q.Page, 1)
	start := min((page-1)*limit, len(matched))
	end := min(start+limit, len(matched))

	return &product.ResultSet{
		Items: slices.Clone(matched[start:end]),
		Total: len(matched),
	}, nil
}

// Get returns the product with the given code.
func (s *Sample) Get(ctx context.Context, code string) (*product.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := product.Find(s.products, code)
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// Filters returns the reference vocabulary.
func (s *Sample) Filters(ctx context.Context) (*product.Vocabulary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := s.vocab
	return &v, nil
}

// SampleProducts returns the reference catalog.
func SampleProducts() []product.Product {
	created := time.Date(2025, 8, 19, 2, 13, 13, 907_000_000, time.UTC)
	img := func(id string) string {
		return "https://images.unsplash.com/photo-" + id + "?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=400"
	}
	item := func(code, name, desc, cat, metal, gender, weight string, price int64, images, sizes []string) product.Product {
		c, _ := product.CategoryByCode(cat)
		m, _ := product.MetalTypeByCode(metal)
		return product.Product{
			Code:        code,
			Name:        name,
			Description: desc,
			Category:    c,
			MetalType:   m,
			Gender:      gender,
			Weight:      weight,
			Price:       decimal.NewFromInt(price),
			Images:      images,
			Sizes:       sizes,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
	}

	products := []product.Product{
		item("KA-RG001", "Diamond Solitaire Ring",
			"Elegant 1ct diamond ring crafted in premium 18k gold. This timeless piece features a brilliant-cut diamond set in a classic solitaire setting, perfect for engagements or special occasions.",
			product.CategoryRing, product.MetalGold916, "Female", "3.5g", 125000,
			[]string{img("1605100804763-247f67b3557e"), img("1517841905240-472988babdf9")},
			[]string{"14", "16", "18", "20"}),
		item("KA-NL002", "Traditional Gold Necklace",
			"Handcrafted 22k gold necklace with intricate traditional patterns. A perfect blend of heritage craftsmanship and contemporary elegance.",
			product.CategoryNecklace, product.MetalGold916, "Female", "45g", 185000,
			[]string{img("1599643478518-a784e5dc4c8f")}, []string{"16", "18", "20"}),
		item("KA-ER003", "Chandelier Earrings",
			"Traditional design with modern elegance. These stunning chandelier earrings feature intricate gold work with precious stone accents.",
			product.CategoryEarring, product.MetalGold916, "Female", "8g", 65000,
			[]string{img("1535632787350-4e68ef0ac584")}, []string{"One Size"}),
		item("KA-BG004", "Designer Bangles Set",
			"Set of 4 bangles in 916 gold with contemporary design elements. Perfect for both casual and formal occasions.",
			product.CategoryBangle, product.MetalGold916, "Female", "32g", 95000,
			[]string{img("1515562141207-7a88fb7ce338")}, []string{"2.4", "2.6", "2.8"}),
		item("KA-BR005", "Men's Gold Bracelet",
			"Bold and stylish 22k gold bracelet for men. A statement piece for any occasion.",
			product.CategoryBracelet, product.MetalGold916, "Male", "18g", 72000,
			[]string{img("1519125323398-675f0ddb6308")}, []string{"M", "L"}),
		item("KA-ER006", "Pearl Drop Earrings",
			"Elegant pearl drop earrings set in 18k gold. Perfect for weddings and festive occasions.",
			product.CategoryEarring, product.MetalGold750, "Female", "5g", 34000,
			[]string{img("1517841905240-472988babdf9")}, []string{"One Size"}),
		item("KA-CH007", "Classic Gold Chain",
			"Simple and classic 22k gold chain. A must-have for every jewelry collection.",
			product.CategoryChain, product.MetalGold916, "Unisex", "12g", 48000,
			[]string{img("1465101046530-73398c7f28ca")}, []string{"18", "20", "22"}),
		item("KA-PD008", "Emerald Pendant Set",
			"Stunning pendant set with emerald stones and 18k gold. Includes matching earrings.",
			product.CategoryPendant, product.MetalGold750, "Female", "10g", 56000,
			[]string{img("1506744038136-46273834b3fb")}, []string{"One Size"}),
		item("KA-NP009", "Ruby Studded Nose Pin",
			"Delicate nose pin studded with rubies, crafted in 22k gold.",
			product.CategoryNosePin, product.MetalGold916, "Female", "1g", 8000,
			[]string{img("1519125323398-675f0ddb6308")}, []string{"One Size"}),
		item("KA-AK010", "Kids' Gold Kada",
			"Cute and sturdy gold kada for kids, made with 916 gold.",
			product.CategoryAnklet, product.MetalGold916, "Kids", "6g", 21000,
			[]string{img("1515562141207-7a88fb7ce338")}, []string{"S", "M"}),
	}

	products[0].IsNew = true
	products[1].Featured = true
	products[2].OnSale = true
	products[4].IsNew = true
	products[5].OnSale = true
	products[6].Featured = true
	products[7].IsNew = true
	products[8].OnSale = true
	products[9].IsNew = true
	return products
}
