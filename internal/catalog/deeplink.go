package catalog

import (
	"net/url"
	"strings"
	"sync"

	"github.com/xenking/alankar-storefront/internal/domain/product"
)

// ProductParam is the page URL parameter naming a product to open.
const ProductParam = "product"

// ProductCodeFromLocation extracts the product code from a page URL or a
// bare query string. It returns "" when absent or unparsable.
func ProductCodeFromLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}
	raw := location
	if i := strings.IndexByte(location, '?'); i >= 0 {
		raw = location[i+1:]
	} else if strings.Contains(location, "/") {
		return ""
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(values.Get(ProductParam))
}

// DeepLink opens the product named in the page URL once the first page of
// results is available. Each distinct code is attempted at most once, so
// a modal the user closed is not reopened by later result updates.
type DeepLink struct {
	mu        sync.Mutex
	code      string
	attempted map[string]bool
}

// NewDeepLink creates a DeepLink for the given location.
func NewDeepLink(location string) *DeepLink {
	return &DeepLink{
		code:      ProductCodeFromLocation(location),
		attempted: make(map[string]bool),
	}
}

// Code returns the code currently named by the location.
func (l *DeepLink) Code() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.code
}

// SetLocation updates the location, e.g. after history navigation.
func (l *DeepLink) SetLocation(location string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.code = ProductCodeFromLocation(location)
}

// Resolve returns the product to open for the loaded items. An empty list
// does not count as an attempt. A code absent from items is a silent
// no-op.
func (l *DeepLink) Resolve(items []product.Product) (product.Product, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.code == "" || len(items) == 0 || l.attempted[l.code] {
		return product.Product{}, false
	}
	l.attempted[l.code] = true
	return product.Find(items, l.code)
}
