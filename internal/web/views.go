package web

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/xenking/alankar-storefront/internal/catalog"
	"github.com/xenking/alankar-storefront/internal/domain/enquiry"
	"github.com/xenking/alankar-storefront/internal/domain/product"
	"github.com/xenking/alankar-storefront/internal/pagination"
	"github.com/xenking/alankar-storefront/internal/share"
)

// Query parameters of the catalog pages.
const (
	paramCategory = "category"
	paramMetal    = "metalType"
	paramGender   = "gender"
	paramSearch   = "search"
	paramPage     = "page"
	paramImage    = "image"
	paramProduct  = catalog.ProductParam
)

// parseQuery reads the catalog selection from request parameters. Missing
// or malformed pages read as 1.
func parseQuery(v url.Values, pageSize int) product.Query {
	page, err := strconv.Atoi(v.Get(paramPage))
	if err != nil || page < 1 {
		page = 1
	}
	return product.Query{
		Filter: product.Filter{
			Category:  strings.TrimSpace(v.Get(paramCategory)),
			MetalType: strings.TrimSpace(v.Get(paramMetal)),
			Gender:    strings.TrimSpace(v.Get(paramGender)),
		},
		Search:   strings.TrimSpace(v.Get(paramSearch)),
		Page:     page,
		PageSize: pageSize,
	}
}

// linkValues renders q as page link parameters. Page 1 and the page size
// are left implicit.
func linkValues(q product.Query) url.Values {
	v := q.Values()
	v.Del("limit")
	if q.Page <= 1 {
		v.Del(paramPage)
	}
	return v
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

type filtersView struct {
	Categories []product.Category
	MetalTypes []product.MetalType
	Genders    []string
	Selected   product.Filter
	Search     string
	Err        bool
	DebounceMS int64
}

type cardView struct {
	// Href is the no-script deep link; DetailURL loads the modal partial.
	Href      string
	Code      string
	Name      string
	Price     string
	Thumbnail string
	Category  string
	Metal     string
	Badges    []string
	DetailURL string
}

type pageLink struct {
	Num     int
	Href    string
	Partial string
	Current bool
}

type gridView struct {
	Items     []cardView
	Total     int
	Err       string
	NoMatches bool
	Pages     []pageLink
	Prev      *pageLink
	Next      *pageLink
	Window    pagination.Window
}

type detailView struct {
	Code        string
	Name        string
	Price       string
	Weight      string
	Gender      string
	Category    string
	Metal       string
	Description template.HTML
	Sizes       []string
	Badges      []string
	ImageURL    string
	ImageIndex  int
	ImageCount  int
	PrevImage   string
	NextImage   string
	Link        string
	WhatsApp    string
	Err         string
	// Loading marks a placeholder built from the card summary.
	Loading bool
	Partial string
}

type contactView struct {
	Form       enquiry.Form
	Errors     map[string]string
	Sent       bool
	Err        string
	WhatsApp   string
}

type pageData struct {
	Brand   string
	Filters filtersView
	Grid    gridView
	Modal   *detailView
	Contact contactView
}

func newCard(p product.Product) cardView {
	return cardView{
		Code:      p.Code,
		Name:      p.Name,
		Price:     FormatINR(p.Price),
		Thumbnail: p.Thumbnail(),
		Category:  p.Category.DisplayName,
		Metal:     p.MetalType.DisplayName,
		Badges:    p.Badges(),
		DetailURL: "/products/" + url.PathEscape(p.Code),
	}
}

func newGrid(q product.Query, rs *product.ResultSet) gridView {
	g := gridView{
		Items:     make([]cardView, 0, len(rs.Items)),
		Total:     rs.Total,
		NoMatches: len(rs.Items) == 0,
		Window:    pagination.Compute(q.Page, rs.Total, q.PageSize),
	}
	for _, p := range rs.Items {
		c := newCard(p)
		v := linkValues(q)
		v.Set(paramProduct, p.Code)
		c.Href = withQuery("/", v)
		g.Items = append(g.Items, c)
	}

	link := func(page int) pageLink {
		lq := q
		lq.Page = page
		v := linkValues(lq)
		return pageLink{
			Num:     page,
			Href:    withQuery("/", v),
			Partial: withQuery("/catalog", v),
			Current: page == q.Page,
		}
	}
	for _, p := range g.Window.Pages {
		g.Pages = append(g.Pages, link(p))
	}
	if g.Window.HasPrev {
		l := link(q.Page - 1)
		g.Prev = &l
	}
	if g.Window.HasNext {
		l := link(q.Page + 1)
		g.Next = &l
	}
	return g
}

// imageIndex maps any requested index onto the image list, wrapping in
// both directions.
func imageIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func (s *Server) newDetail(p product.Product, image int, pageURL string) *detailView {
	link := share.ProductLink(pageURL, p.Code)
	d := &detailView{
		Code:        p.Code,
		Name:        p.Name,
		Price:       FormatINR(p.Price),
		Weight:      p.Weight,
		Gender:      p.Gender,
		Category:    p.Category.DisplayName,
		Metal:       p.MetalType.DisplayName,
		Description: s.desc.Render(p.Description),
		Sizes:       p.Sizes,
		Badges:      p.Badges(),
		ImageCount:  len(p.Images),
		Link:        link,
		WhatsApp:    "/share/" + url.PathEscape(p.Code) + "/whatsapp",
		Partial:     "/products/" + url.PathEscape(p.Code),
	}
	if d.ImageCount > 0 {
		d.ImageIndex = imageIndex(image, d.ImageCount)
		d.ImageURL = p.Images[d.ImageIndex]
	}
	if d.ImageCount > 1 {
		d.PrevImage = d.Partial + "?" + paramImage + "=" + strconv.Itoa(imageIndex(d.ImageIndex-1, d.ImageCount))
		d.NextImage = d.Partial + "?" + paramImage + "=" + strconv.Itoa(imageIndex(d.ImageIndex+1, d.ImageCount))
	}
	return d
}

func (s *Server) newFilters(vocab *product.Vocabulary, vocabErr error, q product.Query) filtersView {
	f := filtersView{
		Genders:    product.Genders,
		Selected:   q.Filter,
		Search:     q.Search,
		Err:        vocabErr != nil,
		DebounceMS: s.cfg.SearchDebounce.Milliseconds(),
	}
	if f.Selected.Gender == "" {
		f.Selected.Gender = product.GenderAll
	}
	if vocab != nil {
		f.Categories = vocab.Categories
		f.MetalTypes = vocab.MetalTypes
	}
	return f
}

func (s *Server) newContact(form enquiry.Form) contactView {
	return contactView{
		Form:     form,
		Errors:   map[string]string{},
		WhatsApp: share.ContactURL(s.cfg.Phone, ""),
	}
}
