// Package web serves the server-rendered storefront: the catalog page,
// htmx partials for the grid and product modal, share redirects and the
// contact form.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/alankar-storefront/internal/domain/enquiry"
	"github.com/xenking/alankar-storefront/internal/domain/product"
	"github.com/xenking/alankar-storefront/internal/share"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Defaults for Config.
const (
	DefaultPageSize       = 8
	DefaultSearchDebounce = 800 * time.Millisecond
)

// Config configures the storefront pages.
type Config struct {
	// PublicURL is the canonical page URL used in share links. When empty
	// it is derived from the request.
	PublicURL      string
	PageSize       int
	SearchDebounce time.Duration
	Brand          string
	Phone          string
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.SearchDebounce <= 0 {
		c.SearchDebounce = DefaultSearchDebounce
	}
	if c.Brand == "" {
		c.Brand = share.DefaultBrand
	}
	if c.Phone == "" {
		c.Phone = share.DefaultPhone
	}
	return c
}

// Server renders the storefront.
type Server struct {
	src       product.Source
	enquiries *enquiry.Service
	cfg       Config
	tmpl      *template.Template
	desc      *descriptionRenderer
}

// New parses the embedded templates and returns a Server.
func New(src product.Source, enquiries *enquiry.Service, cfg Config) (*Server, error) {
	funcs := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}
	tmpl, err := template.New("storefront").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	return &Server{
		src:       src,
		enquiries: enquiries,
		cfg:       cfg.withDefaults(),
		tmpl:      tmpl,
		desc:      newDescriptionRenderer(),
	}, nil
}

// Routes returns the storefront router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/catalog", s.handleCatalog)
	r.Get("/products/{code}", s.handleProduct)
	r.Get("/share/{code}/whatsapp", s.handleShareWhatsApp)
	r.Post("/contact", s.handleContact)
	return r
}

// pageURL is the canonical URL share links point at.
func (s *Server) pageURL(r *http.Request) string {
	if s.cfg.PublicURL != "" {
		return s.cfg.PublicURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: r.Host, Path: "/"}).String()
}

// render executes the named template into a buffer first, so a template
// failure still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		zctx.From(r.Context()).Error("Render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
