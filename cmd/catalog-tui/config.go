package main

import (
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/alankar-storefront/internal/share"
)

// Config holds the terminal browser configuration, loadable from
// environment variables (CATALOG_TUI_ prefix), flags, or YAML config files.
type Config struct {
	UpstreamURL string        `usage:"Catalog API base URL; the built-in sample catalog is browsed when empty" flag:"upstream-url"`
	Timeout     time.Duration `default:"8s" usage:"Timeout of a single catalog API call"`
	PublicURL   string        `default:"http://localhost:8080/" usage:"Storefront URL that copied links point to" flag:"public-url"`
	Product     string        `usage:"Product code to open on start" flag:"product"`

	PageSize       int           `default:"8" usage:"Products per page" flag:"page-size"`
	SearchDebounce time.Duration `default:"800ms" usage:"Quiet period before typed search is sent" flag:"search-debounce"`

	Brand         string `default:"Khatri Alankar" usage:"Brand name shown in the header and share messages"`
	WhatsAppPhone string `default:"919934799534" usage:"WhatsApp number for the contact link" flag:"whatsapp-phone"`

	LogFile  string `default:"catalog-tui.log" usage:"Log file; the terminal is owned by the UI" flag:"log-file"`
	LogLevel string `default:"info" usage:"Log level" flag:"log-level"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CATALOG_TUI",
		Files:     []string{"catalog-tui.yaml", "/etc/storefront/catalog-tui.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if cfg.PageSize <= 0 {
		return nil, errors.Errorf("page size must be positive, got %d", cfg.PageSize)
	}
	return &cfg, nil
}

// location is the page URL the browser starts at, carrying the product
// deep link when one is requested.
func (c *Config) location() string {
	return share.ProductLink(c.PublicURL, c.Product)
}
