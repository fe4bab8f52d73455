package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete storefront configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	UpstreamURL string `usage:"Catalog API base URL; the built-in sample catalog is served when empty" flag:"upstream-url"`
	DatabaseURL string `usage:"PostgreSQL connection URL for enquiries (STOREFRONT_DATABASE_URL or DATABASE_URL); enquiries are only logged when empty" flag:"database-url"`
	RedisURL    string `usage:"Redis URL for the shared catalog cache (STOREFRONT_REDIS_URL or REDIS_URL); an in-process cache is used when empty" flag:"redis-url"`
	PublicURL   string `usage:"Public storefront URL used in share links; derived from the request when empty" flag:"public-url"`

	PageSize        int           `default:"8" usage:"Products per catalog page" flag:"page-size"`
	SearchDebounce  time.Duration `default:"800ms" usage:"Quiet period before typed search is sent" flag:"search-debounce"`
	UpstreamTimeout time.Duration `default:"8s" usage:"Timeout of a single catalog API call" flag:"upstream-timeout"`

	Brand         string `default:"Khatri Alankar" usage:"Brand name shown in the header and share messages"`
	WhatsAppPhone string `default:"919934799534" usage:"WhatsApp number for the contact link" flag:"whatsapp-phone"`

	Cache     CacheConfig
	RateLimit RateLimitConfig
	Graceful  GracefulConfig
}

// CacheConfig sets cache lifetimes per kind of catalog response.
type CacheConfig struct {
	ListTTL     time.Duration `default:"1m"  usage:"Lifetime of cached catalog pages" flag:"cache-list-ttl"`
	ProductTTL  time.Duration `default:"5m"  usage:"Lifetime of cached product details" flag:"cache-product-ttl"`
	FiltersTTL  time.Duration `default:"30m" usage:"Lifetime of the cached filter vocabulary" flag:"cache-filters-ttl"`
	MaxEntries  int           `default:"1024" usage:"Maximum entries of the in-process cache" flag:"cache-max-entries"`
	RedisPrefix string        `default:"storefront:" usage:"Key prefix in Redis" flag:"cache-redis-prefix"`
}

// RateLimitConfig controls the per-client sliding window rate limiter
// applied to form submissions.
type RateLimitConfig struct {
	Max    int           `default:"10" usage:"Max submissions per window"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.PageSize <= 0 {
		return errors.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.SearchDebounce < 0 {
		return errors.Errorf("search debounce must not be negative, got %s", c.SearchDebounce)
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.RedisURL == "" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
