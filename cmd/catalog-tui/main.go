// Command catalog-tui browses the jewellery catalog in a terminal.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xenking/alankar-storefront/internal/catalog"
	"github.com/xenking/alankar-storefront/internal/catalogapi"
	"github.com/xenking/alankar-storefront/internal/domain/product"
	"github.com/xenking/alankar-storefront/internal/share"
	"github.com/xenking/alankar-storefront/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "catalog-tui:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lg, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src product.Source
	if cfg.UpstreamURL != "" {
		src = catalogapi.NewClient(cfg.UpstreamURL, catalogapi.WithHTTPClient(&http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}))
	} else {
		lg.Info("No upstream URL configured, browsing the sample catalog")
		src = catalogapi.NewSample(nil)
	}

	session := catalog.NewSession(src, catalog.SessionConfig{
		Catalog: catalog.Config{
			PageSize: cfg.PageSize,
			Debounce: cfg.SearchDebounce,
			Logger:   lg,
		},
		Location: cfg.location(),
		OnScrollLock: func(locked bool) {
			lg.Debug("Scroll lock changed", zap.Bool("locked", locked))
		},
	})
	session.Start(ctx)
	defer session.Close()

	// Renders and clipboard copies share one serialized terminal writer.
	term := share.NewTerminal(os.Stdout)
	model := tui.New(ctx, session, tui.Config{
		PublicURL: cfg.PublicURL,
		Brand:     cfg.Brand,
		Phone:     cfg.WhatsAppPhone,
		Clipboard: share.OSC52{W: term},
		Logger:    lg,
	})

	lg.Info("Starting catalog browser", zap.String("upstream", cfg.UpstreamURL))
	if _, err := tea.NewProgram(model, tea.WithOutput(term), tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil &&
		!errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run program")
	}
	return nil
}

// newLogger writes JSON logs to path, keeping the terminal for the UI.
func newLogger(path, level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
