// Package share builds outbound share links: product deep links, WhatsApp
// share and contact URLs, and best-effort clipboard copies.
package share

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/alankar-storefront/internal/domain/product"
)

// Storefront defaults.
const (
	DefaultBrand       = "Khatri Alankar"
	DefaultPhone       = "919934799534"
	DefaultContactText = "Hi Khatri Alankar, I have a jewelry inquiry."
)

const whatsAppBase = "https://wa.me/"

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s as a single URI component, leaving
// only A-Z a-z 0-9 and -_.!~*'() unescaped.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// ProductLink returns pageURL without query or fragment, with
// ?product=<code> appended when code is set.
func ProductLink(pageURL, code string) string {
	base := pageURL
	if u, err := url.Parse(pageURL); err == nil {
		u.RawQuery = ""
		u.ForceQuery = false
		u.Fragment = ""
		u.RawFragment = ""
		base = u.String()
	} else if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	if code == "" {
		return base
	}
	return base + "?product=" + EncodeComponent(code)
}

// Message is the text shared for a product.
func Message(p product.Product, pageURL, brand string) string {
	if brand == "" {
		brand = DefaultBrand
	}
	return fmt.Sprintf("Check out this beautiful %s (%s) from %s! %s", p.Name, p.Code, brand, pageURL)
}

// WhatsAppURL returns a wa.me link pre-filled with the share message.
func WhatsAppURL(p product.Product, pageURL, brand string) string {
	return whatsAppBase + "?text=" + EncodeComponent(Message(p, pageURL, brand))
}

// ContactURL returns a wa.me link opening a chat with phone.
func ContactURL(phone, text string) string {
	if phone == "" {
		phone = DefaultPhone
	}
	if text == "" {
		text = DefaultContactText
	}
	return whatsAppBase + phone + "?text=" + EncodeComponent(text)
}

// Clipboard writes text to a system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(ctx context.Context, text string) error

// WriteText calls f.
func (f ClipboardFunc) WriteText(ctx context.Context, text string) error {
	return f(ctx, text)
}

// CopyLink writes link to clip. Failures are logged and reported as
// false; they are never returned to the caller.
func CopyLink(ctx context.Context, clip Clipboard, link string, lg *zap.Logger) bool {
	if clip == nil {
		lg.Warn("Copy link failed", zap.String("link", link), zap.Error(errors.New("no clipboard")))
		return false
	}
	if err := clip.WriteText(ctx, link); err != nil {
		lg.Warn("Copy link failed", zap.String("link", link), zap.Error(err))
		return false
	}
	return true
}

// OSC52 is a Clipboard that asks the terminal to set the system clipboard
// through the OSC 52 escape sequence. Inside tmux or screen the sequence is
// wrapped for passthrough.
type OSC52 struct {
	W io.Writer
	// Getenv reads TMUX and TERM. Defaults to os.Getenv.
	Getenv func(key string) string
}

// WriteText emits the escape sequence for text.
func (c OSC52) WriteText(_ context.Context, text string) error {
	if c.W == nil {
		return errors.New("osc52: no terminal")
	}
	getenv := c.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	seq := osc52.New(text)
	switch {
	case getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(getenv("TERM"), "screen"):
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(c.W); err != nil {
		return errors.Wrap(err, "osc52")
	}
	return nil
}

// Terminal is a terminal file whose writes are serialized, so a program
// renderer and OSC52 copies can share it.
type Terminal struct {
	*os.File

	mu sync.Mutex
}

// NewTerminal wraps f.
func NewTerminal(f *os.File) *Terminal {
	return &Terminal{File: f}
}

func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.File.Write(p)
}

func (t *Terminal) WriteString(s string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.File.WriteString(s)
}
