package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/xenking/alankar-storefront/internal/domain/product"
)

// DetailState is a snapshot of the product detail view.
type DetailState struct {
	Open bool
	Code string
	// Product is the grid summary until Resolved, then the full detail.
	Product  product.Product
	Resolved bool
	Loading  bool
	Err      error
	// Image is the zero-based index of the selected image.
	Image int
}

// ImageURL returns the selected image URL.
func (s DetailState) ImageURL() string {
	if s.Image < 0 || s.Image >= len(s.Product.Images) {
		return s.Product.Thumbnail()
	}
	return s.Product.Images[s.Image]
}

// CanNavigateImages reports whether next/previous image controls apply.
func (s DetailState) CanNavigateImages() bool {
	return len(s.Product.Images) > 1
}

// Detail resolves full product detail for the detail view. Resolved
// products are cached by code for the lifetime of the Detail; a response
// for any code other than the one currently open is discarded.
type Detail struct {
	src    product.Source
	lg     *zap.Logger
	signal *Signal
	scroll *ScrollLock

	mu       sync.Mutex
	state    DetailState
	cache    map[string]*product.Product
	gen      uint64
	cancel   context.CancelFunc
	release  func()
	shutdown bool

	wg sync.WaitGroup
}

// NewDetail creates a Detail over src. The scroll lock is held while the
// view is open; a nil lock disables locking.
func NewDetail(src product.Source, scroll *ScrollLock, signal *Signal, lg *zap.Logger) *Detail {
	if signal == nil {
		signal = NewSignal()
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Detail{
		src:    src,
		lg:     lg,
		signal: signal,
		scroll: scroll,
		cache:  make(map[string]*product.Product),
	}
}

// Changes delivers a coalesced notification after every state change.
func (d *Detail) Changes() <-chan struct{} {
	return d.signal.C()
}

// State returns a snapshot of the view.
func (d *Detail) State() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Open shows summary immediately and resolves full detail by its code.
func (d *Detail) Open(ctx context.Context, summary product.Product) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.shutdown {
		return
	}
	code := summary.Code
	if d.state.Open && d.state.Code == code && (d.state.Resolved || d.state.Loading) {
		return
	}

	d.cancelLocked()
	if d.release == nil && d.scroll != nil {
		d.release = d.scroll.Acquire()
	}

	d.state = DetailState{
		Open:    true,
		Code:    code,
		Product: summary,
		Loading: true,
	}
	defer d.signal.Notify()

	if cached, ok := d.cache[code]; ok {
		d.resolveLocked(*cached)
		return
	}

	d.gen++
	gen := d.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.fetch(fetchCtx, cancel, gen, code)
}

// Retry re-fetches the open product after a failure.
func (d *Detail) Retry(ctx context.Context) {
	st := d.State()
	if !st.Open || st.Err == nil {
		return
	}
	d.Open(ctx, st.Product)
}

func (d *Detail) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, code string) {
	defer d.wg.Done()
	defer cancel()

	p, err := d.src.Get(ctx, code)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.shutdown || gen != d.gen || !d.state.Open || d.state.Code != code || ctx.Err() != nil {
		d.lg.Debug("Dropped stale detail", zap.String("code", code))
		return
	}
	d.cancel = nil
	defer d.signal.Notify()

	if err != nil {
		d.state.Loading = false
		d.state.Err = err
		d.lg.Warn("Product detail fetch failed", zap.String("code", code), zap.Error(err))
		return
	}
	if p.Code != code {
		d.state.Loading = false
		d.state.Err = product.ErrNotFound
		d.lg.Warn("Product detail code mismatch", zap.String("code", code), zap.String("got", p.Code))
		return
	}
	d.cache[code] = p
	d.resolveLocked(*p)
}

func (d *Detail) resolveLocked(p product.Product) {
	d.state.Product = p
	d.state.Resolved = true
	d.state.Loading = false
	d.state.Err = nil
	switch n := len(p.Images); {
	case n == 0:
		d.state.Image = 0
	case d.state.Image >= n:
		d.state.Image = n - 1
	}
}

// NextImage selects the next image, wrapping to the first.
func (d *Detail) NextImage() {
	d.step(1)
}

// PrevImage selects the previous image, wrapping to the last.
func (d *Detail) PrevImage() {
	d.step(-1)
}

// SelectImage selects image i modulo the image count.
func (d *Detail) SelectImage(i int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.state.Product.Images)
	if !d.state.Open || n == 0 {
		return
	}
	d.state.Image = ((i % n) + n) % n
	d.signal.Notify()
}

func (d *Detail) step(delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.state.Product.Images)
	if !d.state.Open || n <= 1 {
		return
	}
	d.state.Image = (d.state.Image + delta + n) % n
	d.signal.Notify()
}

// Close ends the view, abandons any in-flight fetch and releases the
// scroll lock.
func (d *Detail) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
}

func (d *Detail) closeLocked() {
	if !d.state.Open {
		return
	}
	d.cancelLocked()
	d.gen++
	d.state.Open = false
	d.state.Loading = false
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.signal.Notify()
}

func (d *Detail) cancelLocked() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Shutdown closes the view and waits for in-flight fetches. Later calls
// to Open are ignored.
func (d *Detail) Shutdown() {
	d.mu.Lock()
	d.closeLocked()
	d.shutdown = true
	d.mu.Unlock()

	d.wg.Wait()
}
