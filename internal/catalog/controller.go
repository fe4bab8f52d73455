package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/xenking/alankar-storefront/internal/domain/product"
	"github.com/xenking/alankar-storefront/internal/pagination"
)

// Defaults for a catalog view.
const (
	DefaultPageSize = 8
	DefaultDebounce = 800 * time.Millisecond
)

// Config configures a Controller.
type Config struct {
	PageSize int
	Debounce time.Duration
	Clock    clockwork.Clock
	Logger   *zap.Logger
	// Signal receives a notification on every state change. A private
	// signal is created when nil.
	Signal *Signal
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Signal == nil {
		c.Signal = NewSignal()
	}
	return c
}

// State is a snapshot of a catalog view.
type State struct {
	Filter product.Filter
	// RawSearch is the search text as typed; Search is the settled term
	// used for queries.
	RawSearch string
	Search    string
	Page      int
	PageSize  int
	// Query is the last issued descriptor.
	Query product.Query
	// Result is the last accepted result, nil until one arrives. It is
	// kept when a later fetch fails.
	Result  *product.ResultSet
	Loading bool
	Err     error
	Window  pagination.Window
}

// Items returns the products of the current result.
func (s State) Items() []product.Product {
	if s.Result == nil {
		return nil
	}
	return s.Result.Items
}

// Total returns the match count of the current result.
func (s State) Total() int {
	if s.Result == nil {
		return 0
	}
	return s.Result.Total
}

// NoMatches reports a successful result with zero items, which is shown
// as "no products found" rather than as an error.
func (s State) NoMatches() bool {
	return s.Err == nil && s.Result != nil && len(s.Result.Items) == 0
}

// ResultHook observes every accepted result.
type ResultHook func(q product.Query, rs *product.ResultSet)

// Controller owns the filter, search and page state of one catalog view
// and keeps the displayed result in sync with it. Every change of the
// query descriptor issues a fetch; only the last issued fetch may update
// the result.
type Controller struct {
	src      product.Source
	cfg      Config
	lg       *zap.Logger
	debounce *Debouncer

	mu      sync.Mutex
	ctx     context.Context
	filter  product.Filter
	raw     string
	settled string
	page    int

	issued    product.Query
	hasIssued bool
	gen       uint64
	cancel    context.CancelFunc

	result  *product.ResultSet
	loading bool
	err     error
	cache   map[product.Query]*product.ResultSet
	hooks   []ResultHook
	closed  bool

	wg sync.WaitGroup
}

// NewController creates a Controller over src. No fetch is issued until
// Start.
func NewController(src product.Source, cfg Config) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		src:      src,
		cfg:      cfg,
		lg:       cfg.Logger,
		debounce: NewDebouncer(cfg.Clock, cfg.Debounce),
		page:     1,
		cache:    make(map[product.Query]*product.ResultSet),
	}
}

// Changes delivers a coalesced notification after every state change.
func (c *Controller) Changes() <-chan struct{} {
	return c.cfg.Signal.C()
}

// OnResult registers a hook run after every accepted result.
func (c *Controller) OnResult(h ResultHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
}

// Start binds fetches to ctx and issues the initial query.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.ctx != nil {
		return
	}
	c.ctx = ctx
	c.issueLocked(false)
}

// State returns a snapshot of the view.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	if c.result != nil {
		total = c.result.Total
	}
	return State{
		Filter:    c.filter,
		RawSearch: c.raw,
		Search:    c.settled,
		Page:      c.page,
		PageSize:  c.cfg.PageSize,
		Query:     c.issued,
		Result:    c.result,
		Loading:   c.loading,
		Err:       c.err,
		Window:    pagination.Compute(c.page, total, c.cfg.PageSize),
	}
}

// SetCategory selects a category; "" clears it.
func (c *Controller) SetCategory(code string) {
	c.update(func(f *product.Filter) { f.Category = code })
}

// SetMetalType selects a metal type; "" clears it.
func (c *Controller) SetMetalType(code string) {
	c.update(func(f *product.Filter) { f.MetalType = code })
}

// SetGender selects a gender; "" or "All" clears it.
func (c *Controller) SetGender(gender string) {
	c.update(func(f *product.Filter) { f.Gender = gender })
}

// SetFilter replaces the whole filter selection.
func (c *Controller) SetFilter(filter product.Filter) {
	c.update(func(f *product.Filter) { *f = filter })
}

func (c *Controller) update(fn func(*product.Filter)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	next := c.filter
	fn(&next)
	if next == c.filter {
		return
	}
	c.filter = next
	c.page = 1
	c.issueLocked(false)
}

// Type records raw search text and restarts the settle timer. The
// settled term follows once input has been quiet for the debounce delay.
func (c *Controller) Type(raw string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.raw = raw
	c.cfg.Signal.Notify()
	c.mu.Unlock()

	c.debounce.Trigger(c.settle)
}

// SearchPending reports whether typed text has not settled yet.
func (c *Controller) SearchPending() bool {
	return c.debounce.Pending()
}

func (c *Controller) settle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.settled == c.raw {
		return
	}
	c.settled = c.raw
	c.page = 1
	c.lg.Debug("Search settled", zap.String("search", c.settled))
	c.issueLocked(false)
}

// SetPage moves to page p. Once the total is known the page is bounded
// by the last page.
func (c *Controller) SetPage(p int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.result != nil {
		p = pagination.Clamp(p, c.result.Total, c.cfg.PageSize)
	}
	p = max(p, 1)
	if p == c.page {
		return
	}
	c.page = p
	c.issueLocked(false)
}

// NextPage moves forward one page.
func (c *Controller) NextPage() {
	c.SetPage(c.State().Page + 1)
}

// PrevPage moves back one page.
func (c *Controller) PrevPage() {
	c.SetPage(c.State().Page - 1)
}

// Refresh re-issues the current query.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.issueLocked(true)
}

// Close cancels the settle timer and any in-flight fetch. Later inputs
// are ignored.
func (c *Controller) Close() {
	c.debounce.Stop()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Controller) queryLocked() product.Query {
	return product.Query{
		Filter:   c.filter,
		Search:   c.settled,
		Page:     c.page,
		PageSize: c.cfg.PageSize,
	}
}

// issueLocked fetches the current descriptor unless it equals the last
// issued one and force is false. Must be called with mu held.
func (c *Controller) issueLocked(force bool) {
	defer c.cfg.Signal.Notify()

	if c.ctx == nil {
		return
	}
	q := c.queryLocked()
	if c.hasIssued && q == c.issued && !force {
		return
	}
	c.issued = q
	c.hasIssued = true
	c.gen++
	gen := c.gen

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel

	if cached, ok := c.cache[q]; ok {
		c.result = cached
	}
	c.loading = true
	c.err = nil

	c.wg.Add(1)
	go c.fetch(ctx, cancel, gen, q)
}

func (c *Controller) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, q product.Query) {
	defer c.wg.Done()
	defer cancel()

	rs, err := c.src.List(ctx, q)

	c.mu.Lock()
	if c.closed || gen != c.gen || ctx.Err() != nil {
		c.mu.Unlock()
		c.lg.Debug("Dropped stale result", zap.String("query", q.Key()))
		return
	}
	c.cancel = nil
	c.loading = false

	if err != nil {
		c.err = err
		c.cfg.Signal.Notify()
		c.mu.Unlock()
		c.lg.Warn("Catalog fetch failed", zap.String("query", q.Key()), zap.Error(err))
		return
	}
	if err := product.CheckUnique(rs.Items); err != nil {
		c.lg.Warn("Catalog result has duplicate codes", zap.String("query", q.Key()), zap.Error(err))
	}

	c.result = rs
	c.cache[q] = rs

	if last := pagination.TotalPages(rs.Total, q.PageSize); c.page > last {
		c.lg.Debug("Page past the end, correcting", zap.Int("page", c.page), zap.Int("last", last))
		c.page = last
		c.issueLocked(false)
		c.mu.Unlock()
		return
	}

	hooks := append([]ResultHook(nil), c.hooks...)
	c.cfg.Signal.Notify()
	c.mu.Unlock()

	for _, h := range hooks {
		h(q, rs)
	}
}
