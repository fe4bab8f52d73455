package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/xenking/alankar-storefront/internal/domain/product"
)

// VocabularyState is the filter vocabulary with its own load status.
type VocabularyState struct {
	Vocabulary *product.Vocabulary
	Loading    bool
	Err        error
}

// SessionConfig configures a Session.
type SessionConfig struct {
	Catalog Config
	// Location is the page URL the session was opened with.
	Location string
	// OnScrollLock observes scroll lock transitions.
	OnScrollLock func(locked bool)
}

// Session is one catalog view: the query controller, the detail view with
// its scroll lock, the deep link and the filter vocabulary. Every
// component notifies the same Signal.
type Session struct {
	Catalog *Controller
	Detail  *Detail
	Scroll  *ScrollLock
	Link    *DeepLink

	src    product.Source
	lg     *zap.Logger
	signal *Signal

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	vocab   VocabularyState
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewSession wires a catalog view over src.
func NewSession(src product.Source, cfg SessionConfig) *Session {
	ccfg := cfg.Catalog.withDefaults()
	scroll := NewScrollLock(cfg.OnScrollLock)
	s := &Session{
		Catalog: NewController(src, ccfg),
		Detail:  NewDetail(src, scroll, ccfg.Signal, ccfg.Logger),
		Scroll:  scroll,
		Link:    NewDeepLink(cfg.Location),
		src:     src,
		lg:      ccfg.Logger,
		signal:  ccfg.Signal,
	}
	s.Catalog.OnResult(s.resolveDeepLink)
	return s
}

// Changes delivers a coalesced notification after any component changes.
func (s *Session) Changes() <-chan struct{} {
	return s.signal.C()
}

// Start loads the vocabulary and the first page.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.vocab.Loading = true
	ctx = s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loadVocabulary(ctx)
	s.Catalog.Start(ctx)
}

// Vocabulary returns the filter vocabulary state.
func (s *Session) Vocabulary() VocabularyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vocab
}

// OpenProduct opens the detail view for a grid item.
func (s *Session) OpenProduct(summary product.Product) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return
	}
	s.Detail.Open(ctx, summary)
}

// ReloadVocabulary retries a failed vocabulary load.
func (s *Session) ReloadVocabulary() {
	s.mu.Lock()
	if s.closed || s.ctx == nil || s.vocab.Loading || s.vocab.Err == nil {
		s.mu.Unlock()
		return
	}
	s.vocab.Loading = true
	s.vocab.Err = nil
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loadVocabulary(ctx)
}

func (s *Session) loadVocabulary(ctx context.Context) {
	defer s.wg.Done()

	v, err := s.src.Filters(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.vocab.Loading = false
	if err != nil {
		s.vocab.Err = err
		s.lg.Warn("Filter vocabulary fetch failed", zap.Error(err))
	} else {
		s.vocab.Vocabulary = v
		s.vocab.Err = nil
	}
	s.signal.Notify()
}

func (s *Session) resolveDeepLink(_ product.Query, rs *product.ResultSet) {
	p, ok := s.Link.Resolve(rs.Items)
	if !ok {
		return
	}
	s.lg.Debug("Opening deep-linked product", zap.String("code", p.Code))
	s.OpenProduct(p)
}

// Close tears the view down: the debounce timer is stopped, fetches are
// cancelled and the scroll lock is released.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.Catalog.Close()
	s.Detail.Shutdown()
	s.wg.Wait()
}
