package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/alankar-storefront/internal/catalogapi"
	"github.com/xenking/alankar-storefront/internal/domain/product"
)

// --- Mock implementations ---

type listResult struct {
	rs  *product.ResultSet
	err error
}

type listCall struct {
	q    product.Query
	ctx  context.Context
	resp chan listResult
}

func (c *listCall) reply(rs *product.ResultSet, err error) {
	c.resp <- listResult{rs: rs, err: err}
}

// scriptedSource hands every List call to the test, which answers it.
// Get and Filters are served by the embedded source.
type scriptedSource struct {
	product.Source

	calls chan *listCall
	// ignoreCancel makes List wait for its reply even after the request
	// context is cancelled.
	ignoreCancel bool
}

func newScriptedSource() *scriptedSource {
	return &scriptedSource{
		Source: catalogapi.NewSample(nil),
		calls:  make(chan *listCall, 32),
	}
}

func (s *scriptedSource) List(ctx context.Context, q product.Query) (*product.ResultSet, error) {
	c := &listCall{q: q, ctx: ctx, resp: make(chan listResult, 1)}
	s.calls <- c
	if s.ignoreCancel {
		r := <-c.resp
		return r.rs, r.err
	}
	select {
	case r := <-c.resp:
		return r.rs, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *scriptedSource) next(t *testing.T) *listCall {
	t.Helper()
	select {
	case c := <-s.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected a list call")
		return nil
	}
}

func (s *scriptedSource) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-s.calls:
		t.Fatalf("unexpected list call: %s", c.q.Key())
	case <-time.After(50 * time.Millisecond):
	}
}

// --- Helpers ---

func resultOf(total int, codes ...string) *product.ResultSet {
	rs := &product.ResultSet{Items: []product.Product{}, Total: total}
	for _, code := range codes {
		rs.Items = append(rs.Items, product.Product{Code: code, Name: "Product " + code, Images: []string{"https://img.example/" + code + ".jpg"}})
	}
	return rs
}

func startController(t *testing.T, src product.Source, cfg Config) *Controller {
	t.Helper()
	c := NewController(src, cfg)
	c.Start(context.Background())
	t.Cleanup(c.Close)
	return c
}

func waitState(t *testing.T, c *Controller, cond func(State) bool) State {
	t.Helper()
	var st State
	require.Eventually(t, func() bool {
		st = c.State()
		return cond(st)
	}, 2*time.Second, time.Millisecond)
	return st
}

func settled(st State) bool { return !st.Loading }

// --- Tests ---

func TestController_InitialFetch(t *testing.T) {
	src := newScriptedSource()
	c := startController(t, src, Config{})

	call := src.next(t)
	assert.Equal(t, product.Query{Page: 1, PageSize: DefaultPageSize}, call.q)

	st := c.State()
	assert.True(t, st.Loading)
	assert.Nil(t, st.Result)

	call.reply(resultOf(25, "A", "B"), nil)
	st = waitState(t, c, settled)
	require.NotNil(t, st.Result)
	assert.Equal(t, 25, st.Total())
	assert.Equal(t, []int{1, 2, 3}, st.Window.Pages)
	assert.Equal(t, 4, st.Window.TotalPages)
	assert.False(t, st.Window.HasPrev)
	assert.True(t, st.Window.HasNext)
	assert.NoError(t, st.Err)
}

func TestController_NoFetchBeforeStart(t *testing.T) {
	src := newScriptedSource()
	c := NewController(src, Config{})
	t.Cleanup(c.Close)

	c.SetCategory(product.CategoryRing)
	src.assertNoCall(t)

	c.Start(context.Background())
	call := src.next(t)
	assert.Equal(t, product.CategoryRing, call.q.Filter.Category)
}

func TestController_StaleResponseGuard(t *testing.T) {
	src := newScriptedSource()
	src.ignoreCancel = true
	c := NewController(src, Config{})
	c.Start(context.Background())

	src.next(t).reply(resultOf(10, "INIT"), nil)
	waitState(t, c, settled)

	c.SetCategory(product.CategoryRing)
	a := src.next(t)
	c.SetCategory(product.CategoryNecklace)
	b := src.next(t)
	assert.Error(t, a.ctx.Err(), "superseded request is cancelled")

	b.reply(resultOf(1, "NL"), nil)
	st := waitState(t, c, settled)
	assert.Equal(t, "NL", st.Items()[0].Code)

	a.reply(resultOf(1, "RG"), nil)
	// Close waits for every fetch, including the stale one.
	c.Close()

	st = c.State()
	require.Len(t, st.Items(), 1)
	assert.Equal(t, "NL", st.Items()[0].Code)
	assert.Equal(t, product.CategoryNecklace, st.Query.Filter.Category)
	assert.False(t, st.Loading)
}

func TestController_DebouncedSearch(t *testing.T) {
	clock := newFakeClock()
	src := newScriptedSource()
	c := startController(t, src, Config{Clock: clock})

	src.next(t).reply(resultOf(25, "A"), nil)
	waitState(t, c, settled)
	c.SetPage(2)
	src.next(t).reply(resultOf(25, "B"), nil)
	waitState(t, c, settled)

	for i, text := range []string{"r", "ri", "rin", "ring"} {
		if i > 0 {
			clock.Advance(100 * time.Millisecond)
		}
		c.Type(text)
	}
	assert.True(t, c.SearchPending())

	clock.Advance(799 * time.Millisecond)
	src.assertNoCall(t)
	st := c.State()
	assert.Equal(t, "ring", st.RawSearch)
	assert.Empty(t, st.Search)

	clock.Advance(time.Millisecond)
	call := src.next(t)
	assert.Equal(t, "ring", call.q.Search)
	assert.Equal(t, 1, call.q.Page, "search change resets the page")

	clock.Advance(5 * time.Second)
	src.assertNoCall(t)
	assert.Equal(t, "ring", c.State().Search)
}

func TestController_SettleToEmptyRequeries(t *testing.T) {
	clock := newFakeClock()
	src := newScriptedSource()
	c := startController(t, src, Config{Clock: clock})
	src.next(t).reply(resultOf(0), nil)

	c.Type("x")
	clock.Advance(DefaultDebounce)
	assert.Equal(t, "x", src.next(t).q.Search)

	c.Type("")
	clock.Advance(DefaultDebounce)
	assert.Empty(t, src.next(t).q.Search)
}

func TestController_TypingBackToSettledValue(t *testing.T) {
	clock := newFakeClock()
	src := newScriptedSource()
	c := startController(t, src, Config{Clock: clock})
	src.next(t).reply(resultOf(0), nil)

	c.Type("a")
	c.Type("")
	clock.Advance(DefaultDebounce)
	src.assertNoCall(t)
}

func TestController_FilterResetsPage(t *testing.T) {
	src := newScriptedSource()
	c := startController(t, src, Config{})
	src.next(t).reply(resultOf(25, "A"), nil)
	waitState(t, c, settled)

	c.SetPage(3)
	call := src.next(t)
	assert.Equal(t, 3, call.q.Page)
	call.reply(resultOf(25, "C"), nil)
	waitState(t, c, settled)

	c.SetGender("Female")
	call = src.next(t)
	assert.Equal(t, 1, call.q.Page)
	assert.Equal(t, "Female", call.q.Filter.Gender)
	assert.Equal(t, 1, c.State().Page)
}

func TestController_UnchangedDescriptorNotReissued(t *testing.T) {
	src := newScriptedSource()
	c := startController(t, src, Config{})
	src.next(t).reply(resultOf(25, "A"), nil)
	waitState(t, c, settled)

	c.SetCategory("")
	c.SetFilter(product.Filter{})
	c.SetPage(1)
	c.PrevPage()
	src.assertNoCall(t)

	c.Refresh()
	assert.Equal(t, product.Query{Page: 1, PageSize: DefaultPageSize}, src.next(t).q)
}

func TestController_ErrorKeepsPreviousResult(t *testing.T) {
	src := newScriptedSource()
	c := startController(t, src, Config{})
	good := resultOf(3, "A", "B", "C")
	src.next(t).reply(good, nil)
	waitState(t, c, settled)

	c.Refresh()
	src.next(t).reply(nil, errors.New("status 502"))
	st := waitState(t, c, func(st State) bool { return st.Err != nil })

	assert.False(t, st.Loading)
	assert.Same(t, good, st.Result)
	assert.False(t, st.NoMatches())
	assert.EqualError(t, st.Err, "status 502")

	c.Refresh()
	assert.NoError(t, c.State().Err, "a new fetch clears the error")
}

func TestController_ErrorWithoutPreviousResult(t *testing.T) {
	src := newScriptedSource()
	c := startController(t, src, Config{})
	src.next(t).reply(nil, errors.New("connection refused"))

	st := waitState(t, c, func(st State) bool { return st.Err != nil })
	assert.Nil(t, st.Result)
	assert.Empty(t, st.Items())
	assert.False(t, st.NoMatches())
}

func TestController_NoMatchesIsNotError(t *testing.T) {
	src := newScriptedSource()
	c := startController(t, src, Config{})
	src.next(t).reply(resultOf(0), nil)

	st := waitState(t, c, settled)
	assert.True(t, st.NoMatches())
	assert.NoError(t, st.Err)
	assert.Equal(t, []int{1}, st.Window.Pages)
	assert.False(t, st.Window.HasNext)
	assert.False(t, st.Window.HasPrev)
}

func TestController_PageBoundedByTotal(t *testing.T) {
	src := newScriptedSource()
	c := startController(t, src, Config{})
	src.next(t).reply(resultOf(25, "A"), nil)
	waitState(t, c, settled)

	c.SetPage(10)
	call := src.next(t)
	assert.Equal(t, 4, call.q.Page)
	call.reply(resultOf(25, "D"), nil)
	waitState(t, c, settled)

	c.NextPage()
	src.assertNoCall(t)
	assert.Equal(t, 4, c.State().Page)
}

func TestController_PagePastEndCorrected(t *testing.T) {
	src := newScriptedSource()
	c := startController(t, src, Config{})
	src.next(t).reply(resultOf(25, "A"), nil)
	waitState(t, c, settled)

	c.SetPage(4)
	// The catalog shrank meanwhile: page 4 is now past the end.
	src.next(t).reply(resultOf(10), nil)

	call := src.next(t)
	assert.Equal(t, 2, call.q.Page)
	call.reply(resultOf(10, "I", "J"), nil)

	st := waitState(t, c, settled)
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, []int{1, 2}, st.Window.Pages)
}

func TestController_CachedResultShownWhileRefetching(t *testing.T) {
	src := newScriptedSource()
	c := startController(t, src, Config{})
	all := resultOf(10, "A")
	src.next(t).reply(all, nil)
	waitState(t, c, settled)

	c.SetCategory(product.CategoryRing)
	src.next(t).reply(resultOf(1, "RG"), nil)
	waitState(t, c, settled)

	c.SetCategory("")
	st := c.State()
	assert.Same(t, all, st.Result)
	assert.True(t, st.Loading)

	fresh := resultOf(11, "A", "NEW")
	src.next(t).reply(fresh, nil)
	st = waitState(t, c, settled)
	assert.Same(t, fresh, st.Result)
}

func TestController_OnResult(t *testing.T) {
	src := newScriptedSource()
	c := NewController(src, Config{})
	t.Cleanup(c.Close)

	var (
		mu   sync.Mutex
		seen []string
	)
	c.OnResult(func(q product.Query, rs *product.ResultSet) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, fmt.Sprintf("%d:%d", q.Page, rs.Total))
	})
	c.Start(context.Background())

	src.next(t).reply(resultOf(9, "A"), nil)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, time.Millisecond)

	c.Refresh()
	src.next(t).reply(nil, errors.New("boom"))
	waitState(t, c, func(st State) bool { return st.Err != nil })

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1:9"}, seen, "hooks only see accepted results")
}

func TestController_Close(t *testing.T) {
	clock := newFakeClock()
	src := newScriptedSource()
	c := NewController(src, Config{Clock: clock})
	c.Start(context.Background())
	inflight := src.next(t)

	c.Type("ring")
	c.Close()

	assert.ErrorIs(t, inflight.ctx.Err(), context.Canceled)
	clock.Advance(time.Second)
	c.SetCategory(product.CategoryRing)
	c.Refresh()
	src.assertNoCall(t)

	st := c.State()
	assert.Empty(t, st.Search)
	assert.Nil(t, st.Result)

	c.Close()
}

func TestController_WithSample(t *testing.T) {
	c := startController(t, catalogapi.NewSample(nil), Config{PageSize: 4})
	st := waitState(t, c, func(st State) bool { return st.Result != nil && !st.Loading })
	assert.Equal(t, 10, st.Total())
	assert.Equal(t, []int{1, 2, 3}, st.Window.Pages)

	c.SetMetalType(product.MetalGold750)
	st = waitState(t, c, func(st State) bool {
		return !st.Loading && st.Query.Filter.MetalType == product.MetalGold750
	})
	assert.Equal(t, 2, st.Total())
	require.NoError(t, product.CheckUnique(st.Items()))
}
