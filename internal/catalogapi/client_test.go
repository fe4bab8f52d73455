package catalogapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/alankar-storefront/internal/domain/product"
)

type recorder struct {
	mu   sync.Mutex
	urls []string
}

func (r *recorder) add(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, req.URL.String())
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

// newUpstream serves the sample catalog in the API wire format.
func newUpstream(t *testing.T, sample *Sample) (*httptest.Server, *recorder) {
	t.Helper()
	seen := &recorder{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		seen.add(r)
		q := r.URL.Query()
		page := atoiOr(q.Get("page"), 1)
		limit := atoiOr(q.Get("limit"), 8)
		rs, err := sample.List(r.Context(), product.Query{
			Filter: product.Filter{
				Category:  q.Get("category"),
				MetalType: q.Get("metalType"),
				Gender:    q.Get("gender"),
			},
			Search:   q.Get("search"),
			Page:     page,
			PageSize: limit,
		})
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var e jx.Encoder
		rs.Encode(&e)
		_, _ = w.Write(e.Bytes())
	})
	mux.HandleFunc("GET /products/{code}", func(w http.ResponseWriter, r *http.Request) {
		seen.add(r)
		p, err := sample.Get(r.Context(), r.PathValue("code"))
		if err != nil {
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
			return
		}
		var e jx.Encoder
		p.Encode(&e)
		_, _ = w.Write(e.Bytes())
	})
	mux.HandleFunc("GET /filters", func(w http.ResponseWriter, r *http.Request) {
		seen.add(r)
		var e jx.Encoder
		product.ReferenceVocabulary.Encode(&e)
		_, _ = w.Write(e.Bytes())
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, seen
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func TestClient_List(t *testing.T) {
	srv, seen := newUpstream(t, NewSample(nil))
	c := NewClient(srv.URL + "/")

	rs, err := c.List(context.Background(), product.Query{
		Filter:   product.Filter{MetalType: product.MetalGold916, Gender: "All"},
		Page:     1,
		PageSize: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, rs.Total)
	require.Len(t, rs.Items, 3)
	assert.Equal(t, "KA-RG001", rs.Items[0].Code)

	urls := seen.all()
	require.Len(t, urls, 1)
	u, err := url.Parse(urls[0])
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "G916", q.Get("metalType"))
	assert.False(t, q.Has("gender"), "gender All must be omitted")
	assert.False(t, q.Has("category"))
	assert.False(t, q.Has("search"))
}

func TestClient_ListEmpty(t *testing.T) {
	srv, _ := newUpstream(t, NewSample(nil))
	c := NewClient(srv.URL)

	rs, err := c.List(context.Background(), product.Query{Search: "platinum", Page: 1, PageSize: 8})
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Total)
	assert.NotNil(t, rs.Items)
	assert.Empty(t, rs.Items)
}

func TestClient_Get(t *testing.T) {
	srv, seen := newUpstream(t, NewSample(nil))
	c := NewClient(srv.URL)

	p, err := c.Get(context.Background(), "KA-RG001")
	require.NoError(t, err)
	assert.Equal(t, "Diamond Solitaire Ring", p.Name)
	assert.Len(t, p.Images, 2)
	assert.Equal(t, []string{"/products/KA-RG001"}, seen.all())
}

func TestClient_GetEscapesCode(t *testing.T) {
	var rawPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Get(context.Background(), "KA/RG 1")
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Equal(t, "/products/KA%2FRG%201", rawPath)
}

func TestClient_GetNotFound(t *testing.T) {
	srv, _ := newUpstream(t, NewSample(nil))

	_, err := NewClient(srv.URL).Get(context.Background(), "NOPE")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()
	c := NewClient(srv.URL)

	_, err := c.List(context.Background(), product.Query{Page: 1, PageSize: 8})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Equal(t, "upstream exploded", se.Body)
	assert.Equal(t, "list products", se.Op)

	_, err = c.Get(context.Background(), "KA-RG001")
	require.ErrorAs(t, err, &se)
	assert.NotErrorIs(t, err, product.ErrNotFound)
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": [{"code": 1}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).List(context.Background(), product.Query{Page: 1, PageSize: 8})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products: decode")
}

func TestClient_Filters(t *testing.T) {
	srv, _ := newUpstream(t, NewSample(nil))

	v, err := NewClient(srv.URL).Filters(context.Background())
	require.NoError(t, err)
	assert.Len(t, v.Categories, 11)
	assert.Len(t, v.MetalTypes, 2)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv, _ := newUpstream(t, NewSample(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).List(ctx, product.Query{Page: 1, PageSize: 8})
	require.ErrorIs(t, err, context.Canceled)
}
