// Package catalogapi implements product.Source over the catalog HTTP API.
package catalogapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/alankar-storefront/internal/domain/product"
)

// DefaultTimeout bounds a single catalog API call.
const DefaultTimeout = 8 * time.Second

var _ product.Source = (*Client)(nil)

// StatusError is returned for non-2xx responses other than a missing
// product.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalog: %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("catalog: %s: status %d: %s", e.Op, e.Status, e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// Client issues catalog requests against the upstream API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// List fetches one page of products matching q.
func (c *Client) List(ctx context.Context, q product.Query) (*product.ResultSet, error) {
	endpoint, err := url.JoinPath(c.baseURL, "products")
	if err != nil {
		return nil, errors.Wrap(err, "build list url")
	}
	endpoint += "?" + q.Values().Encode()

	var rs product.ResultSet
	if err := c.get(ctx, "list products", endpoint, rs.Decode); err != nil {
		return nil, err
	}
	if rs.Items == nil {
		rs.Items = []product.Product{}
	}
	return &rs, nil
}

// Get fetches full detail for the product with the given code.
func (c *Client) Get(ctx context.Context, code string) (*product.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, product.ErrNotFound
	}
	endpoint := c.baseURL + "/products/" + url.PathEscape(code)

	var p product.Product
	if err := c.get(ctx, "get product", endpoint, p.Decode); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, product.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Filters fetches the filter vocabulary.
func (c *Client) Filters(ctx context.Context) (*product.Vocabulary, error) {
	endpoint, err := url.JoinPath(c.baseURL, "filters")
	if err != nil {
		return nil, errors.Wrap(err, "build filters url")
	}

	var v product.Vocabulary
	if err := c.get(ctx, "get filters", endpoint, v.Decode); err != nil {
		return nil, err
	}
	return &v, nil
}

// Ping checks that the upstream answers the filters endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Filters(ctx)
	return err
}

func (c *Client) get(ctx context.Context, op, endpoint string, decode func(*jx.Decoder) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrapf(err, "%s: build request", op)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s", op)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Status: resp.StatusCode, Body: drainError(resp.Body)}
	}

	if err := decode(jx.Decode(resp.Body, 4096)); err != nil {
		return errors.Wrapf(err, "%s: decode", op)
	}
	return nil
}

func drainError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
