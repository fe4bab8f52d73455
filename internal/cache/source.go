package cache

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xenking/alankar-storefront/internal/domain/product"
)

var _ product.Source = (*Source)(nil)

// Key kinds. They prefix store keys and label metrics.
const (
	KindList    = "list"
	KindProduct = "product"
	KindFilters = "filters"
)

// Config sets the time to live per kind of cached response.
type Config struct {
	ListTTL    time.Duration
	ProductTTL time.Duration
	FiltersTTL time.Duration
}

// Source caches the responses of another product.Source in a Store.
// Errors from the wrapped source are returned as is and never cached.
// Store failures are logged and bypassed.
type Source struct {
	next  product.Source
	store Store
	cfg   Config
	group singleflight.Group

	tracer trace.Tracer
	hits   metric.Int64Counter
	misses metric.Int64Counter
}

// NewSource wraps next with a cache over store.
func NewSource(next product.Source, store Store, cfg Config, mp metric.MeterProvider, tp trace.TracerProvider) (*Source, error) {
	meter := mp.Meter("github.com/xenking/alankar-storefront/internal/cache")
	hits, err := meter.Int64Counter("storefront.cache.hits",
		metric.WithDescription("Catalog responses served from cache"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create hits counter")
	}
	misses, err := meter.Int64Counter("storefront.cache.misses",
		metric.WithDescription("Catalog responses fetched from upstream"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create misses counter")
	}
	return &Source{
		next:   next,
		store:  store,
		cfg:    cfg,
		tracer: tp.Tracer("github.com/xenking/alankar-storefront/internal/cache"),
		hits:   hits,
		misses: misses,
	}, nil
}

// List returns a cached page or fetches it upstream.
func (s *Source) List(ctx context.Context, q product.Query) (*product.ResultSet, error) {
	return load[product.ResultSet](ctx, s, KindList, q.Key(), s.cfg.ListTTL,
		func(ctx context.Context) (*product.ResultSet, error) {
			return s.next.List(ctx, q)
		})
}

// Get returns a cached product or fetches it upstream.
func (s *Source) Get(ctx context.Context, code string) (*product.Product, error) {
	return load[product.Product](ctx, s, KindProduct, code, s.cfg.ProductTTL,
		func(ctx context.Context) (*product.Product, error) {
			return s.next.Get(ctx, code)
		})
}

// Filters returns the cached vocabulary or fetches it upstream.
func (s *Source) Filters(ctx context.Context) (*product.Vocabulary, error) {
	return load[product.Vocabulary](ctx, s, KindFilters, "all", s.cfg.FiltersTTL,
		func(ctx context.Context) (*product.Vocabulary, error) {
			return s.next.Filters(ctx)
		})
}

type payload[T any] interface {
	*T
	Decode(d *jx.Decoder) error
	Encode(e *jx.Encoder)
}

// load serves key from the store, falling back to fill. Concurrent fills of
// one key share a single upstream call; every caller decodes its own copy.
func load[T any, P payload[T]](
	ctx context.Context,
	s *Source,
	kind, key string,
	ttl time.Duration,
	fill func(context.Context) (P, error),
) (P, error) {
	lg := zctx.From(ctx).With(zap.String("cache_kind", kind), zap.String("cache_key", key))
	storeKey := kind + ":" + key
	kindAttr := metric.WithAttributes(attribute.String("kind", kind))

	if b, ok, err := s.store.Get(ctx, storeKey); err != nil {
		lg.Warn("Cache read failed", zap.Error(err))
	} else if ok {
		v := P(new(T))
		err := v.Decode(jx.DecodeBytes(b))
		if err == nil {
			s.hits.Add(ctx, 1, kindAttr)
			return v, nil
		}
		lg.Warn("Cache entry undecodable", zap.Error(err))
	}
	s.misses.Add(ctx, 1, kindAttr)

	ch := s.group.DoChan(storeKey, func() (any, error) {
		fillCtx, span := s.tracer.Start(context.WithoutCancel(ctx), "cache.fill",
			trace.WithAttributes(
				attribute.String("cache.kind", kind),
				attribute.String("cache.key", key),
			),
		)
		defer span.End()

		v, err := fill(fillCtx)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		e := &jx.Encoder{}
		v.Encode(e)
		b := e.Bytes()
		if err := s.store.Set(fillCtx, storeKey, b, ttl); err != nil {
			lg.Warn("Cache write failed", zap.Error(err))
		}
		return b, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		v := P(new(T))
		if err := v.Decode(jx.DecodeBytes(r.Val.([]byte))); err != nil {
			return nil, errors.Wrapf(err, "decode %s", kind)
		}
		return v, nil
	}
}
