// Package telemetry assembles metric snapshots and owns their cache.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/railzwaylabs/subtelemetry/internal/cache"
	"github.com/railzwaylabs/subtelemetry/internal/clock"
	"github.com/railzwaylabs/subtelemetry/internal/config"
	ordermetricsdomain "github.com/railzwaylabs/subtelemetry/internal/ordermetrics/domain"
	productmetricsdomain "github.com/railzwaylabs/subtelemetry/internal/productmetrics/domain"
	subscriptionmetricsdomain "github.com/railzwaylabs/subtelemetry/internal/subscriptionmetrics/domain"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"github.com/railzwaylabs/subtelemetry/internal/timewindow"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/railzwaylabs/subtelemetry/internal/telemetry"

// Collector composes the aggregators into snapshots. The cache is the only
// state it writes, and only after a snapshot is complete.
type Collector struct {
	log     *zap.Logger
	clock   clock.Clock
	cache   cache.Store
	cfg     config.TelemetryConfig
	metrics *Metrics
	tracer  trace.Tracer

	orders        ordermetricsdomain.Service
	products      productmetricsdomain.Service
	subscriptions subscriptionmetricsdomain.Service

	inflight singleflight.Group
}

type Params struct {
	fx.In

	Log           *zap.Logger
	Clock         clock.Clock
	Cache         cache.Store
	Config        config.Config
	Metrics       *Metrics
	Orders        ordermetricsdomain.Service
	Products      productmetricsdomain.Service
	Subscriptions subscriptionmetricsdomain.Service
}

func NewCollector(p Params) *Collector {
	return &Collector{
		log:           p.Log.Named("telemetry.collector"),
		clock:         p.Clock,
		cache:         p.Cache,
		cfg:           p.Config.Telemetry,
		metrics:       p.Metrics,
		tracer:        otel.Tracer(tracerName),
		orders:        p.Orders,
		products:      p.Products,
		subscriptions: p.Subscriptions,
	}
}

// Get serves the cached snapshot tagged hit. Anything else, including a
// cache failure, is a miss answered by a synchronous collect. Concurrent
// misses share one collect.
func (c *Collector) Get(ctx context.Context) (domain.Snapshot, error) {
	ctx, span := c.tracer.Start(ctx, "telemetry.get")
	defer span.End()

	if snap, ok := c.cached(ctx); ok {
		snap.CacheStatus = domain.CacheHit
		c.metrics.cacheRead(domain.CacheHit)
		span.SetAttributes(attribute.String("telemetry.cache", string(domain.CacheHit)))
		return snap, nil
	}
	c.metrics.cacheRead(domain.CacheMiss)
	span.SetAttributes(attribute.String("telemetry.cache", string(domain.CacheMiss)))

	// The shared collect outlives any one caller; each caller still stops
	// waiting when its own context ends.
	ch := c.inflight.DoChan(c.cfg.CacheKey, func() (any, error) {
		return c.Collect(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Snapshot{}, res.Err
		}
		snap := res.Val.(domain.Snapshot)
		snap.CacheStatus = domain.CacheMiss
		return snap, nil
	}
}

func (c *Collector) cached(ctx context.Context) (domain.Snapshot, bool) {
	raw, found, err := c.cache.Get(ctx, c.cfg.CacheKey)
	if err != nil {
		c.log.Warn("telemetry cache read failed", zap.Error(err))
		return domain.Snapshot{}, false
	}
	if !found || len(raw) == 0 {
		return domain.Snapshot{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		c.log.Warn("telemetry cache holds no snapshot")
		return domain.Snapshot{}, false
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.log.Warn("telemetry cache entry unreadable", zap.Error(err))
		return domain.Snapshot{}, false
	}
	snap.CacheStatus = ""
	return snap, true
}

// Collect recomputes every metric and replaces the cached snapshot. On
// failure nothing is written and the previous snapshot stays in place.
func (c *Collector) Collect(ctx context.Context) (domain.Snapshot, error) {
	ctx, span := c.tracer.Start(ctx, "telemetry.collect")
	defer span.End()

	generatedAt := c.clock.Now(ctx)
	started := time.Now()
	window := timewindow.Trailing(generatedAt, c.cfg.TrailingMonths)
	span.SetAttributes(
		attribute.String("telemetry.window.start", window.StartString()),
		attribute.String("telemetry.window.end", window.EndString()),
	)

	var snap domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trends, err := c.orders.Trends(gctx, window)
		if err != nil {
			return fmt.Errorf("order trends: %w", err)
		}
		snap.OrderTrends = trends
		return nil
	})
	g.Go(func() error {
		products, err := c.products.Metrics(gctx)
		if err != nil {
			return fmt.Errorf("product metrics: %w", err)
		}
		snap.Products = products
		return nil
	})
	g.Go(func() error {
		subscriptions, err := c.subscriptions.Metrics(gctx)
		if err != nil {
			return fmt.Errorf("subscription metrics: %w", err)
		}
		snap.Subscriptions = subscriptions
		return nil
	})

	if err := g.Wait(); err != nil {
		c.metrics.observeCollect(ctx, resultFailure, time.Since(started))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Error("telemetry collect failed", zap.Error(err))
		return domain.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrCollectFailed, err)
	}

	elapsed := time.Since(started)
	snap.GeneratedAt = generatedAt
	snap.GenerationDurationMS = elapsed.Milliseconds()
	c.metrics.observeCollect(ctx, resultSuccess, elapsed)

	raw, err := json.Marshal(snap)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.cache.Set(ctx, c.cfg.CacheKey, raw, c.cfg.CacheTTL); err != nil {
		c.log.Warn("telemetry cache write failed", zap.Error(err))
	}

	c.log.Info("telemetry collected",
		zap.String("window_start", window.StartString()),
		zap.String("window_end", window.EndString()),
		zap.Int64("duration_ms", snap.GenerationDurationMS),
	)
	return snap, nil
}
