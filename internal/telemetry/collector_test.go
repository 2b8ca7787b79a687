package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/railzwaylabs/subtelemetry/internal/cache"
	"github.com/railzwaylabs/subtelemetry/internal/clock"
	"github.com/railzwaylabs/subtelemetry/internal/config"
	"github.com/railzwaylabs/subtelemetry/internal/scheduler"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"github.com/railzwaylabs/subtelemetry/internal/timewindow"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// --- Mocks ---

type mockOrders struct{ mock.Mock }

func (m *mockOrders) Trends(ctx context.Context, w timewindow.Window) (domain.OrderTrends, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(domain.OrderTrends), args.Error(1)
}

type mockProducts struct{ mock.Mock }

func (m *mockProducts) Metrics(ctx context.Context) (domain.ProductMetrics, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ProductMetrics), args.Error(1)
}

type mockSubscriptions struct{ mock.Mock }

func (m *mockSubscriptions) Metrics(ctx context.Context) (domain.SubscriptionMetrics, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SubscriptionMetrics), args.Error(1)
}

// --- Fixtures ---

var now = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func sampleTrends() domain.OrderTrends {
	return domain.OrderTrends{
		Window: domain.Window{Start: "2024-07-01 00:00:00", End: "2025-06-30 23:59:59"},
		ByType: domain.OrdersByType{
			Initial: []domain.InitialPoint{},
			Renewal: []domain.TypePoint{
				{Month: "2025-03", Count: 3, Gross: domain.MustMoney("35"), NonZeroCount: 2},
			},
			Switch:      []domain.TypePoint{},
			Resubscribe: []domain.TypePoint{},
		},
		Gateways: map[string][]domain.VolumePoint{
			"stripe": {{Month: "2025-03", Count: 2, Gross: domain.MustMoney("10")}},
		},
		StoreGMV: []domain.VolumePoint{},
	}
}

func sampleProducts() domain.ProductMetrics {
	return domain.ProductMetrics{
		Frequencies:   []domain.FrequencyBucket{{Period: "month", Interval: 1, Count: 4}},
		GiftableCount: 2,
	}
}

func sampleSubscriptions() domain.SubscriptionMetrics {
	return domain.SubscriptionMetrics{
		ActiveSubscribers:   6,
		InactiveSubscribers: 2,
		Frequencies:         []domain.FrequencyBucket{},
		PaymentMethods:      []domain.PaymentMethodBreakdown{},
		ByStatus:            []domain.StatusCount{},
	}
}

type fixture struct {
	collector     *Collector
	store         cache.Store
	metrics       *Metrics
	orders        *mockOrders
	products      *mockProducts
	subscriptions *mockSubscriptions
}

func newFixture(t *testing.T, store cache.Store) *fixture {
	t.Helper()
	return newFixtureWithMeter(t, store, noop.NewMeterProvider())
}

func newFixtureWithMeter(t *testing.T, store cache.Store, mp metric.MeterProvider) *fixture {
	t.Helper()

	metrics, err := NewMetrics(prometheus.NewRegistry(), mp)
	require.NoError(t, err)

	f := &fixture{
		store:         store,
		metrics:       metrics,
		orders:        new(mockOrders),
		products:      new(mockProducts),
		subscriptions: new(mockSubscriptions),
	}
	f.collector = NewCollector(Params{
		Log:   zap.NewNop(),
		Clock: clock.Fixed{At: now},
		Cache: store,
		Config: config.Config{Telemetry: config.TelemetryConfig{
			CacheKey:       "wcs_telemetry_data",
			CacheTTL:       7 * 24 * time.Hour,
			TrailingMonths: 12,
		}},
		Metrics:       metrics,
		Orders:        f.orders,
		Products:      f.products,
		Subscriptions: f.subscriptions,
	})
	return f
}

func (f *fixture) expectSuccess() {
	f.orders.On("Trends", mock.Anything, mock.Anything).Return(sampleTrends(), nil)
	f.products.On("Metrics", mock.Anything).Return(sampleProducts(), nil)
	f.subscriptions.On("Metrics", mock.Anything).Return(sampleSubscriptions(), nil)
}

func payload(t *testing.T, snap domain.Snapshot) string {
	t.Helper()
	snap.CacheStatus = ""
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	return string(raw)
}

// --- Tests ---

func TestGetMissThenHit(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore(1<<16))
	f.expectSuccess()

	first, err := f.collector.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.CacheMiss, first.CacheStatus)

	second, err := f.collector.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.CacheHit, second.CacheStatus)
	assert.Equal(t, payload(t, first), payload(t, second))

	f.orders.AssertNumberOfCalls(t, "Trends", 1)
	f.products.AssertNumberOfCalls(t, "Metrics", 1)
	f.subscriptions.AssertNumberOfCalls(t, "Metrics", 1)
}

func TestCollectStampsAndCaches(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore(1<<16))
	f.expectSuccess()

	snap, err := f.collector.Collect(t.Context())
	require.NoError(t, err)
	assert.True(t, snap.GeneratedAt.Equal(now))
	assert.GreaterOrEqual(t, snap.GenerationDurationMS, int64(0))
	assert.Empty(t, snap.CacheStatus)

	raw, found, err := f.store.Get(t.Context(), "wcs_telemetry_data")
	require.NoError(t, err)
	require.True(t, found)

	var stored map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.NotContains(t, stored, "telemetry_cache")
	assert.Contains(t, stored, "generated_at")
	assert.Contains(t, stored, "order_trends")
}

func TestCollectUsesTrailingTwelveMonths(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore(1<<16))
	f.orders.On("Trends", mock.Anything, mock.MatchedBy(func(w timewindow.Window) bool {
		return w.StartString() == "2024-07-01 00:00:00" && w.EndString() == "2025-06-30 23:59:59"
	})).Return(sampleTrends(), nil)
	f.products.On("Metrics", mock.Anything).Return(sampleProducts(), nil)
	f.subscriptions.On("Metrics", mock.Anything).Return(sampleSubscriptions(), nil)

	_, err := f.collector.Collect(t.Context())
	require.NoError(t, err)
	f.orders.AssertExpectations(t)
}

func TestGetTreatsUnusableCacheAsMiss(t *testing.T) {
	for name, raw := range map[string]string{
		"array":  `[1,2,3]`,
		"string": `"cached"`,
		"empty":  `{}`,
		"broken": `{"generated_at":`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, cache.NewMemoryStore(1<<16))
			f.expectSuccess()
			require.NoError(t, f.store.Set(t.Context(), "wcs_telemetry_data", []byte(raw), time.Hour))

			snap, err := f.collector.Get(t.Context())
			require.NoError(t, err)
			assert.Equal(t, domain.CacheMiss, snap.CacheStatus)
			f.orders.AssertNumberOfCalls(t, "Trends", 1)
		})
	}
}

func TestGetSurvivesCacheErrors(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s.SetError("READONLY")

	f := newFixture(t, cache.NewRedisStore(client))
	f.expectSuccess()

	snap, err := f.collector.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.CacheMiss, snap.CacheStatus)
	assert.EqualValues(t, 6, snap.Subscriptions.ActiveSubscribers)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t, cache.NewRedisStore(client))
	f.expectSuccess()

	first, err := f.collector.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, s.TTL("wcs_telemetry_data"))

	second, err := f.collector.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.CacheHit, second.CacheStatus)
	assert.Equal(t, payload(t, first), payload(t, second))

	s.FastForward(8 * 24 * time.Hour)
	third, err := f.collector.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.CacheMiss, third.CacheStatus)
}

func TestCollectFailureKeepsPreviousSnapshot(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore(1<<16))
	f.orders.On("Trends", mock.Anything, mock.Anything).Return(sampleTrends(), nil).Once()
	f.orders.On("Trends", mock.Anything, mock.Anything).Return(domain.OrderTrends{}, errors.New("connection reset")).Once()
	f.products.On("Metrics", mock.Anything).Return(sampleProducts(), nil)
	f.subscriptions.On("Metrics", mock.Anything).Return(sampleSubscriptions(), nil)

	good, err := f.collector.Collect(t.Context())
	require.NoError(t, err)

	_, err = f.collector.Collect(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCollectFailed)

	snap, err := f.collector.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.CacheHit, snap.CacheStatus)
	assert.Equal(t, payload(t, good), payload(t, snap))
}

func TestGetPropagatesStorageErrors(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore(1<<16))
	f.orders.On("Trends", mock.Anything, mock.Anything).Return(sampleTrends(), nil)
	f.products.On("Metrics", mock.Anything).Return(sampleProducts(), nil)
	f.subscriptions.On("Metrics", mock.Anything).Return(domain.SubscriptionMetrics{}, errors.New("table missing"))

	_, err := f.collector.Get(t.Context())
	assert.ErrorIs(t, err, domain.ErrCollectFailed)

	_, found, err := f.store.Get(t.Context(), "wcs_telemetry_data")
	require.NoError(t, err)
	assert.False(t, found)
}

type fakeScheduler struct {
	handlers   map[string]scheduler.Handler
	registered []scheduler.Recurring
}

func (s *fakeScheduler) Handle(hook string, h scheduler.Handler) {
	if s.handlers == nil {
		s.handlers = map[string]scheduler.Handler{}
	}
	s.handlers[hook] = h
}

func (s *fakeScheduler) ScheduleRecurring(_ context.Context, r scheduler.Recurring) (bool, error) {
	for _, existing := range s.registered {
		if existing.Hook == r.Hook && existing.Group == r.Group {
			return false, nil
		}
	}
	s.registered = append(s.registered, r)
	return true, nil
}

func TestRegisterSchedule(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore(1<<16))
	f.expectSuccess()
	sched := &fakeScheduler{}
	cfg := config.TelemetryConfig{InitialDelay: 10 * time.Minute, Interval: 24 * time.Hour}

	created, err := RegisterSchedule(t.Context(), sched, f.collector, cfg)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = RegisterSchedule(t.Context(), sched, f.collector, cfg)
	require.NoError(t, err)
	assert.False(t, created)

	require.Len(t, sched.registered, 1)
	assert.Equal(t, CollectHook, sched.registered[0].Hook)
	assert.Equal(t, ScheduleGroup, sched.registered[0].Group)
	assert.Equal(t, 10*time.Minute, sched.registered[0].InitialDelay)
	assert.Equal(t, 24*time.Hour, sched.registered[0].Interval)

	require.NoError(t, sched.handlers[CollectHook](t.Context(), datatypes.JSON(`[]`)))
	_, found, err := f.store.Get(t.Context(), "wcs_telemetry_data")
	require.NoError(t, err)
	assert.True(t, found)
}

// blockingOrders holds Trends open until released or its context ends.
type blockingOrders struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newBlockingOrders() *blockingOrders {
	return &blockingOrders{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingOrders) Trends(ctx context.Context, _ timewindow.Window) (domain.OrderTrends, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return sampleTrends(), nil
	case <-ctx.Done():
		return domain.OrderTrends{}, ctx.Err()
	}
}

func TestGetMissSurvivesAnotherCallerCancelling(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore(1<<16))
	f.products.On("Metrics", mock.Anything).Return(sampleProducts(), nil)
	f.subscriptions.On("Metrics", mock.Anything).Return(sampleSubscriptions(), nil)
	orders := newBlockingOrders()
	f.collector.orders = orders

	first, cancelFirst := context.WithCancel(t.Context())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.collector.Get(first)
		firstErr <- err
	}()
	<-orders.started

	type result struct {
		snap domain.Snapshot
		err  error
	}
	second := make(chan result, 1)
	go func() {
		snap, err := f.collector.Get(context.Background())
		second <- result{snap, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(orders.release)
	got := <-second
	require.NoError(t, got.err)
	assert.EqualValues(t, 6, got.snap.Subscriptions.ActiveSubscribers)
	assert.Len(t, got.snap.OrderTrends.ByType.Renewal, 1)

	_, found, err := f.store.Get(t.Context(), "wcs_telemetry_data")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestGetReturnsWhenOwnContextEnds(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore(1<<16))
	f.products.On("Metrics", mock.Anything).Return(sampleProducts(), nil)
	f.subscriptions.On("Metrics", mock.Anything).Return(sampleSubscriptions(), nil)
	orders := newBlockingOrders()
	f.collector.orders = orders
	t.Cleanup(func() { close(orders.release) })

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err := f.collector.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCollectRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	f := newFixtureWithMeter(t, cache.NewMemoryStore(1<<16), sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	f.expectSuccess()

	_, err := f.collector.Get(t.Context())
	require.NoError(t, err)
	_, err = f.collector.Get(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.collectTotal.WithLabelValues(resultSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.collectTotal.WithLabelValues(resultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.cacheReads.WithLabelValues(string(domain.CacheMiss))))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.cacheReads.WithLabelValues(string(domain.CacheHit))))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))

	var points []metricdata.HistogramDataPoint[float64]
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "subtelemetry.collect.duration" {
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				points = append(points, hist.DataPoints...)
			}
		}
	}
	require.Len(t, points, 1)
	assert.EqualValues(t, 1, points[0].Count)
	result, ok := points[0].Attributes.Value("result")
	require.True(t, ok)
	assert.Equal(t, resultSuccess, result.AsString())
}

func TestCollectFailureIsCounted(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore(1<<16))
	f.orders.On("Trends", mock.Anything, mock.Anything).Return(domain.OrderTrends{}, errors.New("connection reset"))
	f.products.On("Metrics", mock.Anything).Return(sampleProducts(), nil)
	f.subscriptions.On("Metrics", mock.Anything).Return(sampleSubscriptions(), nil)

	_, err := f.collector.Collect(t.Context())
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.collectTotal.WithLabelValues(resultFailure)))
}
