package service

import (
	"context"
	"testing"
	"time"

	"pronto-sync/internal/core/cache"
	notifyadapters "pronto-sync/internal/features/notifications/adapters"
	notifications "pronto-sync/internal/features/notifications/domain"
	notifyservice "pronto-sync/internal/features/notifications/service"
	"pronto-sync/internal/features/orders/adapters"
	"pronto-sync/internal/features/orders/domain"
	pronto "pronto-sync/internal/features/pronto/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStoreFront is a mock implementation of ports.StoreFront.
type MockStoreFront struct {
	mock.Mock
}

func (m *MockStoreFront) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockStoreFront) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	return m.Called(ctx, orderID, status).Error(0)
}

func (m *MockStoreFront) AddNote(ctx context.Context, orderID int64, note string) error {
	return m.Called(ctx, orderID, note).Error(0)
}

func (m *MockStoreFront) AddShipmentTracking(ctx context.Context, orderID int64, carrier, trackingNumber string) error {
	return m.Called(ctx, orderID, carrier, trackingNumber).Error(0)
}

// MockProntoClient is a mock implementation of ports.Client.
type MockProntoClient struct {
	mock.Mock
}

func (m *MockProntoClient) Submit(ctx context.Context, env pronto.Environment, payload *pronto.OrderPayload) (string, error) {
	args := m.Called(ctx, env, payload)
	return args.String(0), args.Error(1)
}

func (m *MockProntoClient) FetchOrderNumber(ctx context.Context, env pronto.Environment, transactionID string) (string, error) {
	args := m.Called(ctx, env, transactionID)
	return args.String(0), args.Error(1)
}

func (m *MockProntoClient) FetchShipment(ctx context.Context, env pronto.Environment, orderNumber string) (*pronto.TrackingRef, error) {
	args := m.Called(ctx, env, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pronto.TrackingRef), args.Error(1)
}

// MockNotifier is a mock implementation of ports.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, msg notifications.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// stubGate admits or holds every order and counts evaluations.
type stubGate struct {
	store    *adapters.RedisOrderStore
	admitted bool
	calls    int
}

func (g *stubGate) Evaluate(ctx context.Context, order *domain.Order) (bool, error) {
	g.calls++
	meta, err := g.store.GetMeta(ctx, order.ID)
	if err != nil {
		return false, err
	}
	meta.Gate.Evaluated = true
	meta.Gate.IsInternational = !g.admitted
	meta.Gate.PreventSync = !g.admitted
	return g.admitted, g.store.SaveMeta(ctx, order.ID, meta)
}

// clock is a settable time source.
type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	mr         *miniredis.Miniredis
	store      *adapters.RedisOrderStore
	storefront *MockStoreFront
	client     *MockProntoClient
	notifier   *MockNotifier
	clock      *clock
	orch       *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	leases, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { leases.Close() })

	formatter, err := pronto.NewFormatter("WEB", "1.1")
	require.NoError(t, err)

	f := &fixture{
		mr:         mr,
		store:      adapters.NewRedisOrderStore(rdb),
		storefront: new(MockStoreFront),
		client:     new(MockProntoClient),
		notifier:   new(MockNotifier),
		clock:      &clock{t: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)},
	}
	alerts := notifyservice.NewDispatcher(f.notifier, notifyadapters.NewRedisAlertOutbox(rdb), "ops@shop.test")
	locker := adapters.NewCacheOrderLocker(leases, time.Minute, 5*time.Second)
	f.orch = NewOrchestrator(f.store, locker, f.storefront, f.client, formatter, alerts, pronto.EnvironmentTest)
	f.orch.now = f.clock.Now
	return f
}

func testOrder(id int64) *domain.Order {
	return &domain.Order{
		ID:            id,
		Status:        domain.OrderStatusProcessing,
		CreatedAt:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		PaymentMethod: "stripe",
		Total:         decimal.RequireFromString("110"),
		Shipping: domain.Address{
			FirstName: "Jane", LastName: "Citizen", Address1: "1 Main St",
			City: "Sydney", State: "NSW", Postcode: "2000", Country: "AU",
		},
		Items: []domain.LineItem{{ID: 1, Name: "Widget", SKU: "W-1", Quantity: 1, Total: decimal.RequireFromString("110")}},
	}
}

func (f *fixture) seedOrder(t *testing.T, id int64) {
	t.Helper()
	require.NoError(t, f.store.SaveOrder(context.Background(), testOrder(id)))
}

// seedSubmitted stores an order that Pronto accepted at the current clock time.
func (f *fixture) seedSubmitted(t *testing.T, id int64, txn string) {
	t.Helper()
	f.seedOrder(t, id)
	meta := &domain.Meta{
		Submission:  &domain.Submission{TransactionUUID: txn, SyncedAt: f.clock.Now()},
		Environment: "test",
	}
	require.NoError(t, f.store.SaveMeta(context.Background(), id, meta))
}

func (f *fixture) allowStorefrontUpdates() {
	f.storefront.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.storefront.On("AddNote", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}
