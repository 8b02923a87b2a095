package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"mirae/internal/service/checkout/domain"
	"mirae/internal/service/checkout/port"
)

// --- 出站端口的内存实现，全部并发安全 ---

type fakeCatalog struct {
	plans   []domain.Plan
	artists []domain.Artist
	promo   *domain.Promotion
	custom  domain.CustomModelOffer
	err     error
}

func (f *fakeCatalog) ActivePlans(ctx context.Context) ([]domain.Plan, error) {
	return f.plans, f.err
}

func (f *fakeCatalog) Artists(ctx context.Context) ([]domain.Artist, error) {
	return f.artists, f.err
}

func (f *fakeCatalog) ActivePromotion(ctx context.Context) (*domain.Promotion, error) {
	return f.promo, f.err
}

func (f *fakeCatalog) CustomModelSettings(ctx context.Context) (domain.CustomModelOffer, error) {
	return f.custom, f.err
}

type fakeOrderRepo struct {
	mu sync.Mutex

	// failRemaining 次 Save 调用返回错误，之后恢复正常
	failRemaining int
	saves         int
	orders        map[string]domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]domain.Order)}
}

func (f *fakeOrderRepo) Save(ctx context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.failRemaining > 0 {
		f.failRemaining--
		return errors.New("mysql is down")
	}
	f.orders[order.ID] = *order
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &order, nil
}

func (f *fakeOrderRepo) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *fakeOrderRepo) get(id string) (domain.Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	return order, ok
}

type fakeGateway struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, req *port.CheckoutSessionRequest) (*port.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &port.CheckoutSession{URL: f.url}, nil
}

type fakeMailer struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeMailer) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

type fakeTelemetry struct {
	mu     sync.Mutex
	err    error
	panics bool
	events []port.TelemetryEvent
}

func (f *fakeTelemetry) Notify(ctx context.Context, event *port.TelemetryEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("telemetry webhook exploded")
	}
	f.events = append(f.events, *event)
	return f.err
}

func (f *fakeTelemetry) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeReservations struct {
	mu       sync.Mutex
	err      error
	reserved map[string]time.Duration
	released []string
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{reserved: make(map[string]time.Duration)}
}

func (f *fakeReservations) Reserve(ctx context.Context, orderID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reserved[orderID] = ttl
	return nil
}

func (f *fakeReservations) Release(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.released = append(f.released, orderID)
	return nil
}

func (f *fakeReservations) ttlFor(orderID string) (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ttl, ok := f.reserved[orderID]
	return ttl, ok
}

func (f *fakeReservations) releaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.released)
}
