package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/pkg/e"
)

// --- фейки ---

type fakeTx struct {
	pgx.Tx
}

func (f *fakeTx) Commit(_ context.Context) error   { return nil }
func (f *fakeTx) Rollback(_ context.Context) error { return nil }

type fakeDB struct{}

func (f *fakeDB) BeginTx(_ context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	return &fakeTx{}, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]*domain.Product

	searchPage *ProductSearchPage
	lastSearch *SearchProductsQuery
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[int64]*domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (f *fakeProductRepo) Search(_ context.Context, q *SearchProductsQuery) (*ProductSearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSearch = q
	if f.searchPage != nil {
		return f.searchPage, nil
	}
	return &ProductSearchPage{}, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeProductRepo) Categories(_ context.Context) ([]string, error) { return nil, nil }

func (f *fakeProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = int64(len(f.products) + 1)
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, id int64, qty int32) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	if p.Stock < qty {
		return nil, e.ErrInsufficientStock
	}
	p.Stock -= qty
	cp := *p
	return &cp, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: make(map[string]*domain.Order)}
	for _, o := range orders {
		repo.orders[o.ID] = o
	}
	return repo
}

func (f *fakeOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.CreatedAt = time.Now()
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) List(_ context.Context, limit, offset int) ([]domain.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, int64(len(f.orders)), nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return e.ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, id string, result *domain.PaymentResult) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return false, e.ErrOrderNotFound
	}
	if o.IsPaid {
		return false, nil
	}
	now := time.Now()
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = result
	return true, nil
}

func (f *fakeOrderRepo) MarkDelivered(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return false, e.ErrOrderNotFound
	}
	if o.IsDelivered {
		return false, nil
	}
	now := time.Now()
	o.IsDelivered = true
	o.DeliveredAt = &now
	return true, nil
}

func (f *fakeOrderRepo) Summary(_ context.Context, _ time.Time) (*SummaryRes, error) {
	return &SummaryRes{}, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, ev *OutboxEvent) (*OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev.ID = int64(len(f.events) + 1)
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, _ int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(_ context.Context, _ int64) error { return nil }

func (f *fakeOutboxRepo) byType(t OutboxEventType) []*OutboxEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*OutboxEvent
	for _, ev := range f.events {
		if ev.EventType == t {
			out = append(out, ev)
		}
	}
	return out
}

type fakeCacheRepo struct {
	mu      sync.Mutex
	deleted []int64
}

func (f *fakeCacheRepo) GetProducts(_ context.Context, _ []int64) (map[int64]ProductInfo, error) {
	return map[int64]ProductInfo{}, nil
}

func (f *fakeCacheRepo) SetProducts(_ context.Context, _ []ProductInfo) error { return nil }

func (f *fakeCacheRepo) DeleteProducts(_ context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids...)
	return nil
}

type fakePaymentProvider struct {
	mu          sync.Mutex
	captureErr  error
	createErr   error
	captures    int
	createCalls int
}

func (f *fakePaymentProvider) CreateOrder(_ context.Context, req *CreatePaymentReq) (*CreatePaymentRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &CreatePaymentRes{ProviderOrderID: "PP-" + req.OrderID}, nil
}

func (f *fakePaymentProvider) Capture(_ context.Context, providerOrderID string) (*CaptureRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captures++
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return &CaptureRes{CaptureID: "CAP-1", Status: "COMPLETED", PayerEmail: "buyer@example.com"}, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

// --- хелперы ---

func testProduct(id int64, price int64, stock int32) *domain.Product {
	return &domain.Product{
		ID:    id,
		Slug:  "product",
		Name:  "Product",
		Price: price,
		Stock: stock,
	}
}

func testAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		FullName:   "John Buyer",
		Address:    "1 Main St",
		City:       "Lima",
		PostalCode: "15001",
		Country:    "PE",
	}
}

func newTestOrderUC(
	products *fakeProductRepo,
	orders *fakeOrderRepo,
	outbox *fakeOutboxRepo,
	cache *fakeCacheRepo,
	payment *fakePaymentProvider,
) *OrderUseCase {
	return NewOrderUC(
		orders,
		products,
		outbox,
		&fakeDB{},
		payment,
		cache,
		&cfg.PayPalCfg{Currency: "USD"},
		nopLogger{},
	)
}

// --- тесты ---

func TestPlaceOrderComputesBreakdown(t *testing.T) {
	products := newFakeProductRepo(
		testProduct(1, 30_00, 10),
		testProduct(2, 25_50, 10),
	)
	orders := newFakeOrderRepo()
	outbox := &fakeOutboxRepo{}
	cache := &fakeCacheRepo{}
	uc := newTestOrderUC(products, orders, outbox, cache, &fakePaymentProvider{})

	res, err := uc.PlaceOrder(context.Background(), &PlaceOrderReq{
		UserID: 7,
		Items: []PlaceOrderItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
		ShippingAddress: testAddress(),
		PaymentMethod:   "PayPal",
	})
	require.NoError(t, err)

	// 2*30.00 + 25.50 = 85.50 — доставка платная, налог 15% half-up.
	assert.Equal(t, int64(85_50), res.Prices.Items)
	assert.Equal(t, int64(10_00), res.Prices.Shipping)
	assert.Equal(t, int64(12_83), res.Prices.Tax)
	assert.Equal(t, res.Prices.Items+res.Prices.Shipping+res.Prices.Tax, res.Prices.Total)

	assert.Len(t, outbox.byType(OrderPlaced), 1)
	assert.ElementsMatch(t, []int64{1, 2}, cache.deleted)
}

func TestPlaceOrderFreeShippingOverThreshold(t *testing.T) {
	products := newFakeProductRepo(testProduct(1, 60_00, 5))
	uc := newTestOrderUC(products, newFakeOrderRepo(), &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakePaymentProvider{})

	res, err := uc.PlaceOrder(context.Background(), &PlaceOrderReq{
		UserID:          1,
		Items:           []PlaceOrderItem{{ProductID: 1, Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "PayPal",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(120_00), res.Prices.Items)
	assert.Equal(t, int64(0), res.Prices.Shipping)
	assert.Equal(t, res.Prices.Items+res.Prices.Tax, res.Prices.Total)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	products := newFakeProductRepo(testProduct(1, 10_00, 1))
	orders := newFakeOrderRepo()
	outbox := &fakeOutboxRepo{}
	uc := newTestOrderUC(products, orders, outbox, &fakeCacheRepo{}, &fakePaymentProvider{})

	_, err := uc.PlaceOrder(context.Background(), &PlaceOrderReq{
		UserID:          1,
		Items:           []PlaceOrderItem{{ProductID: 1, Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "PayPal",
	})
	require.ErrorIs(t, err, e.ErrInsufficientStock)

	assert.Empty(t, orders.orders)
	assert.Empty(t, outbox.events)
}

func TestPlaceOrderMergesDuplicateItems(t *testing.T) {
	products := newFakeProductRepo(testProduct(1, 10_00, 3))
	orders := newFakeOrderRepo()
	uc := newTestOrderUC(products, orders, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakePaymentProvider{})

	res, err := uc.PlaceOrder(context.Background(), &PlaceOrderReq{
		UserID: 1,
		Items: []PlaceOrderItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 1, Quantity: 1},
		},
		ShippingAddress: testAddress(),
		PaymentMethod:   "PayPal",
	})
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, int32(3), res.Items[0].Quantity)
	assert.Equal(t, int32(0), products.products[1].Stock)
}

func TestPlaceOrderValidation(t *testing.T) {
	uc := newTestOrderUC(newFakeProductRepo(), newFakeOrderRepo(), &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakePaymentProvider{})

	_, err := uc.PlaceOrder(context.Background(), &PlaceOrderReq{
		UserID:          1,
		ShippingAddress: testAddress(),
		PaymentMethod:   "PayPal",
	})
	assert.ErrorIs(t, err, e.ErrEmptyCart)

	_, err = uc.PlaceOrder(context.Background(), &PlaceOrderReq{
		UserID:        1,
		Items:         []PlaceOrderItem{{ProductID: 1, Quantity: 1}},
		PaymentMethod: "PayPal",
	})
	assert.ErrorIs(t, err, e.ErrValidation)
}

func TestPlaceOrderLastUnitRace(t *testing.T) {
	products := newFakeProductRepo(testProduct(1, 10_00, 1))
	orders := newFakeOrderRepo()
	uc := newTestOrderUC(products, orders, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakePaymentProvider{})

	req := func(userID int64) *PlaceOrderReq {
		return &PlaceOrderReq{
			UserID:          userID,
			Items:           []PlaceOrderItem{{ProductID: 1, Quantity: 1}},
			ShippingAddress: testAddress(),
			PaymentMethod:   "PayPal",
		}
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := int64(1); i <= 2; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := uc.PlaceOrder(context.Background(), req(userID))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, e.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int32(0), products.products[1].Stock)
	assert.Len(t, orders.orders, 1)
}

func TestPayMarksOrderPaidOnce(t *testing.T) {
	order := domain.NewOrder("ord-1", 7, []domain.OrderItem{{ProductID: 1, Price: 10_00, Quantity: 1}},
		testAddress(), "PayPal", computePrices([]domain.OrderItem{{ProductID: 1, Price: 10_00, Quantity: 1}}))
	orders := newFakeOrderRepo(order)
	outbox := &fakeOutboxRepo{}
	payment := &fakePaymentProvider{}
	uc := newTestOrderUC(newFakeProductRepo(), orders, outbox, &fakeCacheRepo{}, payment)

	req := &PayOrderReq{OrderID: "ord-1", RequesterID: 7, ProviderOrderID: "PP-1"}

	res, err := uc.Pay(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsPaid)
	require.NotNil(t, res.PaidAt)
	firstPaidAt := *res.PaidAt
	assert.Equal(t, 1, payment.captures)
	assert.Len(t, outbox.byType(OrderPaid), 1)

	// Повторная оплата — no-op: без похода к провайдеру и без события.
	res, err = uc.Pay(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsPaid)
	assert.Equal(t, firstPaidAt, *res.PaidAt)
	assert.Equal(t, 1, payment.captures)
	assert.Len(t, outbox.byType(OrderPaid), 1)
}

func TestPayCaptureFailureLeavesOrderUnpaid(t *testing.T) {
	order := domain.NewOrder("ord-1", 7, nil, testAddress(), "PayPal", domain.PriceBreakdown{})
	orders := newFakeOrderRepo(order)
	outbox := &fakeOutboxRepo{}
	payment := &fakePaymentProvider{captureErr: e.ErrPaymentProvider}
	uc := newTestOrderUC(newFakeProductRepo(), orders, outbox, &fakeCacheRepo{}, payment)

	_, err := uc.Pay(context.Background(), &PayOrderReq{OrderID: "ord-1", RequesterID: 7, ProviderOrderID: "PP-1"})
	require.ErrorIs(t, err, e.ErrPaymentProvider)

	stored, _ := orders.GetByID(context.Background(), "ord-1")
	assert.False(t, stored.IsPaid)
	assert.Empty(t, outbox.events)
}

func TestPayForbiddenForStranger(t *testing.T) {
	order := domain.NewOrder("ord-1", 7, nil, testAddress(), "PayPal", domain.PriceBreakdown{})
	uc := newTestOrderUC(newFakeProductRepo(), newFakeOrderRepo(order), &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakePaymentProvider{})

	_, err := uc.Pay(context.Background(), &PayOrderReq{OrderID: "ord-1", RequesterID: 8, ProviderOrderID: "PP-1"})
	assert.ErrorIs(t, err, e.ErrForbidden)

	// Администратору заказ доступен.
	_, err = uc.GetOrder(context.Background(), &GetOrderReq{OrderID: "ord-1", RequesterID: 8, IsAdmin: true})
	assert.NoError(t, err)
}

func TestCreatePaymentRejectsPaidOrder(t *testing.T) {
	order := domain.NewOrder("ord-1", 7, nil, testAddress(), "PayPal", domain.PriceBreakdown{Total: 50_00})
	order.IsPaid = true
	payment := &fakePaymentProvider{}
	uc := newTestOrderUC(newFakeProductRepo(), newFakeOrderRepo(order), &fakeOutboxRepo{}, &fakeCacheRepo{}, payment)

	_, err := uc.CreatePayment(context.Background(), &GetOrderReq{OrderID: "ord-1", RequesterID: 7})
	assert.ErrorIs(t, err, e.ErrValidation)
	assert.Equal(t, 0, payment.createCalls)
}

func TestDeliverRequiresPaidOrder(t *testing.T) {
	order := domain.NewOrder("ord-1", 7, nil, testAddress(), "PayPal", domain.PriceBreakdown{})
	orders := newFakeOrderRepo(order)
	outbox := &fakeOutboxRepo{}
	uc := newTestOrderUC(newFakeProductRepo(), orders, outbox, &fakeCacheRepo{}, &fakePaymentProvider{})

	_, err := uc.Deliver(context.Background(), "ord-1")
	assert.ErrorIs(t, err, e.ErrOrderNotPaid)

	orders.MarkPaid(context.Background(), "ord-1", &domain.PaymentResult{})

	res, err := uc.Deliver(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.True(t, res.IsDelivered)
	require.NotNil(t, res.DeliveredAt)
	assert.Len(t, outbox.byType(OrderDelivered), 1)

	// Повторная доставка не создаёт второго события.
	_, err = uc.Deliver(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Len(t, outbox.byType(OrderDelivered), 1)
}

func TestComputePricesInvariant(t *testing.T) {
	cases := []struct {
		name  string
		items []domain.OrderItem
	}{
		{"empty", nil},
		{"single cheap", []domain.OrderItem{{Price: 1, Quantity: 1}}},
		{"boundary", []domain.OrderItem{{Price: 100_00, Quantity: 1}}},
		{"above boundary", []domain.OrderItem{{Price: 100_01, Quantity: 1}}},
		{"many", []domain.OrderItem{{Price: 33_33, Quantity: 3}, {Price: 7, Quantity: 13}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := computePrices(tc.items)
			assert.Equal(t, p.Items+p.Shipping+p.Tax, p.Total)
			assert.GreaterOrEqual(t, p.Tax, int64(0))
		})
	}

	// Ровно на пороге доставка ещё платная.
	assert.Equal(t, int64(10_00), computePrices([]domain.OrderItem{{Price: 100_00, Quantity: 1}}).Shipping)
	assert.Equal(t, int64(0), computePrices([]domain.OrderItem{{Price: 100_01, Quantity: 1}}).Shipping)
}
