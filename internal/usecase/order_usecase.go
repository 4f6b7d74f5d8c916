package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/logger"
)

const (
	// freeShippingFromCents — порог бесплатной доставки (itemsPrice > 100.00).
	freeShippingFromCents = 100_00
	shippingPriceCents    = 10_00
	// taxRatePercent — налог от суммы товаров, округление half-up в центах.
	taxRatePercent = 15
)

// OrderUseCase реализует оформление заказа, оплату и доставку.
type OrderUseCase struct {
	orderRepo   OrderRepository
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	payment     PaymentProvider
	cacheRepo   CacheRepository
	paypalCfg   *cfg.PayPalCfg
	logger      logger.Logger
}

func NewOrderUC(
	orderRepo OrderRepository,
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	payment PaymentProvider,
	cacheRepo CacheRepository,
	paypalCfg *cfg.PayPalCfg,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		payment:     payment,
		cacheRepo:   cacheRepo,
		paypalCfg:   paypalCfg,
		logger:      logger,
	}
}

// PlaceOrder превращает корзину в заказ. Цены пересчитываются по каталогу,
// клиентским ценам сервер не доверяет. Списание остатков и вставка заказа
// выполняются в одной транзакции: любая нехватка остатка откатывает всё.
func (o *OrderUseCase) PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*OrderInfo, error) {
	const op = "OrderUseCase.PlaceOrder"

	items, err := validatePlaceOrder(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, o.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	orderItems := make([]domain.OrderItem, 0, len(items))
	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		// Условное списание: остаток не уходит ниже нуля, при нехватке
		// транзакция откатывается целиком.
		product, derr := o.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
		if derr != nil {
			err = derr
			return nil, e.Wrap(op, err)
		}

		orderItems = append(orderItems, domain.OrderItem{
			ProductID: product.ID,
			Slug:      product.Slug,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
		productIDs = append(productIDs, product.ID)
	}

	order := domain.NewOrder(
		uuid.NewString(),
		req.UserID,
		orderItems,
		req.ShippingAddress,
		req.PaymentMethod,
		computePrices(orderItems),
	)

	created, err := o.orderRepo.Create(ctx, order)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = o.enqueueEvent(ctx, OrderPlaced, created); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Остатки изменились — закэшированные товары устарели.
	if cerr := o.cacheRepo.DeleteProducts(ctx, productIDs); cerr != nil {
		o.logger.Warnf("Failed to invalidate product cache: %v", e.Wrap(op, cerr))
	}

	return NewOrderInfo(created), nil
}

// GetOrder возвращает заказ владельцу или администратору.
func (o *OrderUseCase) GetOrder(ctx context.Context, req *GetOrderReq) (*OrderInfo, error) {
	const op = "OrderUseCase.GetOrder"

	order, err := o.authorizedOrder(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewOrderInfo(order), nil
}

func (o *OrderUseCase) ListMine(ctx context.Context, userID int64) ([]OrderInfo, error) {
	const op = "OrderUseCase.ListMine"

	orders, err := o.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return toOrderInfos(orders), nil
}

func (o *OrderUseCase) ListOrders(ctx context.Context, page int) (*OrderPage, error) {
	const (
		op       = "OrderUseCase.ListOrders"
		pageSize = 20
	)

	if page < 1 {
		page = 1
	}

	orders, total, err := o.orderRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &OrderPage{
		Orders:    toOrderInfos(orders),
		Total:     total,
		Page:      page,
		PageCount: pageCount(total, pageSize),
	}, nil
}

func (o *OrderUseCase) DeleteOrder(ctx context.Context, id string) error {
	const op = "OrderUseCase.DeleteOrder"

	if err := o.orderRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// CreatePayment открывает платёж у провайдера на полную сумму заказа.
func (o *OrderUseCase) CreatePayment(ctx context.Context, req *GetOrderReq) (*CreatePaymentRes, error) {
	const op = "OrderUseCase.CreatePayment"

	order, err := o.authorizedOrder(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if order.IsPaid {
		return nil, e.Wrap(op, e.WrapField("order already paid", e.ErrValidation))
	}

	res, err := o.payment.CreateOrder(ctx, &CreatePaymentReq{
		OrderID:    order.ID,
		TotalCents: order.Prices.Total,
		Currency:   o.paypalCfg.Currency,
	})
	if err != nil {
		// Заказ остаётся неоплаченным, клиент может повторить.
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// Pay подтверждает списание у провайдера и помечает заказ оплаченным.
// Идемпотентно: оплата уже оплаченного заказа — успешный no-op без похода
// к провайдеру и без повторного события.
func (o *OrderUseCase) Pay(ctx context.Context, req *PayOrderReq) (*OrderInfo, error) {
	const op = "OrderUseCase.Pay"

	order, err := o.authorizedOrder(ctx, &GetOrderReq{
		OrderID:     req.OrderID,
		RequesterID: req.RequesterID,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if order.IsPaid {
		return NewOrderInfo(order), nil
	}

	if strings.TrimSpace(req.ProviderOrderID) == "" {
		return nil, e.Wrap(op, e.WrapField("provider_order_id", e.ErrValidation))
	}

	// Однократная попытка: при сбое заказ остаётся неоплаченным,
	// повтор — ответственность клиента.
	capture, err := o.payment.Capture(ctx, req.ProviderOrderID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	result := &domain.PaymentResult{
		ProviderOrderID: req.ProviderOrderID,
		CaptureID:       capture.CaptureID,
		Status:          capture.Status,
		PayerEmail:      capture.PayerEmail,
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, o.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	marked, err := o.orderRepo.MarkPaid(ctx, order.ID, result)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if marked {
		order.IsPaid = true
		if err = o.enqueueEvent(ctx, OrderPaid, order); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	paid, err := o.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewOrderInfo(paid), nil
}

// Deliver помечает оплаченный заказ доставленным. Обратного перехода нет.
func (o *OrderUseCase) Deliver(ctx context.Context, id string) (*OrderInfo, error) {
	const op = "OrderUseCase.Deliver"

	order, err := o.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !order.IsPaid {
		return nil, e.Wrap(op, e.ErrOrderNotPaid)
	}

	if order.IsDelivered {
		return NewOrderInfo(order), nil
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, o.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	marked, err := o.orderRepo.MarkDelivered(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if marked {
		if err = o.enqueueEvent(ctx, OrderDelivered, order); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	delivered, err := o.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewOrderInfo(delivered), nil
}

// authorizedOrder загружает заказ и проверяет право доступа запрашивающего.
func (o *OrderUseCase) authorizedOrder(ctx context.Context, req *GetOrderReq) (*domain.Order, error) {
	order, err := o.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if !req.IsAdmin && order.UserID != req.RequesterID {
		return nil, e.ErrForbidden
	}

	return order, nil
}

// enqueueEvent кладёт событие жизненного цикла заказа в outbox в рамках
// текущей транзакции.
func (o *OrderUseCase) enqueueEvent(ctx context.Context, eventType OutboxEventType, order *domain.Order) error {
	eventID := uuid.NewString()
	payload, err := json.Marshal(OrderEventPayload{
		EventID:    eventID,
		EventType:  string(eventType),
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalCents: order.Prices.Total,
		OccurredAt: time.Now().UnixNano(),
	})
	if err != nil {
		return err
	}

	_, err = o.outboxRepo.Create(ctx, NewOutboxEvent(eventID, eventType, order.ID, payload))
	return err
}

// computePrices собирает разбивку стоимости в центах.
// Инвариант Total = Items + Shipping + Tax выполняется по построению.
func computePrices(items []domain.OrderItem) domain.PriceBreakdown {
	var itemsPrice int64
	for _, item := range items {
		itemsPrice += item.Price * int64(item.Quantity)
	}

	var shipping int64 = shippingPriceCents
	if itemsPrice > freeShippingFromCents {
		shipping = 0
	}

	tax := (itemsPrice*taxRatePercent + 50) / 100

	return domain.PriceBreakdown{
		Items:    itemsPrice,
		Shipping: shipping,
		Tax:      tax,
		Total:    itemsPrice + shipping + tax,
	}
}

// validatePlaceOrder проверяет запрос и схлопывает дубли товаров,
// суммируя количество.
func validatePlaceOrder(req *PlaceOrderReq) ([]PlaceOrderItem, error) {
	if len(req.Items) == 0 {
		return nil, e.ErrEmptyCart
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, e.WrapField("quantity", e.ErrValidation)
		}
	}

	addr := req.ShippingAddress
	if strings.TrimSpace(addr.FullName) == "" ||
		strings.TrimSpace(addr.Address) == "" ||
		strings.TrimSpace(addr.City) == "" ||
		strings.TrimSpace(addr.PostalCode) == "" ||
		strings.TrimSpace(addr.Country) == "" {
		return nil, e.WrapField("shipping_address", e.ErrValidation)
	}

	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, e.WrapField("payment_method", e.ErrValidation)
	}

	merged := make(map[int64]int32, len(req.Items))
	for _, item := range req.Items {
		merged[item.ProductID] += item.Quantity
	}

	items := make([]PlaceOrderItem, 0, len(merged))
	for id, qty := range merged {
		items = append(items, PlaceOrderItem{ProductID: id, Quantity: qty})
	}

	// Детерминированный порядок списания — меньше шансов на взаимные
	// блокировки при конкурентных заказах.
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	return items, nil
}

func toOrderInfos(orders []domain.Order) []OrderInfo {
	infos := make([]OrderInfo, 0, len(orders))
	for i := range orders {
		infos = append(infos, *NewOrderInfo(&orders[i]))
	}
	return infos
}
