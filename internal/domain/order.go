package domain

import "time"

// OrderItem — строка заказа. Снапшот товара на момент оформления,
// последующие изменения каталога на него не влияют.
type OrderItem struct {
	ProductID int64
	Slug      string
	Name      string
	Image     string
	Price     int64
	Quantity  int32
}

type ShippingAddress struct {
	FullName   string
	Address    string
	City       string
	PostalCode string
	Country    string
}

// PriceBreakdown — разбивка стоимости заказа в центах.
// Инвариант: Total = Items + Shipping + Tax.
type PriceBreakdown struct {
	Items    int64
	Shipping int64
	Tax      int64
	Total    int64
}

// PaymentResult — результат подтверждения оплаты у провайдера.
type PaymentResult struct {
	ProviderOrderID string
	CaptureID       string
	Status          string
	PayerEmail      string
}

// Order — оформленный заказ. Строки и разбивка цен неизменяемы после
// создания; меняются только флаги оплаты/доставки, и только вперёд.
type Order struct {
	ID              string // uuid
	UserID          int64
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	Prices          PriceBreakdown
	IsPaid          bool
	PaidAt          *time.Time
	PaymentResult   *PaymentResult
	IsDelivered     bool
	DeliveredAt     *time.Time
	CreatedAt       time.Time
}

func NewOrder(id string, userID int64, items []OrderItem, addr ShippingAddress, method string, prices PriceBreakdown) *Order {
	return &Order{
		ID:              id,
		UserID:          userID,
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   method,
		Prices:          prices,
	}
}
