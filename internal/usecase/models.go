package usecase

import (
	"time"

	"github.com/techmart/backend/internal/domain"
)

// CATALOG

// SortOrder — порядок сортировки результатов поиска.
type SortOrder string

const (
	SortNewest     SortOrder = "newest"
	SortPriceAsc   SortOrder = "lowest"
	SortPriceDesc  SortOrder = "highest"
	SortRatingDesc SortOrder = "toprated"
)

// SearchProductsReq — сырые параметры поиска из query string.
// Пустое значение или "all" означает отсутствие фильтра.
type SearchProductsReq struct {
	Category  string
	Query     string
	PriceFrom int64 // центы, -1 — фильтр не задан
	PriceTo   int64 // центы, -1 — фильтр не задан
	MinRating float64
	Order     SortOrder
	Page      int
}

// SearchProductsQuery — нормализованный запрос к репозиторию.
type SearchProductsQuery struct {
	Category  string
	Query     string
	PriceFrom int64
	PriceTo   int64
	MinRating float64
	Order     SortOrder
	Limit     int
	Offset    int
}

type ProductSearchPage struct {
	Products []domain.Product
	Total    int64
}

type SearchProductsRes struct {
	Products  []ProductInfo
	Total     int64
	Page      int
	PageCount int
}

// ProductInfo — DTO товара для внешнего использования и кэша.
type ProductInfo struct {
	ID          int64
	Slug        string
	Name        string
	Description string
	Category    string
	Brand       string
	Price       int64
	Image       string
	Stock       int32
	Rating      float64
	NumReviews  int32
	CreatedAt   time.Time
}

// SaveProductReq — типизированный контракт создания/обновления товара.
type SaveProductReq struct {
	Name        string
	Description string
	Category    string
	Brand       string
	Price       int64
	Image       string
	Stock       int32
	Rating      float64
	NumReviews  int32
}

// USERS

type SignupReq struct {
	Name     string
	Email    string
	Password string
}

type SigninReq struct {
	Email    string
	Password string
}

type UpdateProfileReq struct {
	Name     string
	Email    string
	Password string // пустая строка — пароль не меняется
}

type AdminUpdateUserReq struct {
	Name    string
	Email   string
	IsAdmin bool
}

type UserInfo struct {
	ID        int64
	Name      string
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
}

// AuthRes — профиль + свежий bearer-токен.
type AuthRes struct {
	User  UserInfo
	Token string
}

type UserPage struct {
	Users     []UserInfo
	Total     int64
	Page      int
	PageCount int
}

// ORDERS

type PlaceOrderItem struct {
	ProductID int64
	Quantity  int32
}

type PlaceOrderReq struct {
	UserID          int64
	Items           []PlaceOrderItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// GetOrderReq несёт заказ и права запрашивающего: владелец или админ.
type GetOrderReq struct {
	OrderID     string
	RequesterID int64
	IsAdmin     bool
}

type PayOrderReq struct {
	OrderID         string
	RequesterID     int64
	IsAdmin         bool
	ProviderOrderID string
}

type OrderInfo struct {
	ID              string
	UserID          int64
	Items           []domain.OrderItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	Prices          domain.PriceBreakdown
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
	CreatedAt       time.Time
}

type OrderPage struct {
	Orders    []OrderInfo
	Total     int64
	Page      int
	PageCount int
}

// PAYMENT

type CreatePaymentReq struct {
	OrderID    string
	TotalCents int64
	Currency   string
}

type CreatePaymentRes struct {
	ProviderOrderID string
}

type CaptureRes struct {
	CaptureID  string
	Status     string
	PayerEmail string
}

// REPORT

type DailySales struct {
	Date   string // YYYY-MM-DD
	Orders int64
	Sales  int64 // центы
}

type CategoryCount struct {
	Category string
	Count    int64
}

type SummaryRes struct {
	NumUsers          int64
	NumOrders         int64
	TotalSales        int64 // центы, только оплаченные заказы
	DailyOrders       []DailySales
	ProductCategories []CategoryCount
}

// INFRASTRUCTURE

type UploadImageReq struct {
	Data     []byte
	MimeType string
	Size     int64
	Name     string // оригинальное имя файла (для логов)
}

type UploadImageRes struct {
	Key string
	URL string
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	OrderPlaced    OutboxEventType = "order.placed"
	OrderPaid      OutboxEventType = "order.paid"
	OrderDelivered OutboxEventType = "order.delivered"
)

type OutboxEvent struct {
	ID          int64
	EventID     string // uuid
	EventType   OutboxEventType
	OrderID     string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OrderEventPayload — JSON-тело событий жизненного цикла заказа.
type OrderEventPayload struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	OrderID    string `json:"order_id"`
	UserID     int64  `json:"user_id"`
	TotalCents int64  `json:"total_cents"`
	OccurredAt int64  `json:"occurred_at"` // unix nano
}

// MAPPERS

func NewProductInfo(p *domain.Product) *ProductInfo {
	return &ProductInfo{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Image:       p.Image,
		Stock:       p.Stock,
		Rating:      p.Rating,
		NumReviews:  p.NumReviews,
		CreatedAt:   p.CreatedAt,
	}
}

func NewUserInfo(u *domain.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func NewOrderInfo(o *domain.Order) *OrderInfo {
	return &OrderInfo{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           o.Items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Prices:          o.Prices,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, orderID string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		OrderID:   orderID,
		Payload:   payload,
		Status:    Pending,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{Key: key, Payload: payload}
}

func NewUploadImageReq(data []byte, mimeType string, size int64, name string) *UploadImageReq {
	return &UploadImageReq{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}
