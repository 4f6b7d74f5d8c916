package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID          int64      `db:"id"`
	Slug        string     `db:"slug"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Category    string     `db:"category"`
	Brand       string     `db:"brand"`
	Price       int64      `db:"price"`
	Image       string     `db:"image"`
	Stock       int32      `db:"stock"`
	Rating      float64    `db:"rating"`
	NumReviews  int32      `db:"num_reviews"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

// UserModel представляет запись таблицы users в PostgreSQL.
type UserModel struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

// OrderModel представляет запись таблицы orders в PostgreSQL.
// Поля payment_* заполняются при подтверждении оплаты.
type OrderModel struct {
	ID                 string     `db:"id"`
	UserID             int64      `db:"user_id"`
	ShippingFullName   string     `db:"shipping_full_name"`
	ShippingAddress    string     `db:"shipping_address"`
	ShippingCity       string     `db:"shipping_city"`
	ShippingPostalCode string     `db:"shipping_postal_code"`
	ShippingCountry    string     `db:"shipping_country"`
	PaymentMethod      string     `db:"payment_method"`
	ItemsPrice         int64      `db:"items_price"`
	ShippingPrice      int64      `db:"shipping_price"`
	TaxPrice           int64      `db:"tax_price"`
	TotalPrice         int64      `db:"total_price"`
	IsPaid             bool       `db:"is_paid"`
	PaidAt             *time.Time `db:"paid_at"`
	PaymentProviderID  *string    `db:"payment_provider_order_id"`
	PaymentCaptureID   *string    `db:"payment_capture_id"`
	PaymentStatus      *string    `db:"payment_status"`
	PaymentPayerEmail  *string    `db:"payment_payer_email"`
	IsDelivered        bool       `db:"is_delivered"`
	DeliveredAt        *time.Time `db:"delivered_at"`
	CreatedAt          time.Time  `db:"created_at"`
}

// OrderItemModel представляет запись таблицы order_items в PostgreSQL.
type OrderItemModel struct {
	ID        int64  `db:"id"`
	OrderID   string `db:"order_id"`
	ProductID int64  `db:"product_id"`
	Slug      string `db:"slug"`
	Name      string `db:"name"`
	Image     string `db:"image"`
	Price     int64  `db:"price"`
	Quantity  int32  `db:"quantity"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	OrderID     string     `db:"order_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
