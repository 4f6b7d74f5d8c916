package http

import (
	"time"

	"github.com/techmart/backend/internal/usecase"
)

// JSON-контракты API. Денежные суммы наружу отдаются в валюте с двумя
// знаками (number), внутри храним центы.

type ProductResponse struct {
	ID           int64     `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Brand        string    `json:"brand"`
	Price        float64   `json:"price"`
	Image        string    `json:"image"`
	CountInStock int32     `json:"countInStock"`
	Rating       float64   `json:"rating"`
	NumReviews   int32     `json:"numReviews"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ProductPageResponse struct {
	Products  []ProductResponse `json:"products"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	PageCount int               `json:"pageCount"`
}

type SaveProductRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Brand        string  `json:"brand"`
	Price        float64 `json:"price"`
	Image        string  `json:"image"`
	CountInStock int32   `json:"countInStock"`
	Rating       float64 `json:"rating"`
	NumReviews   int32   `json:"numReviews"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminUpdateUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type UserPageResponse struct {
	Users     []UserResponse `json:"users"`
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	PageCount int            `json:"pageCount"`
}

type ShippingAddressDTO struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type PlaceOrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

type PlaceOrderRequest struct {
	OrderItems      []PlaceOrderItemRequest `json:"orderItems"`
	ShippingAddress ShippingAddressDTO      `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
}

type PayOrderRequest struct {
	// ID заказа у провайдера, полученный из POST /orders/{id}/payment.
	ID string `json:"id"`
}

type OrderItemResponse struct {
	ProductID int64   `json:"productId"`
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int32   `json:"quantity"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          int64               `json:"userId"`
	OrderItems      []OrderItemResponse `json:"orderItems"`
	ShippingAddress ShippingAddressDTO  `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	ItemsPrice      float64             `json:"itemsPrice"`
	ShippingPrice   float64             `json:"shippingPrice"`
	TaxPrice        float64             `json:"taxPrice"`
	TotalPrice      float64             `json:"totalPrice"`
	IsPaid          bool                `json:"isPaid"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	IsDelivered     bool                `json:"isDelivered"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

type OrderPageResponse struct {
	Orders    []OrderResponse `json:"orders"`
	Total     int64           `json:"total"`
	Page      int             `json:"page"`
	PageCount int             `json:"pageCount"`
}

type CreatePaymentResponse struct {
	ID string `json:"id"`
}

type DailySalesResponse struct {
	Date   string  `json:"date"`
	Orders int64   `json:"orders"`
	Sales  float64 `json:"sales"`
}

type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type SummaryResponse struct {
	Users             int64                   `json:"users"`
	Orders            int64                   `json:"orders"`
	TotalSales        float64                 `json:"totalSales"`
	DailyOrders       []DailySalesResponse    `json:"dailyOrders"`
	ProductCategories []CategoryCountResponse `json:"productCategories"`
}

type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type PaypalKeyResponse struct {
	ClientID string `json:"clientId"`
}

func toProductResponse(info *usecase.ProductInfo, imageURL func(string) string) ProductResponse {
	return ProductResponse{
		ID:           info.ID,
		Slug:         info.Slug,
		Name:         info.Name,
		Description:  info.Description,
		Category:     info.Category,
		Brand:        info.Brand,
		Price:        centsToAmount(info.Price),
		Image:        imageURL(info.Image),
		CountInStock: info.Stock,
		Rating:       info.Rating,
		NumReviews:   info.NumReviews,
		CreatedAt:    info.CreatedAt,
	}
}

func toUserResponse(info *usecase.UserInfo) UserResponse {
	return UserResponse{
		ID:        info.ID,
		Name:      info.Name,
		Email:     info.Email,
		IsAdmin:   info.IsAdmin,
		CreatedAt: info.CreatedAt,
	}
}

func toOrderResponse(info *usecase.OrderInfo, imageURL func(string) string) OrderResponse {
	items := make([]OrderItemResponse, 0, len(info.Items))
	for _, item := range info.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Slug:      item.Slug,
			Name:      item.Name,
			Image:     imageURL(item.Image),
			Price:     centsToAmount(item.Price),
			Quantity:  item.Quantity,
		})
	}

	return OrderResponse{
		ID:         info.ID,
		UserID:     info.UserID,
		OrderItems: items,
		ShippingAddress: ShippingAddressDTO{
			FullName:   info.ShippingAddress.FullName,
			Address:    info.ShippingAddress.Address,
			City:       info.ShippingAddress.City,
			PostalCode: info.ShippingAddress.PostalCode,
			Country:    info.ShippingAddress.Country,
		},
		PaymentMethod: info.PaymentMethod,
		ItemsPrice:    centsToAmount(info.Prices.Items),
		ShippingPrice: centsToAmount(info.Prices.Shipping),
		TaxPrice:      centsToAmount(info.Prices.Tax),
		TotalPrice:    centsToAmount(info.Prices.Total),
		IsPaid:        info.IsPaid,
		PaidAt:        info.PaidAt,
		IsDelivered:   info.IsDelivered,
		DeliveredAt:   info.DeliveredAt,
		CreatedAt:     info.CreatedAt,
	}
}
