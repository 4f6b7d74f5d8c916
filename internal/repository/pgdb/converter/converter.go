package converter

import (
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
}

// UserConverter преобразует сущности User между domain и моделью PostgreSQL.
type UserConverter interface {
	ToModel(entity *domain.User) *UserModel
	ToEntity(model *UserModel) *domain.User
}

// OrderConverter преобразует сущности Order между domain и моделями PostgreSQL.
// Заказ раскладывается на строку orders и строки order_items.
type OrderConverter interface {
	ToModel(entity *domain.Order) (*OrderModel, []*OrderItemModel)
	ToEntity(model *OrderModel, items []*OrderItemModel) *domain.Order
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type productConverter struct{}

func NewProductConverter() ProductConverter { return &productConverter{} }

func (productConverter) ToModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          entity.ID,
		Slug:        entity.Slug,
		Name:        entity.Name,
		Description: entity.Description,
		Category:    entity.Category,
		Brand:       entity.Brand,
		Price:       entity.Price,
		Image:       entity.Image,
		Stock:       entity.Stock,
		Rating:      entity.Rating,
		NumReviews:  entity.NumReviews,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (productConverter) ToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:          model.ID,
		Slug:        model.Slug,
		Name:        model.Name,
		Description: model.Description,
		Category:    model.Category,
		Brand:       model.Brand,
		Price:       model.Price,
		Image:       model.Image,
		Stock:       model.Stock,
		Rating:      model.Rating,
		NumReviews:  model.NumReviews,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

type userConverter struct{}

func NewUserConverter() UserConverter { return &userConverter{} }

func (userConverter) ToModel(entity *domain.User) *UserModel {
	return &UserModel{
		ID:           entity.ID,
		Name:         entity.Name,
		Email:        entity.Email,
		PasswordHash: entity.PasswordHash,
		IsAdmin:      entity.IsAdmin,
		CreatedAt:    entity.CreatedAt,
	}
}

func (userConverter) ToEntity(model *UserModel) *domain.User {
	return &domain.User{
		ID:           model.ID,
		Name:         model.Name,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		IsAdmin:      model.IsAdmin,
		CreatedAt:    model.CreatedAt,
	}
}

type orderConverter struct{}

func NewOrderConverter() OrderConverter { return &orderConverter{} }

func (orderConverter) ToModel(entity *domain.Order) (*OrderModel, []*OrderItemModel) {
	model := &OrderModel{
		ID:                 entity.ID,
		UserID:             entity.UserID,
		ShippingFullName:   entity.ShippingAddress.FullName,
		ShippingAddress:    entity.ShippingAddress.Address,
		ShippingCity:       entity.ShippingAddress.City,
		ShippingPostalCode: entity.ShippingAddress.PostalCode,
		ShippingCountry:    entity.ShippingAddress.Country,
		PaymentMethod:      entity.PaymentMethod,
		ItemsPrice:         entity.Prices.Items,
		ShippingPrice:      entity.Prices.Shipping,
		TaxPrice:           entity.Prices.Tax,
		TotalPrice:         entity.Prices.Total,
		IsPaid:             entity.IsPaid,
		PaidAt:             entity.PaidAt,
		IsDelivered:        entity.IsDelivered,
		DeliveredAt:        entity.DeliveredAt,
		CreatedAt:          entity.CreatedAt,
	}
	if entity.PaymentResult != nil {
		model.PaymentProviderID = &entity.PaymentResult.ProviderOrderID
		model.PaymentCaptureID = &entity.PaymentResult.CaptureID
		model.PaymentStatus = &entity.PaymentResult.Status
		model.PaymentPayerEmail = &entity.PaymentResult.PayerEmail
	}

	items := make([]*OrderItemModel, 0, len(entity.Items))
	for _, item := range entity.Items {
		items = append(items, &OrderItemModel{
			OrderID:   entity.ID,
			ProductID: item.ProductID,
			Slug:      item.Slug,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	return model, items
}

func (orderConverter) ToEntity(model *OrderModel, items []*OrderItemModel) *domain.Order {
	entity := &domain.Order{
		ID:     model.ID,
		UserID: model.UserID,
		ShippingAddress: domain.ShippingAddress{
			FullName:   model.ShippingFullName,
			Address:    model.ShippingAddress,
			City:       model.ShippingCity,
			PostalCode: model.ShippingPostalCode,
			Country:    model.ShippingCountry,
		},
		PaymentMethod: model.PaymentMethod,
		Prices: domain.PriceBreakdown{
			Items:    model.ItemsPrice,
			Shipping: model.ShippingPrice,
			Tax:      model.TaxPrice,
			Total:    model.TotalPrice,
		},
		IsPaid:      model.IsPaid,
		PaidAt:      model.PaidAt,
		IsDelivered: model.IsDelivered,
		DeliveredAt: model.DeliveredAt,
		CreatedAt:   model.CreatedAt,
	}
	if model.PaymentProviderID != nil {
		entity.PaymentResult = &domain.PaymentResult{
			ProviderOrderID: *model.PaymentProviderID,
		}
		if model.PaymentCaptureID != nil {
			entity.PaymentResult.CaptureID = *model.PaymentCaptureID
		}
		if model.PaymentStatus != nil {
			entity.PaymentResult.Status = *model.PaymentStatus
		}
		if model.PaymentPayerEmail != nil {
			entity.PaymentResult.PayerEmail = *model.PaymentPayerEmail
		}
	}

	entity.Items = make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		entity.Items = append(entity.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Slug:      item.Slug,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	return entity
}

type outboxEventConverter struct{}

func NewOutboxEventConverter() OutboxEventConverter { return &outboxEventConverter{} }

func (outboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		OrderID:     entity.OrderID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (outboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		OrderID:     model.OrderID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c outboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	entities := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		entities = append(entities, c.ToEntity(model))
	}
	return entities
}
