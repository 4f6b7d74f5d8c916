package usecase

import (
	"context"
	"time"

	"github.com/techmart/backend/internal/domain"
)

type ProductRepository interface {
	Search(ctx context.Context, q *SearchProductsQuery) (*ProductSearchPage, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error

	// DecrementStock атомарно уменьшает остаток в рамках транзакции из контекста.
	// Возвращает e.ErrInsufficientStock, если остатка не хватает, и
	// e.ErrProductNotFound для неизвестного товара. Остаток никогда не уходит
	// ниже нуля.
	DecrementStock(ctx context.Context, productID int64, qty int32) (*domain.Product, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]domain.Order, int64, error)
	Delete(ctx context.Context, id string) error

	// MarkPaid выставляет флаг оплаты не более одного раза: повторный вызов
	// для уже оплаченного заказа возвращает false без изменений.
	MarkPaid(ctx context.Context, orderID string, result *domain.PaymentResult) (bool, error)

	// MarkDelivered переводит оплаченный заказ в доставленные; повторный вызов
	// возвращает false без изменений.
	MarkDelivered(ctx context.Context, orderID string) (bool, error)

	Summary(ctx context.Context, since time.Time) (*SummaryRes, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]ProductInfo, error)
	SetProducts(ctx context.Context, products []ProductInfo) error
	DeleteProducts(ctx context.Context, ids []int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}
