package pgdb

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/internal/repository/pgdb/converter"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/tr"
)

const orderColumns = `id, user_id, shipping_full_name, shipping_address, shipping_city,
	shipping_postal_code, shipping_country, payment_method, items_price, shipping_price,
	tax_price, total_price, is_paid, paid_at, payment_provider_order_id, payment_capture_id,
	payment_status, payment_payer_email, is_delivered, delivered_at, created_at`

// OrderRepo реализует репозиторий заказов поверх PostgreSQL.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{
		pool: pool,
		conv: conv,
	}
}

// Create вставляет заказ вместе со строками в транзакции из контекста.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, items := o.conv.ToModel(order)

	query := `
		INSERT INTO orders (
			id, user_id, shipping_full_name, shipping_address, shipping_city,
			shipping_postal_code, shipping_country, payment_method,
			items_price, shipping_price, tax_price, total_price
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`

	err = tx.QueryRow(ctx, query,
		model.ID, model.UserID, model.ShippingFullName, model.ShippingAddress,
		model.ShippingCity, model.ShippingPostalCode, model.ShippingCountry,
		model.PaymentMethod, model.ItemsPrice, model.ShippingPrice,
		model.TaxPrice, model.TotalPrice,
	).Scan(&model.CreatedAt)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, slug, name, image, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(itemQuery, item.OrderID, item.ProductID, item.Slug, item.Name, item.Image, item.Price, item.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model, items), nil
}

func (o *OrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var model converter.OrderModel
	if err := scanOrder(o.pool.QueryRow(ctx, query, id), &model); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	itemsByOrder, err := o.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	return o.conv.ToEntity(&model, itemsByOrder[id]), nil
}

func (o *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := o.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	return o.attachItems(ctx, models)
}

func (o *OrderRepo) List(ctx context.Context, limit, offset int) ([]domain.Order, int64, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := o.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := o.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	orders, err := o.attachItems(ctx, models)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (o *OrderRepo) Delete(ctx context.Context, id string) error {
	result, err := o.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
	}

	return nil
}

// MarkPaid выставляет флаг оплаты не более одного раза: guard is_paid = FALSE
// делает переход at-most-once даже при конкурентных подтверждениях. Возвращает
// false, если заказ уже был оплачен.
func (o *OrderRepo) MarkPaid(ctx context.Context, orderID string, result *domain.PaymentResult) (bool, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE orders
		SET is_paid = TRUE, paid_at = NOW(),
		    payment_provider_order_id = $2, payment_capture_id = $3,
		    payment_status = $4, payment_payer_email = $5
		WHERE id = $1 AND is_paid = FALSE`

	tag, err := tx.Exec(ctx, query, orderID, result.ProviderOrderID, result.CaptureID, result.Status, result.PayerEmail)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkDelivered переводит оплаченный заказ в доставленные не более одного раза.
func (o *OrderRepo) MarkDelivered(ctx context.Context, orderID string) (bool, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE orders
		SET is_delivered = TRUE, delivered_at = NOW()
		WHERE id = $1 AND is_paid = TRUE AND is_delivered = FALSE`

	tag, err := tx.Exec(ctx, query, orderID)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected() > 0, nil
}

// Summary собирает агрегаты панели администратора. Сумма продаж считается
// только по оплаченным заказам; ряд по дням ограничен since.
func (o *OrderRepo) Summary(ctx context.Context, since time.Time) (*usecase.SummaryRes, error) {
	res := &usecase.SummaryRes{
		DailyOrders:       make([]usecase.DailySales, 0),
		ProductCategories: make([]usecase.CategoryCount, 0),
	}

	if err := o.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&res.NumUsers); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT COUNT(*), COALESCE(SUM(total_price) FILTER (WHERE is_paid), 0)
		FROM orders`
	if err := o.pool.QueryRow(ctx, query).Scan(&res.NumOrders, &res.TotalSales); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	daily := `
		SELECT to_char(created_at::date, 'YYYY-MM-DD') AS day,
		       COUNT(*),
		       COALESCE(SUM(total_price) FILTER (WHERE is_paid), 0)
		FROM orders
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day`

	rows, err := o.pool.Query(ctx, daily, since)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var d usecase.DailySales
		if err := rows.Scan(&d.Date, &d.Orders, &d.Sales); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		res.DailyOrders = append(res.DailyOrders, d)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catRows, err := o.pool.Query(ctx, `
		SELECT category, COUNT(*)
		FROM products
		GROUP BY category
		ORDER BY COUNT(*) DESC, category`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer catRows.Close()

	for catRows.Next() {
		var c usecase.CategoryCount
		if err := catRows.Scan(&c.Category, &c.Count); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		res.ProductCategories = append(res.ProductCategories, c)
	}

	return res, catRows.Err()
}

// loadItems загружает строки заказов пачкой и группирует их по заказу.
func (o *OrderRepo) loadItems(ctx context.Context, orderIDs []string) (map[string][]*converter.OrderItemModel, error) {
	query := `
		SELECT id, order_id, product_id, slug, name, image, price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`

	rows, err := o.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make(map[string][]*converter.OrderItemModel)
	for rows.Next() {
		var item converter.OrderItemModel
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Slug, &item.Name, &item.Image, &item.Price, &item.Quantity)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result[item.OrderID] = append(result[item.OrderID], &item)
	}

	return result, rows.Err()
}

func (o *OrderRepo) attachItems(ctx context.Context, models []*converter.OrderModel) ([]domain.Order, error) {
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	itemsByOrder := make(map[string][]*converter.OrderItemModel)
	if len(ids) > 0 {
		var err error
		itemsByOrder, err = o.loadItems(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	orders := make([]domain.Order, 0, len(models))
	for _, m := range models {
		orders = append(orders, *o.conv.ToEntity(m, itemsByOrder[m.ID]))
	}

	return orders, nil
}

func collectOrders(rows pgx.Rows) ([]*converter.OrderModel, error) {
	var models []*converter.OrderModel
	for rows.Next() {
		var model converter.OrderModel
		if err := scanOrder(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, &model)
	}

	return models, rows.Err()
}

func scanOrder(row pgx.Row, model *converter.OrderModel) error {
	return row.Scan(
		&model.ID, &model.UserID, &model.ShippingFullName, &model.ShippingAddress,
		&model.ShippingCity, &model.ShippingPostalCode, &model.ShippingCountry,
		&model.PaymentMethod, &model.ItemsPrice, &model.ShippingPrice,
		&model.TaxPrice, &model.TotalPrice, &model.IsPaid, &model.PaidAt,
		&model.PaymentProviderID, &model.PaymentCaptureID, &model.PaymentStatus,
		&model.PaymentPayerEmail, &model.IsDelivered, &model.DeliveredAt, &model.CreatedAt,
	)
}
