package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/internal/repository/pgdb/converter"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/tr"
)

const productColumns = `id, slug, name, description, category, brand, price, image, stock, rating, num_reviews, created_at, updated_at`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// Search возвращает страницу каталога по конъюнкции фильтров и общее число
// совпадений. Условия добавляются только для заданных фильтров.
func (p *ProductRepo) Search(ctx context.Context, q *usecase.SearchProductsQuery) (*usecase.ProductSearchPage, error) {
	query, countQuery, args := buildSearchQuery(q)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	page := &usecase.ProductSearchPage{Products: make([]domain.Product, 0)}
	for rows.Next() {
		var model converter.ProductModel
		if err := scanProduct(rows, &model, &page.Total); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		page.Products = append(page.Products, *p.conv.ToEntity(&model))
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// Страница за пределами результата: список пуст, total берётся
	// отдельным запросом.
	if len(page.Products) == 0 {
		if err := p.pool.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&page.Total); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return page, nil
}

// buildSearchQuery собирает запрос страницы и count-запрос по конъюнкции
// заданных фильтров. args общие для обоих; последние два — LIMIT/OFFSET,
// count-запросу они не передаются.
func buildSearchQuery(q *usecase.SearchProductsQuery) (pageQuery, countQuery string, args []any) {
	var where []string

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Category != "" {
		where = append(where, "category = "+arg(q.Category))
	}
	if q.Query != "" {
		where = append(where, "name ILIKE "+arg("%"+q.Query+"%"))
	}
	if q.PriceFrom >= 0 {
		where = append(where, "price >= "+arg(q.PriceFrom))
	}
	if q.PriceTo >= 0 {
		where = append(where, "price <= "+arg(q.PriceTo))
	}
	if q.MinRating > 0 {
		where = append(where, "rating >= "+arg(q.MinRating))
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	countQuery = `SELECT COUNT(*) FROM products` + cond

	pageQuery = `SELECT ` + productColumns + `, COUNT(*) OVER() AS total FROM products` + cond
	pageQuery += " ORDER BY " + sortClause(q.Order)
	pageQuery += fmt.Sprintf(" LIMIT %s OFFSET %s", arg(q.Limit), arg(q.Offset))

	return pageQuery, countQuery, args
}

func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	model, err := p.queryOne(ctx, query, id)
	if err != nil {
		return nil, err
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	model, err := p.queryOne(ctx, query, slug)
	if err != nil {
		return nil, err
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM products ORDER BY category`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := p.conv.ToModel(product)
	query := `
		INSERT INTO products (slug, name, description, category, brand, price, image, stock, rating, num_reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + productColumns

	row := p.pool.QueryRow(ctx, query,
		model.Slug, model.Name, model.Description, model.Category, model.Brand,
		model.Price, model.Image, model.Stock, model.Rating, model.NumReviews,
	)

	var created converter.ProductModel
	if err := scanProduct(row, &created, nil); err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrSlugTaken)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&created), nil
}

func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := p.conv.ToModel(product)
	query := `
		UPDATE products
		SET name = $2, description = $3, category = $4, brand = $5, price = $6,
		    image = $7, stock = $8, rating = $9, num_reviews = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	row := p.pool.QueryRow(ctx, query,
		model.ID, model.Name, model.Description, model.Category, model.Brand,
		model.Price, model.Image, model.Stock, model.Rating, model.NumReviews,
	)

	var updated converter.ProductModel
	if err := scanProduct(row, &updated, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&updated), nil
}

func (p *ProductRepo) Delete(ctx context.Context, id int64) error {
	result, err := p.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// DecrementStock списывает qty единиц товара в транзакции из контекста.
// Guard stock >= qty гарантирует, что остаток не уходит ниже нуля: при
// конкурентных заказах последней единицы успешен ровно один.
func (p *ProductRepo) DecrementStock(ctx context.Context, productID int64, qty int32) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
		RETURNING ` + productColumns

	var model converter.ProductModel
	err = scanProduct(tx.QueryRow(ctx, query, productID, qty), &model, nil)
	if err == nil {
		return p.conv.ToEntity(&model), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// Guard не сработал: различаем нехватку остатка и неизвестный товар.
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if exists {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrInsufficientStock)
	}

	return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
}

func (p *ProductRepo) queryOne(ctx context.Context, query string, arg any) (*converter.ProductModel, error) {
	var model converter.ProductModel
	if err := scanProduct(p.pool.QueryRow(ctx, query, arg), &model, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &model, nil
}

// scanProduct читает колонки productColumns (плюс total, если он запрошен).
func scanProduct(row pgx.Row, model *converter.ProductModel, total *int64) error {
	dest := []any{
		&model.ID, &model.Slug, &model.Name, &model.Description, &model.Category,
		&model.Brand, &model.Price, &model.Image, &model.Stock, &model.Rating,
		&model.NumReviews, &model.CreatedAt, &model.UpdatedAt,
	}
	if total != nil {
		dest = append(dest, total)
	}

	return row.Scan(dest...)
}

// sortClause отображает порядок сортировки на ORDER BY. Значение
// валидируется на уровне usecase, по умолчанию — новизна.
func sortClause(order usecase.SortOrder) string {
	switch order {
	case usecase.SortPriceAsc:
		return "price ASC, id ASC"
	case usecase.SortPriceDesc:
		return "price DESC, id ASC"
	case usecase.SortRatingDesc:
		return "rating DESC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}
