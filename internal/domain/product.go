package domain

import "time"

// Product описывает товар каталога. Цена хранится в центах.
type Product struct {
	ID          int64
	Slug        string
	Name        string
	Description string
	Category    string
	Brand       string
	Price       int64
	Image       string // ключ объекта в хранилище изображений
	Stock       int32
	Rating      float64
	NumReviews  int32
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(slug, name, description, category, brand, image string, price int64, stock int32) *Product {
	return &Product{
		Slug:        slug,
		Name:        name,
		Description: description,
		Category:    category,
		Brand:       brand,
		Image:       image,
		Price:       price,
		Stock:       stock,
	}
}

func (p *Product) InStock(qty int32) bool {
	return qty > 0 && qty <= p.Stock
}
