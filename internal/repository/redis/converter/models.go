package converter

import "time"

// ProductInfoRedisModel — JSON-представление товара в кэше.
type ProductInfoRedisModel struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Price       int64     `json:"price"`
	Image       string    `json:"image"`
	Stock       int32     `json:"stock"`
	Rating      float64   `json:"rating"`
	NumReviews  int32     `json:"num_reviews"`
	CreatedAt   time.Time `json:"created_at"`
}
