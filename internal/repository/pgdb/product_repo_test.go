package pgdb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/techmart/backend/internal/usecase"
)

func TestBuildSearchQueryConjunction(t *testing.T) {
	pageQuery, countQuery, args := buildSearchQuery(&usecase.SearchProductsQuery{
		Category:  "Shirts",
		Query:     "slim",
		PriceFrom: 10_00,
		PriceTo:   200_00,
		MinRating: 4.0,
		Order:     usecase.SortPriceAsc,
		Limit:     12,
		Offset:    24,
	})

	// Все заданные фильтры попадают в WHERE одновременно, через AND.
	for _, cond := range []string{
		"category = $1",
		"name ILIKE $2",
		"price >= $3",
		"price <= $4",
		"rating >= $5",
	} {
		assert.Contains(t, pageQuery, cond)
		assert.Contains(t, countQuery, cond)
	}
	assert.Equal(t, 4, strings.Count(pageQuery, " AND "))

	assert.Contains(t, pageQuery, "ORDER BY price ASC")
	assert.Contains(t, pageQuery, "LIMIT $6 OFFSET $7")
	assert.NotContains(t, countQuery, "LIMIT")

	assert.Equal(t, []any{"Shirts", "%slim%", int64(10_00), int64(200_00), 4.0, 12, 24}, args)
}

func TestBuildSearchQueryNoFilters(t *testing.T) {
	pageQuery, countQuery, args := buildSearchQuery(&usecase.SearchProductsQuery{
		PriceFrom: -1,
		PriceTo:   -1,
		Limit:     12,
		Offset:    0,
	})

	assert.NotContains(t, pageQuery, "WHERE")
	assert.NotContains(t, countQuery, "WHERE")
	assert.Contains(t, pageQuery, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{12, 0}, args)
}

// Нулевая нижняя граница цены — валидный фильтр, а не его отсутствие.
func TestBuildSearchQueryZeroPriceBound(t *testing.T) {
	pageQuery, _, args := buildSearchQuery(&usecase.SearchProductsQuery{
		PriceFrom: 0,
		PriceTo:   -1,
		Limit:     12,
		Offset:    0,
	})

	assert.Contains(t, pageQuery, "price >= $1")
	assert.Equal(t, []any{int64(0), 12, 0}, args)
}

func TestSortClause(t *testing.T) {
	cases := map[usecase.SortOrder]string{
		usecase.SortPriceAsc:   "price ASC, id ASC",
		usecase.SortPriceDesc:  "price DESC, id ASC",
		usecase.SortRatingDesc: "rating DESC, id ASC",
		usecase.SortNewest:     "created_at DESC, id DESC",
	}
	for order, want := range cases {
		assert.Equal(t, want, sortClause(order), string(order))
	}
}
