package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/pkg/e"
)

type fakeImagesInfra struct {
	mu      sync.Mutex
	removed []string
}

func (f *fakeImagesInfra) UploadImage(_ context.Context, req *UploadImageReq) (*UploadImageRes, error) {
	return &UploadImageRes{Key: "images/" + req.Name, URL: "http://minio/images/" + req.Name}, nil
}

func (f *fakeImagesInfra) RemoveImage(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
}

func (f *fakeImagesInfra) WaitForCleanup(_ context.Context) error { return nil }

func newTestCatalogUC(products *fakeProductRepo, cache *fakeCacheRepo, images *fakeImagesInfra) *CatalogUseCase {
	return NewCatalogUC(products, cache, images, &cfg.CatalogCfg{PageSize: 12}, nopLogger{})
}

func TestSearchProductsPaging(t *testing.T) {
	products := newFakeProductRepo()
	products.searchPage = &ProductSearchPage{
		Products: []domain.Product{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		Total:    25,
	}
	uc := newTestCatalogUC(products, &fakeCacheRepo{}, &fakeImagesInfra{})

	res, err := uc.SearchProducts(context.Background(), &SearchProductsReq{
		Category:  "all",
		Query:     "phone",
		PriceFrom: -1,
		PriceTo:   -1,
		Page:      2,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(25), res.Total)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 3, res.PageCount)
	assert.Len(t, res.Products, 2)

	// "all" снимает фильтр, пагинация пересчитана в limit/offset.
	assert.Equal(t, "", products.lastSearch.Category)
	assert.Equal(t, "phone", products.lastSearch.Query)
	assert.Equal(t, 12, products.lastSearch.Limit)
	assert.Equal(t, 12, products.lastSearch.Offset)
	assert.Equal(t, SortNewest, products.lastSearch.Order)
}

func TestSearchProductsOutOfRangePage(t *testing.T) {
	products := newFakeProductRepo()
	products.searchPage = &ProductSearchPage{Total: 5}
	uc := newTestCatalogUC(products, &fakeCacheRepo{}, &fakeImagesInfra{})

	res, err := uc.SearchProducts(context.Background(), &SearchProductsReq{
		PriceFrom: -1, PriceTo: -1, Page: 99,
	})
	require.NoError(t, err)

	assert.Empty(t, res.Products)
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, 1, res.PageCount)
}

func TestSearchProductsRejectsBadParams(t *testing.T) {
	uc := newTestCatalogUC(newFakeProductRepo(), &fakeCacheRepo{}, &fakeImagesInfra{})

	_, err := uc.SearchProducts(context.Background(), &SearchProductsReq{
		PriceFrom: -1, PriceTo: -1, Order: "cheapest",
	})
	assert.ErrorIs(t, err, e.ErrValidation)

	_, err = uc.SearchProducts(context.Background(), &SearchProductsReq{
		PriceFrom: 50_00, PriceTo: 10_00,
	})
	assert.ErrorIs(t, err, e.ErrValidation)
}

func TestGetProductCachesMiss(t *testing.T) {
	products := newFakeProductRepo(testProduct(1, 10_00, 3))
	cache := &fakeCacheRepo{}
	uc := newTestCatalogUC(products, cache, &fakeImagesInfra{})

	info, err := uc.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.ID)

	_, err = uc.GetProduct(context.Background(), 404)
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestCreateProductSlugAndValidation(t *testing.T) {
	products := newFakeProductRepo()
	uc := newTestCatalogUC(products, &fakeCacheRepo{}, &fakeImagesInfra{})

	info, err := uc.CreateProduct(context.Background(), &SaveProductReq{
		Name:     "Nike Slim Shirt 2",
		Category: "Shirts",
		Price:    25_00,
		Stock:    10,
		Rating:   4.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "nike-slim-shirt-2", info.Slug)

	_, err = uc.CreateProduct(context.Background(), &SaveProductReq{Category: "Shirts"})
	assert.ErrorIs(t, err, e.ErrValidation)

	_, err = uc.CreateProduct(context.Background(), &SaveProductReq{
		Name: "X", Category: "Shirts", Price: -1,
	})
	assert.ErrorIs(t, err, e.ErrInvalidPrice)
}

func TestUpdateProductInvalidatesCacheAndImage(t *testing.T) {
	product := testProduct(1, 10_00, 3)
	product.Image = "images/old.jpg"
	products := newFakeProductRepo(product)
	cache := &fakeCacheRepo{}
	images := &fakeImagesInfra{}
	uc := newTestCatalogUC(products, cache, images)

	_, err := uc.UpdateProduct(context.Background(), 1, &SaveProductReq{
		Name:     "Updated",
		Category: "Shirts",
		Price:    12_00,
		Image:    "images/new.jpg",
		Stock:    3,
	})
	require.NoError(t, err)

	assert.Contains(t, cache.deleted, int64(1))
	assert.Equal(t, []string{"images/old.jpg"}, images.removed)
}

func TestDeleteProductCleansUp(t *testing.T) {
	product := testProduct(1, 10_00, 3)
	product.Image = "images/p.jpg"
	products := newFakeProductRepo(product)
	cache := &fakeCacheRepo{}
	images := &fakeImagesInfra{}
	uc := newTestCatalogUC(products, cache, images)

	require.NoError(t, uc.DeleteProduct(context.Background(), 1))

	assert.Empty(t, products.products)
	assert.Contains(t, cache.deleted, int64(1))
	assert.Equal(t, []string{"images/p.jpg"}, images.removed)

	assert.ErrorIs(t, uc.DeleteProduct(context.Background(), 1), e.ErrProductNotFound)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Nike Slim Shirt":    "nike-slim-shirt",
		"  Adidas -- Pants ": "adidas-pants",
		"Café Olé!":          "caf-ol",
		"123":                "123",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
