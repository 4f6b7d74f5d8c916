package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/logger"
)

// CatalogUseCase реализует бизнес-логику каталога товаров.
type CatalogUseCase struct {
	productRepo ProductRepository
	cacheRepo   CacheRepository
	imagesInfra ImagesInfra
	cfg         *cfg.CatalogCfg
	logger      logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	cacheRepo CacheRepository,
	imagesInfra ImagesInfra,
	cfg *cfg.CatalogCfg,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		imagesInfra: imagesInfra,
		cfg:         cfg,
		logger:      logger,
	}
}

// SearchProducts возвращает страницу каталога по конъюнкции фильтров.
// Страница за пределами диапазона — пустой список с валидным total.
func (c *CatalogUseCase) SearchProducts(ctx context.Context, req *SearchProductsReq) (*SearchProductsRes, error) {
	const op = "CatalogUseCase.SearchProducts"

	page := req.Page
	if page < 1 {
		page = 1
	}

	order := req.Order
	switch order {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRatingDesc:
	case "":
		order = SortNewest
	default:
		return nil, e.Wrap(op, e.WrapField("order", e.ErrValidation))
	}

	if req.PriceFrom >= 0 && req.PriceTo >= 0 && req.PriceFrom > req.PriceTo {
		return nil, e.Wrap(op, e.WrapField("price", e.ErrValidation))
	}

	q := &SearchProductsQuery{
		Category:  normalizeFilter(req.Category),
		Query:     normalizeFilter(req.Query),
		PriceFrom: req.PriceFrom,
		PriceTo:   req.PriceTo,
		MinRating: req.MinRating,
		Order:     order,
		Limit:     c.cfg.PageSize,
		Offset:    (page - 1) * c.cfg.PageSize,
	}

	found, err := c.productRepo.Search(ctx, q)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	products := make([]ProductInfo, 0, len(found.Products))
	for i := range found.Products {
		products = append(products, *NewProductInfo(&found.Products[i]))
	}

	return &SearchProductsRes{
		Products:  products,
		Total:     found.Total,
		Page:      page,
		PageCount: pageCount(found.Total, c.cfg.PageSize),
	}, nil
}

// GetProduct возвращает товар по ID, сначала заглядывая в кэш.
func (c *CatalogUseCase) GetProduct(ctx context.Context, id int64) (*ProductInfo, error) {
	const op = "CatalogUseCase.GetProduct"

	cached, err := c.cacheRepo.GetProducts(ctx, []int64{id})
	if err == nil {
		if info, ok := cached[id]; ok {
			return &info, nil
		}
	}

	product, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewProductInfo(product)
	c.cacheInBackground(op, []ProductInfo{*info})

	return info, nil
}

// GetProductBySlug возвращает товар по URL-ключу.
func (c *CatalogUseCase) GetProductBySlug(ctx context.Context, slug string) (*ProductInfo, error) {
	const op = "CatalogUseCase.GetProductBySlug"

	product, err := c.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewProductInfo(product)
	c.cacheInBackground(op, []ProductInfo{*info})

	return info, nil
}

func (c *CatalogUseCase) ListCategories(ctx context.Context) ([]string, error) {
	const op = "CatalogUseCase.ListCategories"

	categories, err := c.productRepo.Categories(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return categories, nil
}

// CreateProduct добавляет товар в каталог. Slug выводится из названия.
func (c *CatalogUseCase) CreateProduct(ctx context.Context, req *SaveProductReq) (*ProductInfo, error) {
	const op = "CatalogUseCase.CreateProduct"

	if err := validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := newDomainProduct(Slugify(req.Name), req)
	created, err := c.productRepo.Create(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewProductInfo(created), nil
}

// UpdateProduct обновляет товар и инвалидирует кэш.
func (c *CatalogUseCase) UpdateProduct(ctx context.Context, id int64, req *SaveProductReq) (*ProductInfo, error) {
	const op = "CatalogUseCase.UpdateProduct"

	if err := validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	existing, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	product := newDomainProduct(existing.Slug, req)
	product.ID = id

	updated, err := c.productRepo.Update(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := c.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		c.logger.Warnf("Failed to invalidate product cache: %v", e.Wrap(op, err))
	}

	if existing.Image != "" && existing.Image != updated.Image {
		c.imagesInfra.RemoveImage(existing.Image)
	}

	return NewProductInfo(updated), nil
}

// DeleteProduct удаляет товар, его кэш и изображение.
func (c *CatalogUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "CatalogUseCase.DeleteProduct"

	existing, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := c.productRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	if err := c.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		c.logger.Warnf("Failed to invalidate product cache: %v", e.Wrap(op, err))
	}

	if existing.Image != "" {
		c.imagesInfra.RemoveImage(existing.Image)
	}

	return nil
}

// cacheInBackground добавляет товары в кэш, не блокируя запрос.
func (c *CatalogUseCase) cacheInBackground(op string, products []ProductInfo) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := c.cacheRepo.SetProducts(bgCtx, products); err != nil {
			c.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
		}
	}()
}

func validateProduct(req *SaveProductReq) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.WrapField("name", e.ErrValidation)
	}
	if strings.TrimSpace(req.Category) == "" {
		return e.WrapField("category", e.ErrValidation)
	}
	if req.Price < 0 {
		return e.ErrInvalidPrice
	}
	if req.Stock < 0 {
		return e.WrapField("stock", e.ErrValidation)
	}
	if req.Rating < 0 || req.Rating > 5 {
		return e.WrapField("rating", e.ErrValidation)
	}
	return nil
}

func newDomainProduct(slug string, req *SaveProductReq) *domain.Product {
	return &domain.Product{
		Slug:        slug,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		Price:       req.Price,
		Image:       req.Image,
		Stock:       req.Stock,
		Rating:      req.Rating,
		NumReviews:  req.NumReviews,
	}
}

// Slugify превращает название товара в URL-ключ: строчные буквы и дефисы.
func Slugify(name string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// normalizeFilter приводит "all" и пустые значения к отсутствию фильтра.
func normalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func pageCount(total int64, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
