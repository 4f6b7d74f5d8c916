package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/logger"
)

type ProductHandler struct {
	catalogUC usecase.CatalogUC
	minioCfg  *cfg.MinIOCfg
	logger    logger.Logger
}

func NewProductHandler(catalogUC usecase.CatalogUC, minioCfg *cfg.MinIOCfg, logger logger.Logger) *ProductHandler {
	return &ProductHandler{catalogUC: catalogUC, minioCfg: minioCfg, logger: logger}
}

// searchProducts
//
//	@Summary		Поиск товаров
//	@Description	Страница каталога по конъюнкции фильтров
//	@Tags			products
//	@Produce		json
//	@Param			category	query		string	false	"Категория ('all' — без фильтра)"
//	@Param			query		query		string	false	"Подстрока названия"
//	@Param			price		query		string	false	"Диапазон цены 'min-max' в целых единицах"
//	@Param			rating		query		number	false	"Минимальный рейтинг"
//	@Param			order		query		string	false	"newest|lowest|highest|toprated"
//	@Param			page		query		int		false	"Номер страницы"
//	@Success		200			{object}	ProductPageResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/products [get]
func (p *ProductHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	priceFrom, priceTo, err := parsePriceRange(q.Get("price"))
	if err != nil {
		WriteError(w, err)
		return
	}

	minRating := 0.0
	if raw := q.Get("rating"); raw != "" && raw != "all" {
		minRating, err = parseRating(raw)
		if err != nil {
			WriteError(w, err)
			return
		}
	}

	res, err := p.catalogUC.SearchProducts(r.Context(), &usecase.SearchProductsReq{
		Category:  q.Get("category"),
		Query:     q.Get("query"),
		PriceFrom: priceFrom,
		PriceTo:   priceTo,
		MinRating: minRating,
		Order:     usecase.SortOrder(q.Get("order")),
		Page:      parsePage(r),
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	products := make([]ProductResponse, 0, len(res.Products))
	for i := range res.Products {
		products = append(products, toProductResponse(&res.Products[i], p.imageURL))
	}

	WriteSuccess(w, http.StatusOK, ProductPageResponse{
		Products:  products,
		Total:     res.Total,
		Page:      res.Page,
		PageCount: res.PageCount,
	})
}

// listCategories
//
//	@Summary	Список категорий каталога
//	@Tags		products
//	@Produce	json
//	@Success	200	{array}	string
//	@Router		/products/categories [get]
func (p *ProductHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := p.catalogUC.ListCategories(r.Context())
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, categories)
}

// getProduct
//
//	@Summary	Товар по ID
//	@Tags		products
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := p.catalogUC.GetProduct(r.Context(), id)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(info, p.imageURL))
}

// getProductBySlug
//
//	@Summary	Товар по URL-ключу
//	@Tags		products
//	@Produce	json
//	@Param		slug	path		string	true	"Slug товара"
//	@Success	200		{object}	ProductResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/products/slug/{slug} [get]
func (p *ProductHandler) getProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	info, err := p.catalogUC.GetProductBySlug(r.Context(), slug)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(info, p.imageURL))
}

// createProduct
//
//	@Summary	Создание товара (админ)
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SaveProductRequest	true	"Товар"
//	@Success	201		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req SaveProductRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	ucReq, err := toSaveProductReq(&req)
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := p.catalogUC.CreateProduct(r.Context(), ucReq)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(info, p.imageURL))
}

// updateProduct
//
//	@Summary	Обновление товара (админ)
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"ID товара"
//	@Param		request	body		SaveProductRequest	true	"Товар"
//	@Success	200		{object}	ProductResponse
//	@Failure	404		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	var req SaveProductRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	ucReq, err := toSaveProductReq(&req)
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := p.catalogUC.UpdateProduct(r.Context(), id, ucReq)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(info, p.imageURL))
}

// deleteProduct
//
//	@Summary	Удаление товара (админ)
//	@Tags		products
//	@Param		id	path	int	true	"ID товара"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := p.catalogUC.DeleteProduct(r.Context(), id); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (p *ProductHandler) imageURL(key string) string {
	return publicImageURL(p.minioCfg, key)
}
