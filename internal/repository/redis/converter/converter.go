package converter

import "github.com/techmart/backend/internal/usecase"

// ProductInfoConverter преобразует товары между usecase и моделью кэша.
type ProductInfoConverter interface {
	ToRedisModel(entity *usecase.ProductInfo) *ProductInfoRedisModel
	ToUseCase(model *ProductInfoRedisModel) *usecase.ProductInfo
	ToArrRedisModel(entities []usecase.ProductInfo) []ProductInfoRedisModel
}

type productInfoConverter struct{}

func NewProductInfoConverter() ProductInfoConverter { return &productInfoConverter{} }

func (productInfoConverter) ToRedisModel(entity *usecase.ProductInfo) *ProductInfoRedisModel {
	return &ProductInfoRedisModel{
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
	}
}

func (productInfoConverter) ToUseCase(model *ProductInfoRedisModel) *usecase.ProductInfo {
	return &usecase.ProductInfo{
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
	}
}

func (c productInfoConverter) ToArrRedisModel(entities []usecase.ProductInfo) []ProductInfoRedisModel {
	models := make([]ProductInfoRedisModel, 0, len(entities))
	for i := range entities {
		models = append(models, *c.ToRedisModel(&entities[i]))
	}
	return models
}
