package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/e"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse отображает sentinel-ошибки на HTTP-статусы.
// Всё незнакомое — 500, детали остаются в логах.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrValidation):
		return http.StatusBadRequest, e.ErrValidation.Error()
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrMissingFields):
		return http.StatusBadRequest, e.ErrMissingFields.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrPricePrecision):
		return http.StatusBadRequest, e.ErrPricePrecision.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusBadRequest, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrEmptyCart):
		return http.StatusBadRequest, e.ErrEmptyCart.Error()
	case errors.Is(err, e.ErrOrderNotPaid):
		return http.StatusBadRequest, e.ErrOrderNotPaid.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized, e.ErrUnauthorized.Error()
	case errors.Is(err, e.ErrInvalidToken):
		return http.StatusUnauthorized, e.ErrInvalidToken.Error()
	case errors.Is(err, e.ErrForbidden):
		return http.StatusForbidden, e.ErrForbidden.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrOrderNotFound):
		return http.StatusNotFound, e.ErrOrderNotFound.Error()
	case errors.Is(err, e.ErrUserNotFound):
		return http.StatusNotFound, e.ErrUserNotFound.Error()
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, e.ErrNotFound.Error()
	case errors.Is(err, e.ErrEmailTaken):
		return http.StatusConflict, e.ErrEmailTaken.Error()
	case errors.Is(err, e.ErrSlugTaken):
		return http.StatusConflict, e.ErrSlugTaken.Error()
	case errors.Is(err, e.ErrOutOfStock):
		return http.StatusConflict, e.ErrOutOfStock.Error()
	case errors.Is(err, e.ErrInsufficientStock):
		return http.StatusConflict, e.ErrInsufficientStock.Error()
	case errors.Is(err, e.ErrPaymentProvider):
		return http.StatusBadGateway, e.ErrPaymentProvider.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.WrapField("body", e.ErrValidation)
	}
	return nil
}

// amountToCents переводит сумму в валюте в центы.
// Больше двух знаков после запятой — ошибка, отрицательные суммы — тоже.
func amountToCents(amount float64) (int64, error) {
	d := decimal.NewFromFloat(amount)
	if d.LessThan(decimal.Zero) {
		return 0, e.ErrInvalidPrice
	}

	cents := d.Mul(decimal.NewFromInt(100))
	if !cents.Equal(cents.Round(0)) {
		return 0, e.ErrPricePrecision
	}

	maxPrice := decimal.NewFromInt(100_000_000_000) // 10^9 в центах
	if cents.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	return cents.IntPart(), nil
}

// centsToAmount переводит центы в сумму с двумя знаками для JSON.
func centsToAmount(cents int64) float64 {
	f, _ := decimal.New(cents, -2).Float64()
	return f
}

// parsePriceRange разбирает фильтр цены вида "10-200" (в целых единицах
// валюты) в границы в центах. Пустая или открытая граница — -1.
func parsePriceRange(s string) (int64, int64, error) {
	from, to := int64(-1), int64(-1)
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return from, to, nil
	}

	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, e.WrapField("price", e.ErrValidation)
	}

	if parts[0] != "" {
		v, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || v < 0 {
			return 0, 0, e.WrapField("price", e.ErrValidation)
		}
		from = v * 100
	}
	if parts[1] != "" {
		v, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || v < 0 {
			return 0, 0, e.WrapField("price", e.ErrValidation)
		}
		to = v * 100
	}

	return from, to, nil
}

func parseRating(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 5 {
		return 0, e.WrapField("rating", e.ErrValidation)
	}
	return v, nil
}

func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, e.WrapField("id", e.ErrValidation)
	}
	return id, nil
}

// publicImageURL достраивает внешний URL по ключу объекта в MinIO.
// Внешние ссылки (http/https) возвращаются как есть.
func publicImageURL(minioCfg *cfg.MinIOCfg, key string) string {
	if key == "" || strings.Contains(key, "://") {
		return key
	}
	return strings.TrimRight(minioCfg.PublicURL, "/") + "/" + minioCfg.BucketName + "/" + key
}

func toSaveProductReq(req *SaveProductRequest) (*usecase.SaveProductReq, error) {
	priceCents, err := amountToCents(req.Price)
	if err != nil {
		return nil, err
	}

	return &usecase.SaveProductReq{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		Price:       priceCents,
		Image:       req.Image,
		Stock:       req.CountInStock,
		Rating:      req.Rating,
		NumReviews:  req.NumReviews,
	}, nil
}
