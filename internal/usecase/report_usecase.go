package usecase

import (
	"context"
	"time"

	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/logger"
)

// salesWindowDays — глубина ряда продаж по дням в сводке.
const salesWindowDays = 30

// ReportUseCase собирает агрегаты для панели администратора.
type ReportUseCase struct {
	orderRepo OrderRepository
	logger    logger.Logger
}

func NewReportUC(orderRepo OrderRepository, logger logger.Logger) *ReportUseCase {
	return &ReportUseCase{orderRepo: orderRepo, logger: logger}
}

// Summary возвращает счётчики пользователей и заказов, сумму продаж по
// оплаченным заказам, ряд продаж за последние 30 дней и распределение
// товаров по категориям. Пустая база — нулевые значения, не ошибка.
func (r *ReportUseCase) Summary(ctx context.Context) (*SummaryRes, error) {
	const op = "ReportUseCase.Summary"

	since := time.Now().AddDate(0, 0, -salesWindowDays)

	res, err := r.orderRepo.Summary(ctx, since)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if res.DailyOrders == nil {
		res.DailyOrders = []DailySales{}
	}
	if res.ProductCategories == nil {
		res.ProductCategories = []CategoryCount{}
	}

	return res, nil
}
